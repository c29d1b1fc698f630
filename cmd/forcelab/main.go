package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/forcelab/internal/analysis"
	"github.com/san-kum/forcelab/internal/audio"
	"github.com/san-kum/forcelab/internal/config"
	"github.com/san-kum/forcelab/internal/export"
	"github.com/san-kum/forcelab/internal/gui"
	"github.com/san-kum/forcelab/internal/hostsim"
	"github.com/san-kum/forcelab/internal/kinetic"
	"github.com/san-kum/forcelab/internal/logging"
	"github.com/san-kum/forcelab/internal/metrics"
	"github.com/san-kum/forcelab/internal/noise"
	"github.com/san-kum/forcelab/internal/optim"
	"github.com/san-kum/forcelab/internal/recorder"
	"github.com/san-kum/forcelab/internal/scene"
	"github.com/san-kum/forcelab/internal/store"
	"github.com/san-kum/forcelab/internal/viz"
)

var (
	configFile string
	dataDir    string
	dbPath     string
	logLevel   string
	logPretty  bool

	// run overrides (zero keeps the scenario's value)
	dt       float64
	duration float64
	seed     int64
	noSave   bool
	sonify   bool
	jsonPath string
	csvPath  string
	svgPath  string

	// export
	exportFormat string
	exportOut    string

	// sweep
	sweepParams []string
	sweepMetric string
	sweepMin    bool
	workers     int

	// history
	historyLimit int

	// noise
	noiseSeed        int64
	noiseOctaves     int
	noisePersistence float64
	noiseFreq        float64
	noiseSamples     int

	// gui / live
	sound bool
	theme string

	settings *config.Settings
	logger   zerolog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "forcelab",
		Short: "force rule and wind zone simulation lab",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			settings, err = config.Load(configFile)
			if err != nil {
				return err
			}
			if dataDir == "" {
				dataDir = settings.DataDir
			}
			if dbPath == "" {
				dbPath = settings.DBPath
			}
			if logLevel == "" {
				logLevel = settings.LogLevel
			}
			if theme == "" {
				theme = settings.Theme
			}
			logger = logging.New(logLevel, logPretty && settings.LogPretty)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "run output directory")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "recorder database path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level")
	rootCmd.PersistentFlags().BoolVar(&logPretty, "pretty", true, "human-readable log output")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario headless and save the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().Float64Var(&dt, "dt", 0, "timestep override")
	runCmd.Flags().Float64Var(&duration, "time", 0, "duration override")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "seed override")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "skip saving the run")
	runCmd.Flags().BoolVar(&sonify, "sonify", false, "play wind and impulses while running")
	runCmd.Flags().StringVar(&jsonPath, "json", "", "also export run data to JSON")
	runCmd.Flags().StringVar(&csvPath, "csv", "", "also export run data to CSV")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "also plot wind and speed traces to SVG")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, name := range scene.PresetNames() {
				sc, err := scene.Preset(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\n", name, sc.Description)
			}
			return w.Flush()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "wind frequency analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as json, csv, or svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format: json, csv, svg")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "list recorded runs from the database",
		RunE:  showHistory,
	}
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum rows")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a scenario with live terminal visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&dt, "dt", 0, "timestep override")
	liveCmd.Flags().Float64Var(&duration, "time", 0, "duration override")
	liveCmd.Flags().Int64Var(&seed, "seed", 0, "seed override")
	liveCmd.Flags().StringVar(&theme, "theme", "", "color theme")

	guiCmd := &cobra.Command{
		Use:   "gui [scenario]",
		Short: "play a scenario interactively in the 3D window",
		Args:  cobra.ExactArgs(1),
		RunE:  runGUI,
	}
	guiCmd.Flags().Float64Var(&dt, "dt", 0, "timestep override")
	guiCmd.Flags().Float64Var(&duration, "time", 0, "duration override")
	guiCmd.Flags().Int64Var(&seed, "seed", 0, "seed override")
	guiCmd.Flags().BoolVar(&sound, "sound", true, "sonify wind and impulses")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "grid-search scenario parameters against a metric",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "swept parameter, e.g. zone.breeze.base_force=2,4,8")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "peak_force", "metric to rank by")
	sweepCmd.Flags().BoolVar(&sweepMin, "min", false, "prefer the smallest metric value")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = NumCPU)")

	noiseCmd := &cobra.Command{
		Use:   "noise",
		Short: "preview a wind noise curve",
		RunE:  previewNoise,
	}
	noiseCmd.Flags().Int64Var(&noiseSeed, "seed", 42, "sampler seed")
	noiseCmd.Flags().IntVar(&noiseOctaves, "octaves", 1, "fractal octaves")
	noiseCmd.Flags().Float64Var(&noisePersistence, "persistence", 0.5, "octave persistence")
	noiseCmd.Flags().Float64Var(&noiseFreq, "freq", 0.5, "sample frequency")
	noiseCmd.Flags().IntVar(&noiseSamples, "samples", 200, "number of samples")

	rootCmd.AddCommand(runCmd, presetsCmd, listCmd, showCmd, plotCmd, analyzeCmd,
		exportCmd, historyCmd, liveCmd, guiCmd, sweepCmd, noiseCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadScenario resolves the argument as a preset name first, then as a
// YAML file path.
func loadScenario(arg string) (*scene.Scenario, error) {
	if strings.HasSuffix(arg, ".yaml") || strings.HasSuffix(arg, ".yml") {
		return scene.Load(arg)
	}
	sc, err := scene.Preset(arg)
	if err == nil {
		return sc, nil
	}
	if _, statErr := os.Stat(arg); statErr == nil {
		return scene.Load(arg)
	}
	return nil, fmt.Errorf("%w (presets: %s)", err, strings.Join(scene.PresetNames(), ", "))
}

func applyOverrides(sc *scene.Scenario) {
	if dt > 0 {
		sc.World.Dt = dt
	}
	if duration > 0 {
		sc.World.Duration = duration
	}
	if seed != 0 {
		sc.World.Seed = seed
	}
}

func buildWorld(arg string) (*hostsim.World, error) {
	sc, err := loadScenario(arg)
	if err != nil {
		return nil, err
	}
	applyOverrides(sc)

	w, err := hostsim.NewWorld(sc)
	if err != nil {
		return nil, err
	}
	w.SetLogger(logger)
	for _, m := range metrics.Standard() {
		w.AddMetric(m)
	}
	return w, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	w, err := buildWorld(args[0])
	if err != nil {
		return err
	}

	var res *hostsim.Result
	if sonify {
		res, err = runSonified(w)
	} else {
		res, err = w.Run(context.Background())
	}
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", res.Scenario)
	fmt.Printf("completed in %v\n", res.Elapsed)
	fmt.Printf("steps: %d\n", res.StepsTaken)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, res.Metrics[name])
	}

	if !noSave {
		st := store.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(w, res)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)

		// DB recording is best-effort
		if rec, err := recorder.Open(dbPath, logger); err != nil {
			logger.Warn().Err(err).Msg("recorder unavailable")
		} else {
			if err := rec.Record(runID, w, res); err != nil {
				logger.Warn().Err(err).Msg("recording failed")
			}
			rec.Close()
		}
	}

	if jsonPath != "" {
		if err := store.ExportJSON(jsonPath, w, res); err != nil {
			return err
		}
	}
	if csvPath != "" {
		if err := store.ExportCSV(csvPath, res); err != nil {
			return err
		}
	}
	if svgPath != "" {
		if err := export.WriteSVG(svgPath, res, 800, 400); err != nil {
			return err
		}
		fmt.Printf("traces written to %s\n", svgPath)
	}

	return nil
}

// runSonified paces the run at wall-clock speed and feeds the wind level
// and impulse events to the audio processor.
func runSonified(w *hostsim.World) (*hostsim.Result, error) {
	proc := audio.NewProcessor()
	if err := proc.Start(); err != nil {
		logger.Warn().Err(err).Msg("audio unavailable")
	}
	defer proc.Stop()

	pace := time.Duration(w.Dt() * float64(time.Second))
	return w.RunWithCallback(context.Background(), func(fr kinetic.Frame) bool {
		var total float64
		for _, z := range fr.Wind {
			total += z.Force
		}
		proc.SetWind(total)
		for _, e := range fr.Events {
			if e.Mode == kinetic.Impulse {
				proc.Pluck(e.Magnitude)
			}
		}
		time.Sleep(pace)
		return true
	})
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tDT\tBODIES\tZONES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			len(run.Bodies),
			len(run.Zones),
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("recorded: %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("seed: %d  dt: %.4fs  duration: %.2fs  steps: %d\n",
		meta.Seed, meta.Dt, meta.Duration, meta.Steps)
	fmt.Printf("bodies: %s\n", strings.Join(meta.Bodies, ", "))
	if len(meta.Zones) > 0 {
		fmt.Printf("zones: %s\n", strings.Join(meta.Zones, ", "))
	}
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(meta.Metrics))
	for name := range meta.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, meta.Metrics[name])
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	bodies, zones, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n\n", meta.Scenario)

	for _, id := range meta.Bodies {
		track, ok := bodies[id]
		if !ok || len(track.Speeds) < 2 {
			continue
		}
		graph := asciigraph.Plot(track.Speeds,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s speed (m/s)", id)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	for _, id := range meta.Zones {
		track, ok := zones[id]
		if !ok || len(track.Forces) < 2 {
			continue
		}
		graph := asciigraph.Plot(track.Forces,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s wind force (N)", id)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	_, zones, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(meta.Zones) == 0 {
		fmt.Println("run has no wind zones")
		return nil
	}

	for _, id := range meta.Zones {
		track, ok := zones[id]
		if !ok {
			continue
		}

		stats := analysis.GustStats(track.Forces)
		fmt.Printf("zone %s\n", id)
		fmt.Printf("  force: min %.3f  max %.3f  mean %.3f  stddev %.3f\n",
			stats.Min, stats.Max, stats.Mean, stats.StdDev)

		if period, ok := analysis.DominantPeriod(track.Forces, meta.Dt); ok {
			fmt.Printf("  dominant gust period: %.2fs\n", period)
		} else {
			fmt.Println("  no dominant gust period (steady or too short)")
		}

		spec := analysis.PowerSpectrum(track.Forces, meta.Dt)
		if len(spec.Power) > 1 {
			graph := asciigraph.Plot(spec.Power[1:],
				asciigraph.Height(8),
				asciigraph.Width(60),
				asciigraph.Caption("power spectrum (DC removed)"),
			)
			fmt.Println(graph)
		}
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runID := args[0]

	out := os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch exportFormat {
	case "json":
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		bodies, zones, err := st.LoadFrames(runID)
		if err != nil {
			return err
		}
		events, err := st.LoadEvents(runID)
		if err != nil {
			return err
		}
		payload := struct {
			Metadata *store.RunMetadata          `json:"metadata"`
			Bodies   map[string]*store.BodyTrack `json:"bodies"`
			Zones    map[string]*store.ZoneTrack `json:"zones"`
			Events   []kinetic.ForceEvent        `json:"events"`
		}{meta, bodies, zones, events}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)

	case "csv":
		f, err := os.Open(st.FramesPath(runID))
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", store.ErrRunNotFound, runID)
			}
			return err
		}
		defer f.Close()
		_, err = io.Copy(out, f)
		return err

	case "svg":
		bodies, zones, err := st.LoadFrames(runID)
		if err != nil {
			return err
		}
		svg := export.TracesToSVG(export.StoredTraces(bodies, zones), 800, 400)
		if svg == "" {
			return fmt.Errorf("run %q has too few samples to plot", runID)
		}
		_, err = io.WriteString(out, svg)
		return err

	default:
		return fmt.Errorf("unknown format %q (want json, csv, or svg)", exportFormat)
	}
}

func showHistory(cmd *cobra.Command, args []string) error {
	rec, err := recorder.Open(dbPath, logger)
	if err != nil {
		return err
	}
	defer rec.Close()

	runs, err := rec.History(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSCENARIO\tSTARTED\tSTEPS\tIMPULSES\tPEAK\tWORK\tGUSTS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.0f\t%.2f\t%.2f\t%.2f\n",
			run.RunID,
			run.Scenario,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Impulses,
			run.PeakForce,
			run.TotalWork,
			run.GustRange,
		)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	w, err := buildWorld(args[0])
	if err != nil {
		return err
	}
	viz.SetTheme(theme)

	p := tea.NewProgram(viz.NewLive(w), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runGUI(cmd *cobra.Command, args []string) error {
	w, err := buildWorld(args[0])
	if err != nil {
		return err
	}
	gui.Run(w, sound)
	return nil
}

func parseSweepParams(raw []string) ([]optim.Param, error) {
	params := make([]optim.Param, 0, len(raw))
	for _, spec := range raw {
		name, list, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("malformed --param %q, want name=v1,v2", spec)
		}
		var values []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("malformed --param %q: %w", spec, err)
			}
			values = append(values, v)
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("--param %q has no values", spec)
		}
		params = append(params, optim.Param{Name: name, Values: values})
	}
	return params, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	if len(sweepParams) == 0 {
		return fmt.Errorf("at least one --param is required")
	}
	params, err := parseSweepParams(sweepParams)
	if err != nil {
		return err
	}

	sc, err := loadScenario(args[0])
	if err != nil {
		return err
	}
	applyOverrides(sc)

	sweep := optim.NewSweep(params, workers)
	sweep.Minimize = sweepMin

	res, err := sweep.Run(context.Background(), sc, sweepMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := make([]string, 0, len(params)+1)
	for _, p := range params {
		header = append(header, strings.ToUpper(p.Name))
	}
	header = append(header, strings.ToUpper(sweepMetric))
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, pt := range res.Points {
		row := make([]string, 0, len(params)+1)
		for _, p := range params {
			row = append(row, fmt.Sprintf("%g", pt.Params[p.Name]))
		}
		if pt.Err != nil {
			row = append(row, pt.Err.Error())
		} else {
			row = append(row, fmt.Sprintf("%.6f", pt.Score))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest %s = %.6f at", sweepMetric, res.Best.Score)
	for _, p := range params {
		fmt.Printf(" %s=%g", p.Name, res.Best.Params[p.Name])
	}
	fmt.Println()
	return nil
}

func previewNoise(cmd *cobra.Command, args []string) error {
	var sampler noise.Sampler
	if noiseOctaves > 1 {
		sampler = noise.NewOctaves(noiseSeed, noiseOctaves, noisePersistence)
	} else {
		sampler = noise.NewSmooth(noiseSeed)
	}

	samples := make([]float64, noiseSamples)
	for i := range samples {
		samples[i] = sampler.Sample(float64(i) * noiseFreq * 0.05)
	}

	graph := asciigraph.Plot(samples,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("noise seed=%d octaves=%d", noiseSeed, noiseOctaves)),
	)
	fmt.Println(graph)
	return nil
}
