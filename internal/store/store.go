// Package store persists finished runs on disk. Each run gets its own
// directory under the data dir holding metadata.json, frames.csv (per-body
// kinematics plus wind samples), and events.csv (force applications).
package store

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/forcelab/internal/hostsim"
	"github.com/san-kum/forcelab/internal/kinetic"
)

// ErrRunNotFound is returned when a run ID does not resolve to a saved run.
var ErrRunNotFound = errors.New("run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata summarizes one saved run.
type RunMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Steps     int                `json:"steps"`
	Bodies    []string           `json:"bodies"`
	Zones     []string           `json:"zones"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes the run to a fresh directory and returns its ID.
func (s *Store) Save(w *hostsim.World, res *hostsim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", res.Scenario, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	sc := w.Scenario()
	meta := RunMetadata{
		ID:        runID,
		Scenario:  res.Scenario,
		Timestamp: time.Now(),
		Seed:      sc.World.Seed,
		Dt:        sc.World.Dt,
		Duration:  sc.World.Duration,
		Steps:     res.StepsTaken,
		Metrics:   res.Metrics,
	}
	for _, b := range sc.Bodies {
		meta.Bodies = append(meta.Bodies, b.ID)
	}
	for _, z := range sc.Zones {
		meta.Zones = append(meta.Zones, z.ID)
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, "frames.csv"), res.Frames); err != nil {
		return "", err
	}
	if err := writeEvents(filepath.Join(runDir, "events.csv"), res.Frames); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var frameHeader = []string{
	"step", "time", "body",
	"px", "py", "pz", "vx", "vy", "vz", "speed",
	"zone", "wind_force", "wind_sample",
}

// writeFrames emits one row per body per frame. Zone columns line up with
// body rows by index; extra zones get their own body-less rows.
func writeFrames(path string, frames []kinetic.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return writeFramesTo(f, frames)
}

func writeFramesTo(out io.Writer, frames []kinetic.Frame) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write(frameHeader); err != nil {
		return err
	}
	for _, fr := range frames {
		rows := len(fr.Bodies)
		if len(fr.Wind) > rows {
			rows = len(fr.Wind)
		}
		for i := 0; i < rows; i++ {
			row := []string{strconv.Itoa(fr.Step), ff(fr.Time)}
			if i < len(fr.Bodies) {
				b := fr.Bodies[i]
				row = append(row, b.ID,
					ff(b.Position.X()), ff(b.Position.Y()), ff(b.Position.Z()),
					ff(b.Velocity.X()), ff(b.Velocity.Y()), ff(b.Velocity.Z()),
					ff(b.Speed()))
			} else {
				row = append(row, "", "", "", "", "", "", "", "")
			}
			if i < len(fr.Wind) {
				z := fr.Wind[i]
				row = append(row, z.Zone, ff(z.Force), ff(z.Sample))
			} else {
				row = append(row, "", "", "")
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return w.Error()
}

var eventHeader = []string{
	"step", "time", "source", "body", "kind", "mode", "magnitude",
	"dx", "dy", "dz", "ox", "oy", "oz",
}

func writeEvents(path string, frames []kinetic.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(eventHeader); err != nil {
		return err
	}
	for _, fr := range frames {
		for _, e := range fr.Events {
			row := []string{
				strconv.Itoa(e.Step), ff(e.Time), e.Source, e.Body,
				e.Kind.String(), e.Mode.String(), ff(e.Magnitude),
				ff(e.Direction.X()), ff(e.Direction.Y()), ff(e.Direction.Z()),
				ff(e.Origin.X()), ff(e.Origin.Y()), ff(e.Origin.Z()),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return w.Error()
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// FramesPath returns the on-disk location of a run's frames.csv.
func (s *Store) FramesPath(runID string) string {
	return filepath.Join(s.baseDir, runID, "frames.csv")
}

// List returns metadata for every saved run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

// Load reads one run's metadata.
func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// BodyTrack is one body's series reconstructed from frames.csv.
type BodyTrack struct {
	Times     []float64
	Positions [][3]float64
	Speeds    []float64
}

// ZoneTrack is one zone's force series reconstructed from frames.csv.
type ZoneTrack struct {
	Times   []float64
	Forces  []float64
	Samples []float64
}

// LoadFrames rebuilds per-body and per-zone series for a saved run.
func (s *Store) LoadFrames(runID string) (map[string]*BodyTrack, map[string]*ZoneTrack, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	bodies := map[string]*BodyTrack{}
	zones := map[string]*ZoneTrack{}
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) < len(frameHeader) {
			continue
		}
		t, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			continue
		}
		if id := rec[2]; id != "" {
			track := bodies[id]
			if track == nil {
				track = &BodyTrack{}
				bodies[id] = track
			}
			px, _ := strconv.ParseFloat(rec[3], 64)
			py, _ := strconv.ParseFloat(rec[4], 64)
			pz, _ := strconv.ParseFloat(rec[5], 64)
			speed, _ := strconv.ParseFloat(rec[9], 64)
			track.Times = append(track.Times, t)
			track.Positions = append(track.Positions, [3]float64{px, py, pz})
			track.Speeds = append(track.Speeds, speed)
		}
		if id := rec[10]; id != "" {
			track := zones[id]
			if track == nil {
				track = &ZoneTrack{}
				zones[id] = track
			}
			force, _ := strconv.ParseFloat(rec[11], 64)
			sample, _ := strconv.ParseFloat(rec[12], 64)
			track.Times = append(track.Times, t)
			track.Forces = append(track.Forces, force)
			track.Samples = append(track.Samples, sample)
		}
	}
	return bodies, zones, nil
}

// LoadEvents reads a saved run's force events.
func (s *Store) LoadEvents(runID string) ([]kinetic.ForceEvent, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "events.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	events := make([]kinetic.ForceEvent, 0, len(records))
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) < len(eventHeader) {
			continue
		}
		step, _ := strconv.Atoi(rec[0])
		t, _ := strconv.ParseFloat(rec[1], 64)
		mag, _ := strconv.ParseFloat(rec[6], 64)
		ev := kinetic.ForceEvent{
			Step: step, Time: t, Source: rec[2], Body: rec[3], Magnitude: mag,
		}
		if rec[4] == kinetic.Torque.String() {
			ev.Kind = kinetic.Torque
		}
		if rec[5] == kinetic.Impulse.String() {
			ev.Mode = kinetic.Impulse
		}
		for j := 0; j < 3; j++ {
			ev.Direction[j], _ = strconv.ParseFloat(rec[7+j], 64)
			ev.Origin[j], _ = strconv.ParseFloat(rec[10+j], 64)
		}
		events = append(events, ev)
	}
	return events, nil
}
