package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/forcelab/internal/hostsim"
)

// ExportData is the flat JSON shape for a finished run: metadata plus the
// full frame stream.
type ExportData struct {
	Scenario string             `json:"scenario"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Seed     int64              `json:"seed"`
	Steps    int                `json:"steps"`
	Metrics  map[string]float64 `json:"metrics"`
	Frames   []FrameData        `json:"frames"`
}

type FrameData struct {
	Step   int          `json:"step"`
	Time   float64      `json:"time"`
	Bodies []BodyData   `json:"bodies"`
	Wind   []ZoneData   `json:"wind,omitempty"`
	Events []EventData  `json:"events,omitempty"`
}

type BodyData struct {
	ID       string     `json:"id"`
	Position [3]float64 `json:"position"`
	Velocity [3]float64 `json:"velocity"`
	Speed    float64    `json:"speed"`
}

type ZoneData struct {
	Zone   string  `json:"zone"`
	Force  float64 `json:"force"`
	Sample float64 `json:"sample"`
}

type EventData struct {
	Source    string     `json:"source"`
	Body      string     `json:"body"`
	Kind      string     `json:"kind"`
	Mode      string     `json:"mode"`
	Magnitude float64    `json:"magnitude"`
	Direction [3]float64 `json:"direction"`
	Origin    [3]float64 `json:"origin"`
}

func buildExport(w *hostsim.World, res *hostsim.Result) ExportData {
	sc := w.Scenario()
	data := ExportData{
		Scenario: res.Scenario,
		Dt:       sc.World.Dt,
		Duration: sc.World.Duration,
		Seed:     sc.World.Seed,
		Steps:    res.StepsTaken,
		Metrics:  res.Metrics,
		Frames:   make([]FrameData, 0, len(res.Frames)),
	}
	for _, fr := range res.Frames {
		fd := FrameData{Step: fr.Step, Time: fr.Time}
		for _, b := range fr.Bodies {
			fd.Bodies = append(fd.Bodies, BodyData{
				ID:       b.ID,
				Position: b.Position,
				Velocity: b.Velocity,
				Speed:    b.Speed(),
			})
		}
		for _, z := range fr.Wind {
			fd.Wind = append(fd.Wind, ZoneData{Zone: z.Zone, Force: z.Force, Sample: z.Sample})
		}
		for _, e := range fr.Events {
			fd.Events = append(fd.Events, EventData{
				Source:    e.Source,
				Body:      e.Body,
				Kind:      e.Kind.String(),
				Mode:      e.Mode.String(),
				Magnitude: e.Magnitude,
				Direction: e.Direction,
				Origin:    e.Origin,
			})
		}
		data.Frames = append(data.Frames, fd)
	}
	return data
}

// ExportJSON writes the run as indented JSON to path, or to stdout when
// path is empty.
func ExportJSON(path string, w *hostsim.World, res *hostsim.Result) error {
	var out io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(buildExport(w, res))
}

// ExportCSV writes the run's frame rows to path, or to stdout when path is
// empty, using the same columns as the saved frames.csv.
func ExportCSV(path string, res *hostsim.Result) error {
	if path == "" {
		return writeFramesTo(os.Stdout, res.Frames)
	}
	return writeFrames(path, res.Frames)
}
