package recorder

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/forcelab/internal/hostsim"
	"github.com/san-kum/forcelab/internal/metrics"
	"github.com/san-kum/forcelab/internal/scene"
)

func openTest(t *testing.T) *Manager {
	t.Helper()
	m, err := Open(filepath.Join(t.TempDir(), "history.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func sampleRun(t *testing.T) (*hostsim.World, *hostsim.Result) {
	t.Helper()
	sc := &scene.Scenario{
		Name:  "windy",
		World: scene.WorldConfig{Dt: 0.1, Duration: 0.5, Seed: 1},
		Bodies: []scene.BodyConfig{
			{ID: "crate", Mass: 1, Size: [3]float64{1, 1, 1}, Position: [3]float64{0, 0.5, 0}},
		},
		Zones: []scene.ZoneConfig{
			{ID: "breeze", Position: [3]float64{0, 0.5, 0}, Size: [3]float64{10, 10, 10},
				BaseForce: 2},
		},
	}
	w, err := hostsim.NewWorld(sc)
	require.NoError(t, err)
	w.AddMetric(metrics.NewPeakForce())
	res, err := w.Run(context.Background())
	require.NoError(t, err)
	return w, res
}

func TestRecordAndHistory(t *testing.T) {
	m := openTest(t)
	w, res := sampleRun(t)

	require.NoError(t, m.Record("windy_1", w, res))

	runs, err := m.History(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "windy_1", runs[0].RunID)
	require.Equal(t, "windy", runs[0].Scenario)
	require.Equal(t, res.StepsTaken, runs[0].Steps)
	require.Equal(t, 2.0, runs[0].PeakForce)
}

func TestRecordDuplicateRunID(t *testing.T) {
	m := openTest(t)
	w, res := sampleRun(t)

	require.NoError(t, m.Record("windy_1", w, res))
	require.Error(t, m.Record("windy_1", w, res))
}

func TestEventsAndWindSamples(t *testing.T) {
	m := openTest(t)
	w, res := sampleRun(t)
	require.NoError(t, m.Record("windy_1", w, res))

	events, err := m.Events("windy_1")
	require.NoError(t, err)
	require.Len(t, events, res.StepsTaken) // one stay per step inside the zone
	require.Equal(t, "breeze", events[0].Source)

	samples, err := m.WindSamples("windy_1")
	require.NoError(t, err)
	require.Len(t, samples, res.StepsTaken)
	require.Equal(t, 2.0, samples[0].Force)
}

func TestHistoryLimit(t *testing.T) {
	m := openTest(t)
	w, res := sampleRun(t)

	require.NoError(t, m.Record("a_1", w, res))
	require.NoError(t, m.Record("a_2", w, res))
	require.NoError(t, m.Record("a_3", w, res))

	runs, err := m.History(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
}

func TestOpenBadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "nested", "history.db"), zerolog.Nop())
	require.Error(t, err)
}
