package metrics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/forcelab/internal/kinetic"
)

func frameWithEvents(t float64, events ...kinetic.ForceEvent) kinetic.Frame {
	return kinetic.Frame{Time: t, Events: events}
}

func TestImpulseCountIgnoresContinuous(t *testing.T) {
	m := NewImpulseCount()

	m.Observe(frameWithEvents(0,
		kinetic.ForceEvent{Mode: kinetic.Impulse},
		kinetic.ForceEvent{Mode: kinetic.Continuous},
	))
	m.Observe(frameWithEvents(0.1,
		kinetic.ForceEvent{Mode: kinetic.Impulse},
	))

	if got := m.Value(); got != 2 {
		t.Errorf("impulse count %f, want 2", got)
	}

	m.Reset()
	if got := m.Value(); got != 0 {
		t.Errorf("reset left count at %f", got)
	}
}

func TestPeakForceUsesAbsoluteMagnitude(t *testing.T) {
	m := NewPeakForce()

	m.Observe(frameWithEvents(0,
		kinetic.ForceEvent{Magnitude: 3},
		kinetic.ForceEvent{Magnitude: -7},
	))

	if got := m.Value(); got != 7 {
		t.Errorf("peak %f, want 7", got)
	}
}

func TestTotalWorkContinuous(t *testing.T) {
	m := NewTotalWork()

	// Body moving +x at 2 m/s under a 5 N force along +x: 10 W.
	ev := kinetic.ForceEvent{
		Body: "b", Kind: kinetic.Directional, Mode: kinetic.Continuous,
		Magnitude: 5, Direction: mgl64.Vec3{1, 0, 0},
	}
	body := kinetic.BodyState{ID: "b", Velocity: mgl64.Vec3{2, 0, 0}}

	// First frame establishes the clock; no dt yet.
	m.Observe(kinetic.Frame{Time: 0, Events: []kinetic.ForceEvent{ev}, Bodies: []kinetic.BodyState{body}})
	m.Observe(kinetic.Frame{Time: 0.5, Events: []kinetic.ForceEvent{ev}, Bodies: []kinetic.BodyState{body}})

	if got := m.Value(); math.Abs(got-5.0) > 1e-12 {
		t.Errorf("work %f, want 5 (10 W over 0.5 s)", got)
	}
}

func TestTotalWorkSkipsTorque(t *testing.T) {
	m := NewTotalWork()
	ev := kinetic.ForceEvent{
		Body: "b", Kind: kinetic.Torque, Mode: kinetic.Continuous,
		Magnitude: 5, Direction: mgl64.Vec3{0, 1, 0},
	}
	body := kinetic.BodyState{ID: "b", Velocity: mgl64.Vec3{0, 2, 0}}

	m.Observe(kinetic.Frame{Time: 0, Events: []kinetic.ForceEvent{ev}, Bodies: []kinetic.BodyState{body}})
	m.Observe(kinetic.Frame{Time: 1, Events: []kinetic.ForceEvent{ev}, Bodies: []kinetic.BodyState{body}})

	if got := m.Value(); got != 0 {
		t.Errorf("torque contributed %f work", got)
	}
}

func TestGustRangeSpread(t *testing.T) {
	m := NewGustRange()

	for _, f := range []float64{2.0, 3.5, 1.5, 2.8} {
		m.Observe(kinetic.Frame{Wind: []kinetic.ZoneSample{{Zone: "z", Force: f}}})
	}

	if got := m.Value(); math.Abs(got-2.0) > 1e-12 {
		t.Errorf("gust range %f, want 2.0", got)
	}
}

func TestGustRangeNoWind(t *testing.T) {
	m := NewGustRange()
	m.Observe(kinetic.Frame{})

	if got := m.Value(); got != 0 {
		t.Errorf("windless run reported gust range %f", got)
	}
}
