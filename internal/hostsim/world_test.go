package hostsim

import (
	"context"
	"testing"

	"github.com/san-kum/forcelab/internal/kinetic"
	"github.com/san-kum/forcelab/internal/metrics"
	"github.com/san-kum/forcelab/internal/scene"
)

func baseScenario() *scene.Scenario {
	return &scene.Scenario{
		Name: "test",
		World: scene.WorldConfig{
			Dt:       0.1,
			Duration: 1.0,
			Gravity:  0,
			Ground:   false,
		},
		Bodies: []scene.BodyConfig{
			{ID: "crate", Mass: 1, Size: [3]float64{1, 1, 1}},
		},
	}
}

func countEvents(frames []kinetic.Frame, source string) int {
	n := 0
	for _, f := range frames {
		for _, e := range f.Events {
			if e.Source == source {
				n++
			}
		}
	}
	return n
}

func TestObjectBoundImpulseFiresOnceOnEntry(t *testing.T) {
	sc := baseScenario()
	sc.Bodies[0].Velocity = [3]float64{1, 0, 0}
	sc.Volumes = []scene.VolumeConfig{
		{ID: "pad", Position: [3]float64{0.5, 0, 0}, Size: [3]float64{0.4, 2, 2}},
	}
	sc.Rules = []scene.RuleConfig{
		{
			Name: "boost", Owner: "crate", Strength: 5, Object: "pad",
			SpeedCap: 100, Direction: [3]float64{0, 1, 0},
		},
	}

	w, err := NewWorld(sc)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	res, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := countEvents(res.Frames, "boost"); got != 1 {
		t.Errorf("impulse fired %d times, want exactly 1 on entry", got)
	}
	final := res.Final[0]
	if !almostEqual(final.Velocity.Y(), 5, 1e-9) {
		t.Errorf("final vy=%f, want 5 from a single 5 N*s impulse", final.Velocity.Y())
	}
}

func TestObjectBoundContinuousFiresEveryOverlapStep(t *testing.T) {
	sc := baseScenario()
	sc.Volumes = []scene.VolumeConfig{
		{ID: "field", Position: [3]float64{0, 0, 0}, Size: [3]float64{10, 10, 10}},
	}
	sc.Rules = []scene.RuleConfig{
		{
			Name: "push", Owner: "crate", Strength: 1, Object: "field",
			Continuous: true, SpeedCap: 100, Direction: [3]float64{0, 0, 1},
		},
	}

	w, err := NewWorld(sc)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	res, _ := w.Run(context.Background())

	if got := countEvents(res.Frames, "push"); got != res.StepsTaken {
		t.Errorf("continuous rule fired %d times over %d steps", got, res.StepsTaken)
	}
}

func TestKeyBoundImpulseOncePerPressInterval(t *testing.T) {
	sc := baseScenario()
	sc.Keys = []scene.KeyWindow{{Key: "space", From: 0.2, To: 0.5}}
	sc.Rules = []scene.RuleConfig{
		{
			Name: "jump", Owner: "crate", Strength: 3, Key: "space",
			SpeedCap: 100, Direction: [3]float64{0, 1, 0},
		},
	}

	w, err := NewWorld(sc)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	res, _ := w.Run(context.Background())

	if got := countEvents(res.Frames, "jump"); got != 1 {
		t.Errorf("non-continuous key rule fired %d times across one press interval, want 1", got)
	}
}

func TestKeyBoundContinuousFiresEveryHeldStep(t *testing.T) {
	sc := baseScenario()
	sc.Keys = []scene.KeyWindow{{Key: "w", From: 0.2, To: 0.5}}
	sc.Rules = []scene.RuleConfig{
		{
			Name: "thrust", Owner: "crate", Strength: 3, Key: "w",
			Continuous: true, SpeedCap: 100, Direction: [3]float64{0, 0, 1},
		},
	}

	w, err := NewWorld(sc)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	res, _ := w.Run(context.Background())

	// Held at t = 0.2, 0.3, 0.4 with dt = 0.1.
	if got := countEvents(res.Frames, "thrust"); got != 3 {
		t.Errorf("continuous key rule fired %d times, want 3", got)
	}
}

func TestGroundedRuleNeverFiresWithoutGround(t *testing.T) {
	sc := baseScenario()
	sc.World.Ground = false
	sc.Keys = []scene.KeyWindow{{Key: "space", From: 0, To: 1}}
	sc.Rules = []scene.RuleConfig{
		{
			Name: "jump", Owner: "crate", Strength: 3, Key: "space",
			Continuous: true, Grounded: true,
			SpeedCap: 100, Direction: [3]float64{0, 1, 0},
		},
	}

	w, err := NewWorld(sc)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	res, _ := w.Run(context.Background())

	if got := countEvents(res.Frames, "jump"); got != 0 {
		t.Errorf("grounded rule fired %d times with no surface in probe range", got)
	}
}

func TestGroundedRuleFiresOnGroundPlane(t *testing.T) {
	sc := baseScenario()
	sc.World.Ground = true
	sc.World.Gravity = -9.81
	sc.Bodies[0].Position = [3]float64{0, 0.5, 0} // resting on the plane
	sc.Keys = []scene.KeyWindow{{Key: "space", From: 0, To: 0.15}}
	sc.Rules = []scene.RuleConfig{
		{
			Name: "jump", Owner: "crate", Strength: 3, Key: "space",
			Grounded: true, SpeedCap: 100, Direction: [3]float64{0, 1, 0},
		},
	}

	w, err := NewWorld(sc)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	res, _ := w.Run(context.Background())

	if got := countEvents(res.Frames, "jump"); got != 1 {
		t.Errorf("grounded jump fired %d times, want 1", got)
	}
}

func TestSpeedCapGatesRule(t *testing.T) {
	sc := baseScenario()
	sc.Bodies[0].Velocity = [3]float64{2, 0, 0} // speed 2 >= cap 2
	sc.Keys = []scene.KeyWindow{{Key: "w", From: 0, To: 1}}
	sc.Rules = []scene.RuleConfig{
		{
			Name: "push", Owner: "crate", Strength: 1, Key: "w",
			Continuous: true, SpeedCap: 2, Direction: [3]float64{1, 0, 0},
		},
	}

	w, err := NewWorld(sc)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	res, _ := w.Run(context.Background())

	if got := countEvents(res.Frames, "push"); got != 0 {
		t.Errorf("rule fired %d times at the speed cap, want 0", got)
	}
}

func TestWindZoneConstantForce(t *testing.T) {
	sc := baseScenario()
	sc.Zones = []scene.ZoneConfig{
		{ID: "fan", Position: [3]float64{0, 0, 0}, Size: [3]float64{10, 10, 10}, BaseForce: 2},
	}

	w, err := NewWorld(sc)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	res, _ := w.Run(context.Background())

	for _, f := range res.Frames {
		if len(f.Wind) != 1 || !almostEqual(f.Wind[0].Force, 2, 1e-12) {
			t.Fatalf("step %d: wind sample %+v, want constant force 2", f.Step, f.Wind)
		}
		if got := countEvents([]kinetic.Frame{f}, "fan"); got != 1 {
			t.Fatalf("step %d: %d fan events, want 1 per overlap step", f.Step, got)
		}
	}

	// F=2 on 1 kg for 1 s along +Z.
	if vz := res.Final[0].Velocity.Z(); !almostEqual(vz, 2, 1e-9) {
		t.Errorf("final vz=%f, want 2", vz)
	}
}

func TestWindZoneVariationStaysInRange(t *testing.T) {
	sc := baseScenario()
	sc.World.Duration = 5
	sc.World.Seed = 7
	sc.Zones = []scene.ZoneConfig{
		{
			ID: "gusts", Position: [3]float64{0, 0, 0}, Size: [3]float64{10, 10, 10},
			BaseForce: 4, Variation: true, Frequency: 1.5, MinForce: 1,
		},
	}

	w, err := NewWorld(sc)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	res, _ := w.Run(context.Background())

	for _, f := range res.Frames {
		force := f.Wind[0].Force
		if force < 1-1e-9 || force > 4+1e-9 {
			t.Fatalf("step %d: force %f outside [1,4]", f.Step, force)
		}
	}
}

func TestRelativeDirectionFollowsOwnerYaw(t *testing.T) {
	sc := baseScenario()
	sc.Bodies[0].YawDeg = 90 // local +Z now points along world +X
	sc.Keys = []scene.KeyWindow{{Key: "w", From: 0, To: 0.15}}
	sc.Rules = []scene.RuleConfig{
		{
			Name: "fwd", Owner: "crate", Strength: 4, Key: "w",
			SpeedCap: 100, Direction: [3]float64{0, 0, 1}, Relative: true,
		},
	}

	w, err := NewWorld(sc)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	res, _ := w.Run(context.Background())

	v := res.Final[0].Velocity
	if !almostEqual(v.X(), 4, 1e-9) || !almostEqual(v.Z(), 0, 1e-9) {
		t.Errorf("relative impulse gave v=%v, want (4,0,0)", v)
	}
}

func TestMarkerOriginInducesSpin(t *testing.T) {
	sc := baseScenario()
	sc.Markers = []scene.MarkerConfig{
		{ID: "edge", Position: [3]float64{1, 0, 0}, Attach: "crate"},
	}
	sc.Keys = []scene.KeyWindow{{Key: "w", From: 0, To: 0.15}}
	sc.Rules = []scene.RuleConfig{
		{
			Name: "shove", Owner: "crate", Strength: 10, Key: "w",
			SpeedCap: 100, Direction: [3]float64{0, 0, 1}, Origin: "edge",
		},
	}

	w, err := NewWorld(sc)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	w.Run(context.Background())

	if got := w.Bodies()[0].AngularVelocity().Len(); got == 0 {
		t.Error("off-center marker application should spin the body")
	}
}

func TestNormalizedDirectionMagnitude(t *testing.T) {
	sc := baseScenario()
	sc.Keys = []scene.KeyWindow{{Key: "w", From: 0, To: 0.15}}
	sc.Rules = []scene.RuleConfig{
		{
			Name: "kick", Owner: "crate", Strength: 6, Key: "w",
			SpeedCap: 100, Direction: [3]float64{0, 0, 100},
		},
	}

	w, err := NewWorld(sc)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	res, _ := w.Run(context.Background())

	if vz := res.Final[0].Velocity.Z(); !almostEqual(vz, 6, 1e-9) {
		t.Errorf("un-normalized config direction changed the magnitude: vz=%f, want 6", vz)
	}
}

func TestMetricsObserveRun(t *testing.T) {
	sc := baseScenario()
	sc.Bodies[0].Velocity = [3]float64{1, 0, 0}
	sc.Volumes = []scene.VolumeConfig{
		{ID: "pad", Position: [3]float64{0.5, 0, 0}, Size: [3]float64{0.4, 2, 2}},
	}
	sc.Rules = []scene.RuleConfig{
		{
			Name: "boost", Owner: "crate", Strength: 5, Object: "pad",
			SpeedCap: 100, Direction: [3]float64{0, 1, 0},
		},
	}

	w, err := NewWorld(sc)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	w.AddMetric(metrics.NewImpulseCount())
	w.AddMetric(metrics.NewPeakForce())
	res, _ := w.Run(context.Background())

	if got := res.Metrics["impulses"]; got != 1 {
		t.Errorf("impulses metric %f, want 1", got)
	}
	if got := res.Metrics["peak_force"]; !almostEqual(got, 5, 1e-12) {
		t.Errorf("peak_force metric %f, want 5", got)
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	sc := baseScenario()
	sc.World.Duration = 1000

	w, err := NewWorld(sc)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	steps := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		res, runErr := w.RunWithCallback(ctx, func(kinetic.Frame) bool {
			steps++
			if steps == 10 {
				cancel()
			}
			return true
		})
		if runErr != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", runErr)
		}
		if res.StepsTaken >= int(sc.World.Duration/sc.World.Dt) {
			t.Error("cancellation did not stop the run early")
		}
	}()
	<-done
}

func TestRunCallbackCanStopEarly(t *testing.T) {
	sc := baseScenario()

	w, err := NewWorld(sc)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	res, runErr := w.RunWithCallback(context.Background(), func(f kinetic.Frame) bool {
		return f.Step < 3
	})
	if runErr != nil {
		t.Fatalf("Run: %v", runErr)
	}
	if res.StepsTaken != 4 {
		t.Errorf("steps taken %d, want 4 (stop after the step that returned false)", res.StepsTaken)
	}
}
