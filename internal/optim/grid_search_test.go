package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/forcelab/internal/scene"
)

func baseScenario() *scene.Scenario {
	return &scene.Scenario{
		Name: "sweep",
		World: scene.WorldConfig{
			Dt:       0.1,
			Duration: 0.5,
			Gravity:  -9.81,
			Seed:     3,
		},
		Bodies: []scene.BodyConfig{
			{ID: "crate", Mass: 2, Size: [3]float64{1, 1, 1}, Position: [3]float64{0, 0.5, 0}},
		},
		Zones: []scene.ZoneConfig{
			{ID: "breeze", Size: [3]float64{10, 10, 10}, BaseForce: 2},
		},
	}
}

func TestSweepPicksStrongestZone(t *testing.T) {
	s := NewSweep([]Param{
		{Name: "zone.breeze.base_force", Values: []float64{1, 3, 2}},
	}, 2)

	res, err := s.Run(context.Background(), baseScenario(), "peak_force")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Points) != 3 {
		t.Fatalf("got %d points, want 3", len(res.Points))
	}
	if got := res.Best.Params["zone.breeze.base_force"]; got != 3 {
		t.Errorf("best base_force = %v, want 3", got)
	}
	// steady zone applies its base force verbatim
	if res.Best.Score != 3 {
		t.Errorf("best score = %v, want 3", res.Best.Score)
	}
	if res.Points[0].Score < res.Points[1].Score {
		t.Error("points not sorted best-first")
	}
}

func TestSweepMinimize(t *testing.T) {
	s := NewSweep([]Param{
		{Name: "zone.breeze.base_force", Values: []float64{1, 3}},
	}, 1)
	s.Minimize = true

	res, err := s.Run(context.Background(), baseScenario(), "peak_force")
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Best.Params["zone.breeze.base_force"]; got != 1 {
		t.Errorf("best base_force = %v, want 1", got)
	}
}

func TestSweepCrossProduct(t *testing.T) {
	s := NewSweep([]Param{
		{Name: "zone.breeze.base_force", Values: []float64{1, 2}},
		{Name: "body.crate.mass", Values: []float64{1, 2, 4}},
	}, 4)

	res, err := s.Run(context.Background(), baseScenario(), "peak_force")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Points) != 6 {
		t.Fatalf("got %d points, want 6", len(res.Points))
	}
	for _, p := range res.Points {
		if len(p.Params) != 2 {
			t.Fatalf("point has %d params, want 2", len(p.Params))
		}
	}
}

func TestSweepUnknownParam(t *testing.T) {
	s := NewSweep([]Param{
		{Name: "zone.breeze.twist", Values: []float64{1}},
	}, 1)

	_, err := s.Run(context.Background(), baseScenario(), "peak_force")
	if err == nil {
		t.Fatal("expected error for unknown parameter")
	}
}

func TestSweepBaseUntouched(t *testing.T) {
	base := baseScenario()
	s := NewSweep([]Param{
		{Name: "zone.breeze.base_force", Values: []float64{7}},
	}, 1)

	if _, err := s.Run(context.Background(), base, "peak_force"); err != nil {
		t.Fatal(err)
	}
	if base.Zones[0].BaseForce != 2 {
		t.Errorf("sweep mutated the base scenario: base_force = %v", base.Zones[0].BaseForce)
	}
}

func TestApplyErrors(t *testing.T) {
	sc := baseScenario()
	if err := apply(sc, "body.ghost.mass", 1); err == nil {
		t.Error("expected error for unknown body")
	}
	err := apply(sc, "nonsense", 1)
	if !errors.Is(err, ErrUnknownParam) {
		t.Errorf("err = %v, want ErrUnknownParam", err)
	}
}
