// Package optim sweeps scenario parameters over a grid, running each
// combination headless and ranking the results by a named metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/san-kum/forcelab/internal/hostsim"
	"github.com/san-kum/forcelab/internal/metrics"
	"github.com/san-kum/forcelab/internal/scene"
)

// Param names one swept scenario parameter and the values to try.
// Recognized names:
//
//	world.gravity
//	body.<id>.mass
//	rule.<name>.strength
//	rule.<name>.speed_cap
//	zone.<id>.base_force
//	zone.<id>.min_force
//	zone.<id>.frequency
type Param struct {
	Name   string
	Values []float64
}

// Point is one evaluated grid combination.
type Point struct {
	Params map[string]float64
	Score  float64
	Err    error
}

// Result collects every evaluated point plus the winner.
type Result struct {
	Metric string
	Points []Point
	Best   Point
}

// Sweep expands the cross product of its parameters and evaluates the
// combinations concurrently.
type Sweep struct {
	params  []Param
	workers int

	// Minimize flips the ranking; the default keeps the highest score.
	Minimize bool
}

func NewSweep(params []Param, workers int) *Sweep {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Sweep{params: params, workers: workers}
}

var ErrUnknownParam = errors.New("unknown sweep parameter")

// apply writes one parameter value into the scenario in place.
func apply(sc *scene.Scenario, name string, v float64) error {
	parts := strings.Split(name, ".")

	switch {
	case len(parts) == 2 && parts[0] == "world" && parts[1] == "gravity":
		sc.World.Gravity = v
		return nil

	case len(parts) == 3 && parts[0] == "body" && parts[2] == "mass":
		for i := range sc.Bodies {
			if sc.Bodies[i].ID == parts[1] {
				sc.Bodies[i].Mass = v
				return nil
			}
		}

	case len(parts) == 3 && parts[0] == "rule":
		for i := range sc.Rules {
			if sc.Rules[i].Name != parts[1] {
				continue
			}
			switch parts[2] {
			case "strength":
				sc.Rules[i].Strength = v
				return nil
			case "speed_cap":
				sc.Rules[i].SpeedCap = v
				return nil
			}
		}

	case len(parts) == 3 && parts[0] == "zone":
		for i := range sc.Zones {
			if sc.Zones[i].ID != parts[1] {
				continue
			}
			switch parts[2] {
			case "base_force":
				sc.Zones[i].BaseForce = v
				return nil
			case "min_force":
				sc.Zones[i].MinForce = v
				return nil
			case "frequency":
				sc.Zones[i].Frequency = v
				return nil
			}
		}
	}

	return fmt.Errorf("%w: %q", ErrUnknownParam, name)
}

// expand builds the full cross product of parameter assignments.
func (s *Sweep) expand() []map[string]float64 {
	combos := []map[string]float64{{}}
	for _, p := range s.params {
		next := make([]map[string]float64, 0, len(combos)*len(p.Values))
		for _, base := range combos {
			for _, v := range p.Values {
				c := make(map[string]float64, len(base)+1)
				for k, bv := range base {
					c[k] = bv
				}
				c[p.Name] = v
				next = append(next, c)
			}
		}
		combos = next
	}
	return combos
}

// Run evaluates every combination against the base scenario and reports
// the point whose metric scored best. Individual failed runs are kept in
// Points with their error; Run itself fails only when no point succeeds.
func (s *Sweep) Run(ctx context.Context, base *scene.Scenario, metric string) (*Result, error) {
	combos := s.expand()
	points := make([]Point, len(combos))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				points[idx] = s.evaluate(ctx, base, combos[idx], metric)
			}
		}()
	}
	for idx := range combos {
		select {
		case <-ctx.Done():
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Metric: metric, Points: points}
	best := math.Inf(-1)
	if s.Minimize {
		best = math.Inf(1)
	}
	found := false
	for _, p := range points {
		if p.Err != nil {
			continue
		}
		better := p.Score > best
		if s.Minimize {
			better = p.Score < best
		}
		if better {
			best = p.Score
			res.Best = p
			found = true
		}
	}
	if !found {
		return nil, errors.New("no sweep combination completed")
	}

	sort.SliceStable(res.Points, func(i, j int) bool {
		if res.Points[i].Err != nil || res.Points[j].Err != nil {
			return res.Points[j].Err != nil && res.Points[i].Err == nil
		}
		if s.Minimize {
			return res.Points[i].Score < res.Points[j].Score
		}
		return res.Points[i].Score > res.Points[j].Score
	})
	return res, nil
}

func (s *Sweep) evaluate(ctx context.Context, base *scene.Scenario, params map[string]float64, metric string) Point {
	pt := Point{Params: params}

	sc := base.Clone()
	for name, v := range params {
		if err := apply(sc, name, v); err != nil {
			pt.Err = err
			return pt
		}
	}

	w, err := hostsim.NewWorld(sc)
	if err != nil {
		pt.Err = err
		return pt
	}
	for _, m := range metrics.Standard() {
		w.AddMetric(m)
	}

	res, err := w.Run(ctx)
	if err != nil {
		pt.Err = err
		return pt
	}

	score, ok := res.Metrics[metric]
	if !ok {
		pt.Err = fmt.Errorf("metric %q not reported", metric)
		return pt
	}
	pt.Score = score
	return pt
}
