package scene

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownPreset is returned by Preset for names not in the built-in set.
var ErrUnknownPreset = errors.New("unknown preset")

var presets = map[string]func() *Scenario{
	"hover": func() *Scenario {
		return &Scenario{
			Name:        "hover",
			Description: "grounded jump rule: hold space to hop off the ground plane",
			World:       WorldConfig{Dt: 0.02, Duration: 10, Gravity: -9.81, Ground: true},
			Bodies: []BodyConfig{
				{ID: "hopper", Mass: 1, Size: [3]float64{1, 1, 1}, Position: [3]float64{0, 0.5, 0}},
			},
			Rules: []RuleConfig{
				{
					Name: "jump", Owner: "hopper", Strength: 6, Key: "space",
					Grounded: true, SpeedCap: 20, Direction: [3]float64{0, 1, 0},
				},
			},
			Keys: []KeyWindow{
				{Key: "space", From: 1, To: 1.1},
				{Key: "space", From: 4, To: 4.1},
				{Key: "space", From: 7, To: 7.1},
			},
		}
	},
	"boostpad": func() *Scenario {
		return &Scenario{
			Name:        "boostpad",
			Description: "object-bound impulse: one kick per pass through the pad",
			World:       WorldConfig{Dt: 0.02, Duration: 8, Gravity: -9.81, Ground: true},
			Bodies: []BodyConfig{
				{
					ID: "cart", Mass: 2, Size: [3]float64{1, 1, 1},
					Position: [3]float64{-6, 0.5, 0}, Velocity: [3]float64{2, 0, 0},
				},
			},
			Volumes: []VolumeConfig{
				{ID: "pad", Position: [3]float64{0, 0.5, 0}, Size: [3]float64{1, 2, 2}},
			},
			Rules: []RuleConfig{
				{
					Name: "boost", Owner: "cart", Strength: 8, Object: "pad",
					SpeedCap: 30, Direction: [3]float64{1, 0, 0},
				},
			},
		}
	},
	"windtunnel": func() *Scenario {
		return &Scenario{
			Name:        "windtunnel",
			Description: "variation wind: smooth-noise force on a drifting crate",
			World:       WorldConfig{Dt: 0.02, Duration: 12, Gravity: -9.81, Ground: true, Seed: 42},
			Bodies: []BodyConfig{
				{ID: "crate", Mass: 1, Size: [3]float64{1, 1, 1}, Position: [3]float64{0, 0.5, -3}},
			},
			Zones: []ZoneConfig{
				{
					ID: "tunnel", Position: [3]float64{0, 1, 0}, Size: [3]float64{4, 3, 14},
					BaseForce: 3, Variation: true, Frequency: 0.8, MinForce: 0.5,
				},
			},
		}
	},
	"gusts": func() *Scenario {
		return &Scenario{
			Name:        "gusts",
			Description: "fractal gusts: layered-octave wind on two crates",
			World:       WorldConfig{Dt: 0.02, Duration: 20, Gravity: -9.81, Ground: true, Seed: 7},
			Bodies: []BodyConfig{
				{ID: "light", Mass: 0.5, Size: [3]float64{1, 1, 1}, Position: [3]float64{-2, 0.5, -4}},
				{ID: "heavy", Mass: 4, Size: [3]float64{1, 1, 1}, Position: [3]float64{2, 0.5, -4}},
			},
			Zones: []ZoneConfig{
				{
					ID: "storm", Position: [3]float64{0, 1, 0}, Size: [3]float64{8, 3, 16},
					BaseForce: 5, Variation: true, Frequency: 1.2, MinForce: 0.2,
					Octaves: 4, Persistence: 0.5,
				},
			},
		}
	},
	"spintop": func() *Scenario {
		return &Scenario{
			Name:        "spintop",
			Description: "torque rule: spin up while the key is held, capped by speed",
			World:       WorldConfig{Dt: 0.02, Duration: 10, Gravity: 0, Ground: false},
			Bodies: []BodyConfig{
				{ID: "top", Mass: 1, Size: [3]float64{1, 0.4, 1}, Position: [3]float64{0, 2, 0}},
			},
			Rules: []RuleConfig{
				{
					Name: "spin", Owner: "top", Kind: "torque", Strength: 2, Key: "s",
					Continuous: true, SpeedCap: 10, Direction: [3]float64{0, 1, 0},
				},
			},
			Keys: []KeyWindow{{Key: "s", From: 0, To: 6}},
		}
	},
	"marker-push": func() *Scenario {
		return &Scenario{
			Name:        "marker-push",
			Description: "origin override: off-center push spins the crate while moving it",
			World:       WorldConfig{Dt: 0.02, Duration: 8, Gravity: 0, Ground: false},
			Bodies: []BodyConfig{
				{ID: "crate", Mass: 1, Size: [3]float64{1, 1, 1}, Position: [3]float64{0, 2, 0}},
			},
			Markers: []MarkerConfig{
				{ID: "corner", Position: [3]float64{0.5, 0, 0}, Attach: "crate"},
			},
			Rules: []RuleConfig{
				{
					Name: "shove", Owner: "crate", Strength: 4, Key: "p",
					Continuous: true, SpeedCap: 6,
					Direction: [3]float64{0, 0, 1}, Origin: "corner",
				},
			},
			Keys: []KeyWindow{{Key: "p", From: 0.5, To: 3}},
		}
	},
}

// Preset builds a fresh copy of a built-in scenario.
func Preset(name string) (*Scenario, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return build(), nil
}

// PresetNames lists the built-in scenarios, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
