// Package scene defines YAML scenario files: the world settings, bodies,
// rules, wind zones, trigger volumes, markers, obstacles, and scripted key
// timelines that make up one runnable setup.
package scene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.02
	DefaultDuration = 10.0
	DefaultGravity  = -9.81
)

// Scenario describes a full run. It is plain data: the hostsim package
// turns it into live bodies, evaluators, and zones.
type Scenario struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	World       WorldConfig      `yaml:"world"`
	Bodies      []BodyConfig     `yaml:"bodies"`
	Rules       []RuleConfig     `yaml:"rules,omitempty"`
	Zones       []ZoneConfig     `yaml:"zones,omitempty"`
	Volumes     []VolumeConfig   `yaml:"volumes,omitempty"`
	Markers     []MarkerConfig   `yaml:"markers,omitempty"`
	Obstacles   []ObstacleConfig `yaml:"obstacles,omitempty"`
	Keys        []KeyWindow      `yaml:"keys,omitempty"`
}

type WorldConfig struct {
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`
	Gravity  float64 `yaml:"gravity"`
	Seed     int64   `yaml:"seed"`
	Ground   bool    `yaml:"ground"`
}

type BodyConfig struct {
	ID       string     `yaml:"id"`
	Mass     float64    `yaml:"mass"`
	Size     [3]float64 `yaml:"size"`
	Position [3]float64 `yaml:"position"`
	Velocity [3]float64 `yaml:"velocity,omitempty"`
	YawDeg   float64    `yaml:"yaw_deg,omitempty"`
}

// RuleConfig binds one force rule to an owner body. Kind is "directional"
// or "torque"; exactly one of Key/Object names the trigger.
type RuleConfig struct {
	Name       string     `yaml:"name"`
	Owner      string     `yaml:"owner"`
	Kind       string     `yaml:"kind,omitempty"`
	Strength   float64    `yaml:"strength"`
	Key        string     `yaml:"key,omitempty"`
	Object     string     `yaml:"object,omitempty"`
	Continuous bool       `yaml:"continuous,omitempty"`
	Grounded   bool       `yaml:"grounded,omitempty"`
	SpeedCap   float64    `yaml:"speed_cap"`
	Direction  [3]float64 `yaml:"direction"`
	Relative   bool       `yaml:"relative,omitempty"`
	Origin     string     `yaml:"origin,omitempty"`
}

// ZoneConfig places a wind zone. Octaves <= 1 selects the plain smooth
// sampler; higher values layer fractal octaves with the given persistence.
type ZoneConfig struct {
	ID          string     `yaml:"id"`
	Position    [3]float64 `yaml:"position"`
	YawDeg      float64    `yaml:"yaw_deg,omitempty"`
	Size        [3]float64 `yaml:"size"`
	BaseForce   float64    `yaml:"base_force"`
	Variation   bool       `yaml:"variation,omitempty"`
	Frequency   float64    `yaml:"frequency,omitempty"`
	MinForce    float64    `yaml:"min_force,omitempty"`
	Octaves     int        `yaml:"octaves,omitempty"`
	Persistence float64    `yaml:"persistence,omitempty"`
}

type VolumeConfig struct {
	ID       string     `yaml:"id"`
	Position [3]float64 `yaml:"position"`
	Size     [3]float64 `yaml:"size"`
}

// MarkerConfig names a point usable as a force origin override. When Attach
// names a body, Position is an offset in that body's local frame and the
// marker tracks it.
type MarkerConfig struct {
	ID       string     `yaml:"id"`
	Position [3]float64 `yaml:"position"`
	Attach   string     `yaml:"attach,omitempty"`
}

type ObstacleConfig struct {
	ID       string     `yaml:"id"`
	Position [3]float64 `yaml:"position"`
	Size     [3]float64 `yaml:"size"`
}

// KeyWindow holds a key from From to To seconds on the scripted timeline.
type KeyWindow struct {
	Key  string  `yaml:"key"`
	From float64 `yaml:"from"`
	To   float64 `yaml:"to"`
}

// DefaultWorld returns the world settings scenarios start from.
func DefaultWorld() WorldConfig {
	return WorldConfig{
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Gravity:  DefaultGravity,
		Ground:   true,
	}
}

// Load reads a scenario file. Unset world fields fall back to defaults.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc := &Scenario{World: DefaultWorld()}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return sc, nil
}

// Save writes the scenario as YAML.
func Save(path string, sc *Scenario) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone deep-copies the scenario. Sweeps mutate clones, never the source.
func (s *Scenario) Clone() *Scenario {
	c := *s
	c.Bodies = append([]BodyConfig(nil), s.Bodies...)
	c.Rules = append([]RuleConfig(nil), s.Rules...)
	c.Zones = append([]ZoneConfig(nil), s.Zones...)
	c.Volumes = append([]VolumeConfig(nil), s.Volumes...)
	c.Markers = append([]MarkerConfig(nil), s.Markers...)
	c.Obstacles = append([]ObstacleConfig(nil), s.Obstacles...)
	c.Keys = append([]KeyWindow(nil), s.Keys...)
	return &c
}

// Validate checks structure: positive stepping, positive sizes, unique
// IDs, and references that resolve. It deliberately does not police numeric conventions
// (negative strengths, MinForce above BaseForce); those are undefined
// input, not configuration errors.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario has no name")
	}
	if s.World.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %g", s.World.Dt)
	}
	if s.World.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %g", s.World.Duration)
	}

	bodies := map[string]bool{}
	for _, b := range s.Bodies {
		if b.ID == "" {
			return fmt.Errorf("body with empty id")
		}
		if bodies[b.ID] {
			return fmt.Errorf("duplicate body id %q", b.ID)
		}
		if !positiveSize(b.Size) {
			return fmt.Errorf("body %q needs a positive size", b.ID)
		}
		bodies[b.ID] = true
	}

	// Zones and plain volumes share the trigger-object namespace: an
	// object-bound rule may reference either.
	regions := map[string]bool{}
	for _, z := range s.Zones {
		if z.ID == "" {
			return fmt.Errorf("zone with empty id")
		}
		if regions[z.ID] {
			return fmt.Errorf("duplicate zone id %q", z.ID)
		}
		if !positiveSize(z.Size) {
			return fmt.Errorf("zone %q needs a positive size", z.ID)
		}
		regions[z.ID] = true
	}
	for _, v := range s.Volumes {
		if v.ID == "" {
			return fmt.Errorf("volume with empty id")
		}
		if regions[v.ID] {
			return fmt.Errorf("duplicate volume id %q", v.ID)
		}
		if !positiveSize(v.Size) {
			return fmt.Errorf("volume %q needs a positive size", v.ID)
		}
		regions[v.ID] = true
	}

	markers := map[string]bool{}
	for _, m := range s.Markers {
		if m.ID == "" {
			return fmt.Errorf("marker with empty id")
		}
		if markers[m.ID] {
			return fmt.Errorf("duplicate marker id %q", m.ID)
		}
		if m.Attach != "" && !bodies[m.Attach] {
			return fmt.Errorf("marker %q attached to unknown body %q", m.ID, m.Attach)
		}
		markers[m.ID] = true
	}

	obstacles := map[string]bool{}
	for _, o := range s.Obstacles {
		if o.ID == "" {
			return fmt.Errorf("obstacle with empty id")
		}
		if obstacles[o.ID] {
			return fmt.Errorf("duplicate obstacle id %q", o.ID)
		}
		obstacles[o.ID] = true
	}

	names := map[string]bool{}
	for _, r := range s.Rules {
		if r.Name == "" {
			return fmt.Errorf("rule with empty name")
		}
		if names[r.Name] {
			return fmt.Errorf("duplicate rule name %q", r.Name)
		}
		names[r.Name] = true
		if !bodies[r.Owner] {
			return fmt.Errorf("rule %q owned by unknown body %q", r.Name, r.Owner)
		}
		switch r.Kind {
		case "", "directional", "torque":
		default:
			return fmt.Errorf("rule %q has unknown kind %q", r.Name, r.Kind)
		}
		if r.Object != "" && !regions[r.Object] {
			return fmt.Errorf("rule %q triggers on unknown object %q", r.Name, r.Object)
		}
		if r.Origin != "" && !markers[r.Origin] {
			return fmt.Errorf("rule %q uses unknown origin marker %q", r.Name, r.Origin)
		}
	}

	for i, k := range s.Keys {
		if k.Key == "" {
			return fmt.Errorf("key window %d has no key", i)
		}
		if k.To < k.From {
			return fmt.Errorf("key window %d for %q ends before it starts", i, k.Key)
		}
	}

	return nil
}

// positiveSize reports whether every extent is positive. A zero-size
// body degenerates to a point collider and a zero-size region can never
// contain one, so both are configuration mistakes.
func positiveSize(size [3]float64) bool {
	return size[0] > 0 && size[1] > 0 && size[2] > 0
}
