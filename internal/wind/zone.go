// Package wind pushes overlapping bodies along a zone's forward axis every
// step, at a constant force or one modulated by a smooth noise signal.
package wind

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/forcelab/internal/kinetic"
	"github.com/san-kum/forcelab/internal/noise"
)

// Config is immutable at runtime. MinForce <= BaseForce is assumed, not
// enforced; inverted values are undefined input and the linear mapping is
// applied as written.
type Config struct {
	BaseForce          float64
	UseVariation       bool
	VariationFrequency float64
	MinForce           float64
}

// Zone is purely reactive: the host's collision system owns the
// overlapping/not-overlapping state and reports stays. The only derived
// state is the current force, recomputed once per frame by Advance.
type Zone struct {
	name    string
	cfg     Config
	pose    kinetic.Transform
	sampler noise.Sampler
	current float64
	sample  float64
}

// NewZone builds a zone blowing along pose's forward (+Z rotated by the
// pose orientation). A nil pose means origin facing +Z. A nil sampler
// disables variation regardless of cfg.
func NewZone(name string, cfg Config, pose kinetic.Transform, sampler noise.Sampler) *Zone {
	if pose == nil {
		pose = kinetic.IdentityPose()
	}
	return &Zone{
		name:    name,
		cfg:     cfg,
		pose:    pose,
		sampler: sampler,
		current: cfg.BaseForce,
		sample:  1,
	}
}

// Advance recomputes the derived force for elapsed time t. Call once per
// frame, before dispatching stays.
func (z *Zone) Advance(t float64) {
	if !z.cfg.UseVariation || z.sampler == nil {
		z.current = z.cfg.BaseForce
		z.sample = 1
		return
	}
	s := z.sampler.Sample(t * z.cfg.VariationFrequency)
	z.sample = s
	z.current = z.cfg.MinForce + s*(z.cfg.BaseForce-z.cfg.MinForce)
}

// HandleBodyStay applies the current force to one overlapping body. No
// ground or speed gating. Nil body is a no-op and reports false.
func (z *Zone) HandleBodyStay(bodyID string, body kinetic.Body, step int, t float64) (kinetic.ForceEvent, bool) {
	if body == nil {
		return kinetic.ForceEvent{}, false
	}
	dir := z.Forward()
	at := body.Position()
	body.AddForceAtPoint(dir.Mul(z.current), at, kinetic.Continuous)
	return kinetic.ForceEvent{
		Time:      t,
		Step:      step,
		Source:    z.name,
		Body:      bodyID,
		Kind:      kinetic.Directional,
		Mode:      kinetic.Continuous,
		Magnitude: z.current,
		Direction: dir,
		Origin:    at,
	}, true
}

func (z *Zone) Name() string {
	return z.name
}

func (z *Zone) Config() Config {
	return z.cfg
}

// CurrentForce is the magnitude the next stay will apply.
func (z *Zone) CurrentForce() float64 {
	return z.current
}

// LastSample is the raw noise value behind the current force, 1 when
// variation is off.
func (z *Zone) LastSample() float64 {
	return z.sample
}

func (z *Zone) Forward() mgl64.Vec3 {
	return z.pose.Orientation().Rotate(kinetic.Forward)
}

func (z *Zone) Position() mgl64.Vec3 {
	return z.pose.Position()
}
