package hostsim

import (
	"github.com/go-gl/mathgl/mgl64"
)

// BoxVolume is an axis-aligned trigger region. It detects overlap with body
// positions each step and dispatches enter and stay to subscribers: the
// first overlapping step delivers both, subsequent steps deliver stay only.
// Dispatch order follows the body order the world hands in, so runs are
// deterministic.
type BoxVolume struct {
	id     string
	center mgl64.Vec3
	half   mgl64.Vec3

	inside  map[string]bool
	onEnter []func(bodyID string)
	onStay  []func(bodyID string)
}

func NewBoxVolume(id string, center, size mgl64.Vec3) *BoxVolume {
	return &BoxVolume{
		id:     id,
		center: center,
		half:   size.Mul(0.5),
		inside: make(map[string]bool),
	}
}

func (v *BoxVolume) ID() string            { return v.id }
func (v *BoxVolume) Center() mgl64.Vec3    { return v.center }
func (v *BoxVolume) Size() mgl64.Vec3      { return v.half.Mul(2) }

// SubscribeEnter registers a handler for overlap entry.
func (v *BoxVolume) SubscribeEnter(fn func(bodyID string)) {
	v.onEnter = append(v.onEnter, fn)
}

// SubscribeStay registers a handler called every overlapping step.
func (v *BoxVolume) SubscribeStay(fn func(bodyID string)) {
	v.onStay = append(v.onStay, fn)
}

// Contains reports whether a world-space point is inside the region.
func (v *BoxVolume) Contains(p mgl64.Vec3) bool {
	d := p.Sub(v.center)
	return d.X() >= -v.half.X() && d.X() <= v.half.X() &&
		d.Y() >= -v.half.Y() && d.Y() <= v.half.Y() &&
		d.Z() >= -v.half.Z() && d.Z() <= v.half.Z()
}

// Dispatch recomputes overlap for the given bodies and fires the
// subscribers. Bodies that left the region are forgotten without an event:
// the components this feeds react to enter and stay only.
func (v *BoxVolume) Dispatch(bodies []*RigidBody) {
	now := make(map[string]bool, len(v.inside))
	for _, b := range bodies {
		if !v.Contains(b.Position()) {
			continue
		}
		now[b.ID()] = true
		if !v.inside[b.ID()] {
			for _, fn := range v.onEnter {
				fn(b.ID())
			}
		}
		for _, fn := range v.onStay {
			fn(b.ID())
		}
	}
	v.inside = now
}
