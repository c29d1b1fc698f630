package metrics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/forcelab/internal/kinetic"
)

// TotalWork accumulates the energy injected into bodies: F·v dt for
// continuous applications, J·v for impulses. Negative contributions (forces
// opposing motion) subtract.
type TotalWork struct {
	name     string
	total    float64
	lastTime float64
	samples  int
}

func NewTotalWork() *TotalWork {
	return &TotalWork{
		name: "total_work",
	}
}

func (m *TotalWork) Name() string { return m.name }

func (m *TotalWork) Observe(f kinetic.Frame) {
	dt := 0.0
	if m.samples > 0 {
		dt = f.Time - m.lastTime
	}
	m.lastTime = f.Time
	m.samples++

	for _, e := range f.Events {
		if e.Kind != kinetic.Directional {
			continue
		}
		v, ok := bodyVelocity(f, e.Body)
		if !ok {
			continue
		}
		force := e.Direction.Mul(e.Magnitude)
		switch e.Mode {
		case kinetic.Continuous:
			m.total += force.Dot(v) * dt
		case kinetic.Impulse:
			m.total += force.Dot(v)
		}
	}
}

func (m *TotalWork) Value() float64 {
	return m.total
}

func (m *TotalWork) Reset() {
	m.total = 0
	m.lastTime = 0
	m.samples = 0
}

func bodyVelocity(f kinetic.Frame, id string) (mgl64.Vec3, bool) {
	for _, b := range f.Bodies {
		if b.ID == id {
			return b.Velocity, true
		}
	}
	return mgl64.Vec3{}, false
}
