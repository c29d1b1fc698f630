package metrics

import (
	"github.com/san-kum/forcelab/internal/kinetic"
)

// ImpulseCount counts impulse-mode applications across a run.
type ImpulseCount struct {
	name  string
	count int
}

func NewImpulseCount() *ImpulseCount {
	return &ImpulseCount{
		name: "impulses",
	}
}

func (m *ImpulseCount) Name() string { return m.name }

func (m *ImpulseCount) Observe(f kinetic.Frame) {
	for _, e := range f.Events {
		if e.Mode == kinetic.Impulse {
			m.count++
		}
	}
}

func (m *ImpulseCount) Value() float64 {
	return float64(m.count)
}

func (m *ImpulseCount) Reset() {
	m.count = 0
}
