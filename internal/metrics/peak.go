package metrics

import (
	"math"

	"github.com/san-kum/forcelab/internal/kinetic"
)

// PeakForce tracks the largest application magnitude seen.
type PeakForce struct {
	name string
	peak float64
}

func NewPeakForce() *PeakForce {
	return &PeakForce{
		name: "peak_force",
	}
}

func (m *PeakForce) Name() string { return m.name }

func (m *PeakForce) Observe(f kinetic.Frame) {
	for _, e := range f.Events {
		m.peak = math.Max(m.peak, math.Abs(e.Magnitude))
	}
}

func (m *PeakForce) Value() float64 {
	return m.peak
}

func (m *PeakForce) Reset() {
	m.peak = 0
}
