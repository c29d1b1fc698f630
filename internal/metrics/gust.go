package metrics

import (
	"math"

	"github.com/san-kum/forcelab/internal/kinetic"
)

// GustRange tracks the spread between the weakest and strongest wind force
// observed. Zero for runs without wind or with variation off.
type GustRange struct {
	name    string
	min     float64
	max     float64
	samples int
}

func NewGustRange() *GustRange {
	return &GustRange{
		name: "gust_range",
	}
}

func (m *GustRange) Name() string { return m.name }

func (m *GustRange) Observe(f kinetic.Frame) {
	for _, w := range f.Wind {
		if m.samples == 0 {
			m.min, m.max = w.Force, w.Force
		} else {
			m.min = math.Min(m.min, w.Force)
			m.max = math.Max(m.max, w.Force)
		}
		m.samples++
	}
}

func (m *GustRange) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.max - m.min
}

func (m *GustRange) Reset() {
	m.min = 0
	m.max = 0
	m.samples = 0
}
