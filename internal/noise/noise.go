// Package noise provides deterministic, smooth 1D signals in [0,1] for
// wind-force variation and previews.
package noise

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Sampler produces a smooth pseudo-random value in [0,1] for any input.
// Implementations are deterministic per seed.
type Sampler interface {
	Sample(x float64) float64
}

// Smooth samples a 1D line of a normalized OpenSimplex field.
type Smooth struct {
	src opensimplex.Noise
}

func NewSmooth(seed int64) *Smooth {
	return &Smooth{src: opensimplex.NewNormalized(seed)}
}

func (s *Smooth) Sample(x float64) float64 {
	return s.src.Eval2(x, 0)
}

// Octaves layers doubling-frequency smooth signals with geometrically
// decaying weights. Weights are normalized so the sum stays in [0,1].
type Octaves struct {
	src         opensimplex.Noise
	octaves     int
	persistence float64
	totalWeight float64
}

func NewOctaves(seed int64, octaves int, persistence float64) *Octaves {
	if octaves < 1 {
		octaves = 1
	}
	total := 0.0
	for i := 0; i < octaves; i++ {
		total += math.Pow(persistence, float64(i))
	}
	return &Octaves{
		src:         opensimplex.NewNormalized(seed),
		octaves:     octaves,
		persistence: persistence,
		totalWeight: total,
	}
}

func (o *Octaves) Sample(x float64) float64 {
	sum := 0.0
	amplitude := 1.0
	frequency := 1.0
	for i := 0; i < o.octaves; i++ {
		// Each octave reads its own line of the 2D field so layers stay
		// independent.
		sum += amplitude * o.src.Eval2(x*frequency, float64(i)*37.0)
		amplitude *= o.persistence
		frequency *= 2
	}
	return sum / o.totalWeight
}

// Constant always returns the same value. Intended for tests and for pinning
// wind endpoints; v is expected to be in [0,1].
type Constant float64

func (c Constant) Sample(x float64) float64 {
	return float64(c)
}
