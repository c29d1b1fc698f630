package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Spectrum holds the one-sided power spectrum of a sampled series.
type Spectrum struct {
	Freqs []float64 // Hz
	Power []float64
}

// PowerSpectrum computes the one-sided power spectrum. The series is
// de-meaned and Hann-windowed first so the DC bin does not swamp the
// gust frequencies. dt is the sampling interval in seconds.
func PowerSpectrum(samples []float64, dt float64) Spectrum {
	n := len(samples)
	if n < 4 || dt <= 0 {
		return Spectrum{}
	}

	mean := 0.0
	for _, s := range samples {
		mean += s
	}
	mean /= float64(n)

	buf := make([]float64, n)
	for i, s := range samples {
		buf[i] = s - mean
	}
	window.Apply(buf, window.Hann)

	coeffs := fft.FFTReal(buf)
	half := n / 2
	spec := Spectrum{
		Freqs: make([]float64, half),
		Power: make([]float64, half),
	}
	for i := 0; i < half; i++ {
		spec.Freqs[i] = float64(i) / (float64(n) * dt)
		spec.Power[i] = cmplx.Abs(coeffs[i]) * cmplx.Abs(coeffs[i])
	}
	return spec
}

// DominantPeriod returns the period in seconds of the strongest non-DC
// spectral peak. ok is false when the series is too short or flat.
func DominantPeriod(samples []float64, dt float64) (period float64, ok bool) {
	spec := PowerSpectrum(samples, dt)
	if len(spec.Power) < 2 {
		return 0, false
	}

	best := 1 // skip the DC bin
	for i := 2; i < len(spec.Power); i++ {
		if spec.Power[i] > spec.Power[best] {
			best = i
		}
	}
	if spec.Power[best] == 0 || spec.Freqs[best] == 0 {
		return 0, false
	}
	return 1 / spec.Freqs[best], true
}

// Stats summarizes a force series.
type Stats struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// GustStats computes summary statistics over a force series.
func GustStats(samples []float64) Stats {
	if len(samples) == 0 {
		return Stats{}
	}

	st := Stats{Min: samples[0], Max: samples[0]}
	for _, s := range samples {
		st.Min = math.Min(st.Min, s)
		st.Max = math.Max(st.Max, s)
		st.Mean += s
	}
	st.Mean /= float64(len(samples))

	variance := 0.0
	for _, s := range samples {
		d := s - st.Mean
		variance += d * d
	}
	st.StdDev = math.Sqrt(variance / float64(len(samples)))
	return st
}
