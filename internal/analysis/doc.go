// Package analysis characterizes recorded wind behavior.
//
//   - [PowerSpectrum]: FFT power spectrum of a sampled series
//   - [DominantPeriod]: strongest oscillation period in seconds
//   - [GustStats]: min, max, mean, and standard deviation of a force series
//
// The typical flow feeds a zone's force series from a saved run:
//
//	spec := analysis.PowerSpectrum(track.Forces, dt)
//	period, ok := analysis.DominantPeriod(track.Forces, dt)
package analysis
