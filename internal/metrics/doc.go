// Package metrics provides scalar accumulators over published frames:
//
//   - [ImpulseCount]: number of impulse-mode applications ("impulses")
//   - [PeakForce]: largest application magnitude ("peak_force")
//   - [TotalWork]: work done by directional applications ("total_work")
//   - [GustRange]: spread of sampled wind forces ("gust_range")
package metrics

import "github.com/san-kum/forcelab/internal/kinetic"

// Standard returns one fresh instance of every built-in metric.
func Standard() []kinetic.Metric {
	return []kinetic.Metric{
		NewImpulseCount(),
		NewPeakForce(),
		NewTotalWork(),
		NewGustRange(),
	}
}
