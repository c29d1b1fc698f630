package hostsim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Obstacle is a static axis-aligned box that only exists for ray queries
// and rendering. Bodies pass through it; ground probes do not.
type Obstacle struct {
	ID     string
	Center mgl64.Vec3
	Size   mgl64.Vec3
}

func (o Obstacle) half() mgl64.Vec3 { return o.Size.Mul(0.5) }

// rayHitsGround intersects a ray with the y=0 plane.
func rayHitsGround(origin, dir mgl64.Vec3, maxDist float64) bool {
	if dir.Y() == 0 {
		return origin.Y() == 0
	}
	t := -origin.Y() / dir.Y()
	return t >= 0 && t <= maxDist
}

// rayHitsBox is a slab test against an axis-aligned box.
func rayHitsBox(origin, dir mgl64.Vec3, maxDist float64, center, half mgl64.Vec3) bool {
	tMin, tMax := 0.0, maxDist
	for axis := 0; axis < 3; axis++ {
		o := origin[axis] - center[axis]
		d := dir[axis]
		h := half[axis]
		if d == 0 {
			if o < -h || o > h {
				return false
			}
			continue
		}
		t1 := (-h - o) / d
		t2 := (h - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}
	return true
}
