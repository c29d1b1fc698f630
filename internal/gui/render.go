package gui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/forcelab/internal/kinetic"
)

func v3(v mgl64.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v.X()), float32(v.Y()), float32(v.Z()))
}

// axisAngle converts a unit quaternion to a rotation axis and an angle in
// degrees. Near-identity rotations report a zero angle.
func axisAngle(q mgl64.Quat) (float32, rl.Vector3) {
	w := mgl64.Clamp(q.W, -1, 1)
	s := math.Sqrt(1 - w*w)
	if s < 1e-6 {
		return 0, rl.NewVector3(0, 1, 0)
	}
	angle := 2 * math.Acos(w) * 180 / math.Pi
	axis := q.V.Mul(1 / s)
	return float32(angle), v3(axis)
}

// drawOrientedWires draws a rotated wireframe box by pushing the rotation
// onto the matrix stack; raylib's cube primitives are axis-aligned.
func drawOrientedWires(center mgl64.Vec3, size mgl64.Vec3, q mgl64.Quat, col rl.Color) {
	angle, axis := axisAngle(q)
	rl.PushMatrix()
	rl.Translatef(float32(center.X()), float32(center.Y()), float32(center.Z()))
	if angle != 0 {
		rl.Rotatef(angle, axis.X, axis.Y, axis.Z)
	}
	rl.DrawCubeWires(rl.NewVector3(0, 0, 0), float32(size.X()), float32(size.Y()), float32(size.Z()), col)
	rl.PopMatrix()
}

func drawArrow(from, to mgl64.Vec3, col rl.Color) {
	rl.DrawLine3D(v3(from), v3(to), col)
	rl.DrawSphere(v3(to), 0.08, col)
}

func (a *App) drawScene() {
	rl.BeginMode3D(a.Camera)

	a.drawBodies()
	a.drawZones()
	a.drawVolumes()
	a.drawObstacles()
	a.drawMarkers()
	if a.ShowVectors {
		a.drawForceVectors()
	}

	rl.EndMode3D()
}

func (a *App) drawBodies() {
	for _, b := range a.World.Bodies() {
		drawOrientedWires(b.Position(), b.Size(), b.Orientation(), ColSelect)
		rl.DrawSphere(v3(b.Position()), 0.06, ColAccent)

		if a.ShowVectors && b.Velocity().Len() > 0.05 {
			tip := b.Position().Add(b.Velocity().Mul(0.3))
			rl.DrawLine3D(v3(b.Position()), v3(tip), ColText)
		}
	}
}

func (a *App) drawZones() {
	sc := a.World.Scenario()
	for i, z := range a.World.Zones() {
		cfg := sc.Zones[i]
		size := mgl64.Vec3{cfg.Size[0], cfg.Size[1], cfg.Size[2]}
		yaw := mgl64.QuatRotate(mgl64.DegToRad(cfg.YawDeg), mgl64.Vec3{0, 1, 0})
		drawOrientedWires(z.Position(), size, yaw, ColTextDim)

		// Arrow reach tracks the live force against the configured base
		reach := cfg.Size[2] / 2
		if cfg.BaseForce > 0 {
			reach *= z.CurrentForce() / cfg.BaseForce
		}
		drawArrow(z.Position(), z.Position().Add(z.Forward().Mul(reach)), ColAccent)
	}
}

func (a *App) drawVolumes() {
	zoneCount := len(a.World.Zones())
	for _, vol := range a.World.Volumes()[zoneCount:] {
		rl.DrawCubeWires(v3(vol.Center()),
			float32(vol.Size().X()), float32(vol.Size().Y()), float32(vol.Size().Z()),
			ColTextDim)
	}
}

func (a *App) drawObstacles() {
	for _, o := range a.World.Obstacles() {
		rl.DrawCube(v3(o.Center),
			float32(o.Size.X()), float32(o.Size.Y()), float32(o.Size.Z()),
			ColGrid)
		rl.DrawCubeWires(v3(o.Center),
			float32(o.Size.X()), float32(o.Size.Y()), float32(o.Size.Z()),
			ColTextDim)
	}
}

func (a *App) drawMarkers() {
	for _, mc := range a.World.Scenario().Markers {
		if t := a.World.Marker(mc.ID); t != nil {
			rl.DrawSphere(v3(t.Position()), 0.1, ColText)
		}
	}
}

// drawForceVectors draws this frame's applications: directional forces as
// arrows at their origin, torques as a circle around the body.
func (a *App) drawForceVectors() {
	at := make(map[string]mgl64.Vec3, len(a.Frame.Bodies))
	for _, b := range a.Frame.Bodies {
		at[b.ID] = b.Position
	}

	for _, e := range a.Frame.Events {
		switch e.Kind {
		case kinetic.Torque:
			pos, ok := at[e.Body]
			if !ok {
				continue
			}
			radius := float32(math.Min(0.4+e.Magnitude*0.02, 1.5))
			rl.DrawCircle3D(v3(pos), radius, v3(kinetic.Unit(e.Direction)), 90, ColAccent)
		default:
			dir := kinetic.Unit(e.Direction)
			if dir.Len() == 0 {
				continue
			}
			length := math.Min(0.5+e.Magnitude*0.05, 3.0)
			drawArrow(e.Origin, e.Origin.Add(dir.Mul(length)), ColSelect)
		}
	}
}
