package hostsim

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/forcelab/internal/kinetic"
)

// RigidBody is the host-side dynamics representation. It owns the force and
// torque accumulators; components only issue requests through the
// kinetic.Body interface and read kinematic state back.
type RigidBody struct {
	id      string
	mass    float64
	invMass float64
	size    mgl64.Vec3
	// inverse inertia of a solid box, in the body frame
	invInertia mgl64.Vec3

	pos    mgl64.Vec3
	vel    mgl64.Vec3
	orient mgl64.Quat
	angVel mgl64.Vec3

	forceAcc  mgl64.Vec3
	torqueAcc mgl64.Vec3
}

// NewRigidBody builds a box-shaped body. Non-positive mass is treated as
// unit mass.
func NewRigidBody(id string, mass float64, size, pos mgl64.Vec3) *RigidBody {
	if mass <= 0 {
		mass = 1
	}
	b := &RigidBody{
		id:      id,
		mass:    mass,
		invMass: 1 / mass,
		size:    size,
		orient:  mgl64.QuatIdent(),
		pos:     pos,
	}
	sx, sy, sz := size.X(), size.Y(), size.Z()
	ix := mass / 12 * (sy*sy + sz*sz)
	iy := mass / 12 * (sx*sx + sz*sz)
	iz := mass / 12 * (sx*sx + sy*sy)
	b.invInertia = mgl64.Vec3{safeInv(ix), safeInv(iy), safeInv(iz)}
	return b
}

func safeInv(v float64) float64 {
	if v == 0 {
		return 0
	}
	return 1 / v
}

func (b *RigidBody) ID() string                { return b.id }
func (b *RigidBody) Mass() float64             { return b.mass }
func (b *RigidBody) Size() mgl64.Vec3          { return b.size }
func (b *RigidBody) Position() mgl64.Vec3      { return b.pos }
func (b *RigidBody) Velocity() mgl64.Vec3      { return b.vel }
func (b *RigidBody) Orientation() mgl64.Quat   { return b.orient }
func (b *RigidBody) AngularVelocity() mgl64.Vec3 { return b.angVel }

// HalfHeight satisfies kinetic.Collider for ground probes.
func (b *RigidBody) HalfHeight() float64 { return b.size.Y() / 2 }

// SetVelocity overrides the linear velocity. Scenario setup only.
func (b *RigidBody) SetVelocity(v mgl64.Vec3) { b.vel = v }

// SetOrientation overrides the orientation. Scenario setup only.
func (b *RigidBody) SetOrientation(q mgl64.Quat) { b.orient = q.Normalize() }

// AddForceAtPoint applies a force (or impulse) acting at a world-space
// point. Off-center application induces torque through r cross F.
func (b *RigidBody) AddForceAtPoint(force, point mgl64.Vec3, mode kinetic.ForceMode) {
	r := point.Sub(b.pos)
	torque := r.Cross(force)
	switch mode {
	case kinetic.Impulse:
		b.vel = b.vel.Add(force.Mul(b.invMass))
		b.angVel = b.angVel.Add(b.invInertiaWorld(torque))
	default:
		b.forceAcc = b.forceAcc.Add(force)
		b.torqueAcc = b.torqueAcc.Add(torque)
	}
}

// AddTorque applies a pure torque (or angular impulse).
func (b *RigidBody) AddTorque(torque mgl64.Vec3, mode kinetic.ForceMode) {
	switch mode {
	case kinetic.Impulse:
		b.angVel = b.angVel.Add(b.invInertiaWorld(torque))
	default:
		b.torqueAcc = b.torqueAcc.Add(torque)
	}
}

// invInertiaWorld maps a world-space torque to an angular velocity change:
// rotate into the body frame, scale by the diagonal inverse inertia, rotate
// back.
func (b *RigidBody) invInertiaWorld(torque mgl64.Vec3) mgl64.Vec3 {
	local := b.orient.Inverse().Rotate(torque)
	scaled := mgl64.Vec3{
		local.X() * b.invInertia.X(),
		local.Y() * b.invInertia.Y(),
		local.Z() * b.invInertia.Z(),
	}
	return b.orient.Rotate(scaled)
}

// Integrate advances one step of semi-implicit Euler and clears the
// accumulators. When ground is true the body is kept above the y=0 plane so
// grounded scenarios stay stable.
func (b *RigidBody) Integrate(dt float64, gravity mgl64.Vec3, ground bool) {
	b.vel = b.vel.Add(b.forceAcc.Mul(b.invMass).Add(gravity).Mul(dt))
	b.pos = b.pos.Add(b.vel.Mul(dt))

	b.angVel = b.angVel.Add(b.invInertiaWorld(b.torqueAcc).Mul(dt))
	if w := b.angVel; w.Len() > 0 {
		spin := mgl64.Quat{W: 0, V: w}.Mul(b.orient).Scale(0.5 * dt)
		b.orient = b.orient.Add(spin).Normalize()
	}

	if ground {
		if floor := b.HalfHeight(); b.pos.Y() < floor {
			b.pos = mgl64.Vec3{b.pos.X(), floor, b.pos.Z()}
			if b.vel.Y() < 0 {
				b.vel = mgl64.Vec3{b.vel.X(), 0, b.vel.Z()}
			}
		}
	}

	b.forceAcc = mgl64.Vec3{}
	b.torqueAcc = mgl64.Vec3{}
}

// State snapshots the body for a frame.
func (b *RigidBody) State() kinetic.BodyState {
	return kinetic.BodyState{
		ID:          b.id,
		Position:    b.pos,
		Velocity:    b.vel,
		Orientation: b.orient,
	}
}
