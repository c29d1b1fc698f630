package kinetic

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// ForceMode selects how the host integrates an application request.
type ForceMode int

const (
	// Continuous forces are accumulated and integrated over the step (F*dt/m).
	Continuous ForceMode = iota
	// Impulse changes momentum immediately (J/m).
	Impulse
)

func (m ForceMode) String() string {
	switch m {
	case Continuous:
		return "continuous"
	case Impulse:
		return "impulse"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ForceKind distinguishes linear applications from pure torque.
type ForceKind int

const (
	Directional ForceKind = iota
	Torque
)

func (k ForceKind) String() string {
	switch k {
	case Directional:
		return "directional"
	case Torque:
		return "torque"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Transform exposes a world-space pose.
type Transform interface {
	Position() mgl64.Vec3
	Orientation() mgl64.Quat
}

// Body is the host rigid-body handle. Implementations own the force
// accumulator; callers only issue requests and read kinematic state.
type Body interface {
	Transform
	Velocity() mgl64.Vec3
	AddForceAtPoint(force, point mgl64.Vec3, mode ForceMode)
	AddTorque(torque mgl64.Vec3, mode ForceMode)
}

// Collider exposes the vertical half-extent used by ground probes.
type Collider interface {
	HalfHeight() float64
}

// Caster answers synchronous ray queries against the host's static geometry.
type Caster interface {
	RayHit(origin, dir mgl64.Vec3, maxDist float64) bool
}

// Keyboard reports key state for the current step. KeyPressed is an edge:
// true only on the step the key transitions from released to held.
type Keyboard interface {
	KeyHeld(key string) bool
	KeyPressed(key string) bool
}

// ForceEvent records one application request issued to a body.
type ForceEvent struct {
	Time      float64
	Step      int
	Source    string
	Body      string
	Kind      ForceKind
	Mode      ForceMode
	Magnitude float64
	Direction mgl64.Vec3
	Origin    mgl64.Vec3
}

// BodyState is a body's kinematic snapshot within a frame.
type BodyState struct {
	ID          string
	Position    mgl64.Vec3
	Velocity    mgl64.Vec3
	Orientation mgl64.Quat
}

func (b BodyState) Speed() float64 {
	return b.Velocity.Len()
}

// ZoneSample is a wind zone's output within a frame.
type ZoneSample struct {
	Zone   string
	Force  float64
	Sample float64
}

// Frame is one host step's published snapshot.
type Frame struct {
	Step   int
	Time   float64
	Events []ForceEvent
	Bodies []BodyState
	Wind   []ZoneSample
}

// Observer receives every frame the host publishes.
type Observer interface {
	OnFrame(f Frame)
}

// Metric accumulates a scalar over observed frames.
type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

// Pose is a fixed Transform.
type Pose struct {
	Pos mgl64.Vec3
	Rot mgl64.Quat
}

func (p Pose) Position() mgl64.Vec3    { return p.Pos }
func (p Pose) Orientation() mgl64.Quat { return p.Rot }

// IdentityPose returns a pose at the origin with no rotation. The zero
// quaternion is not a rotation, so zero-value Pose must not be used as one.
func IdentityPose() Pose {
	return Pose{Rot: mgl64.QuatIdent()}
}

// Unit normalizes v, mapping the zero vector to itself instead of NaN.
// Matches the permissive normalize of common engine math libraries.
func Unit(v mgl64.Vec3) mgl64.Vec3 {
	if v.Len() == 0 {
		return mgl64.Vec3{}
	}
	return v.Normalize()
}

// Down is the fixed world-space probe direction for ground checks.
var Down = mgl64.Vec3{0, -1, 0}

// Forward is the local axis wind zones blow along before rotation.
var Forward = mgl64.Vec3{0, 0, 1}
