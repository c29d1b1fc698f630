package effector

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/forcelab/internal/kinetic"
)

// Rule configures one gated force application. Records are immutable once
// handed to an evaluator; per-step firing state lives in the evaluator's
// status slice, never here.
//
// A rule is key-bound when TriggerKey is set, object-bound when
// TriggerObject is set. Object binding wins if both are set. A rule with
// neither never fires.
type Rule struct {
	Name             string
	Kind             kinetic.ForceKind
	Strength         float64
	TriggerKey       string
	TriggerObject    string
	Continuous       bool
	RequiresGrounded bool
	SpeedCap         float64
	Direction        mgl64.Vec3
	RelativeToOwner  bool
	// Origin names a marker whose world position overrides the application
	// point. Empty or unresolvable means the owner's position.
	Origin string
}

// Mode derives the force mode from the trigger style: held/stay triggers are
// integrated over time, press/enter triggers are instantaneous.
func (r Rule) Mode() kinetic.ForceMode {
	if r.Continuous {
		return kinetic.Continuous
	}
	return kinetic.Impulse
}
