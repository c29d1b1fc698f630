package effector

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/forcelab/internal/kinetic"
)

// groundProbeSlack extends the downward ground ray past the collider's
// half-height.
const groundProbeSlack = 0.1

// Binding carries the host capabilities an evaluator may touch. Any field
// may be nil or empty; an absent capability disables the rules that need it
// rather than failing.
type Binding struct {
	// OwnerID labels emitted force events.
	OwnerID string
	// Owner is the body forces land on. Nil disables the whole pass.
	Owner kinetic.Body
	// Collider supplies the half-height for ground probes. Nil means never
	// grounded.
	Collider kinetic.Collider
	// Caster answers the downward ground ray. Nil means never grounded.
	Caster kinetic.Caster
	// Keys backs key-bound rules. Nil disables them.
	Keys kinetic.Keyboard
	// Markers resolves origin-override IDs to transforms. Nil or unresolved
	// IDs fall back to the owner's position.
	Markers func(id string) kinetic.Transform
}

// RuleStatus is the read-only per-step snapshot renderers consume. It is
// reset at the start of every pass and populated only for rules that fired.
type RuleStatus struct {
	Fired     bool
	Direction mgl64.Vec3
	Origin    mgl64.Vec3
	Magnitude float64
	Mode      kinetic.ForceMode
}

// Evaluator decides, once per simulation step, whether each configured rule
// injects a force or torque into the owning body, and performs the
// injection. Trigger-volume activity arrives through HandleTriggerEnter and
// HandleTriggerStay between passes; Step consumes whatever accumulated.
type Evaluator struct {
	rules   []Rule
	binding Binding
	status  []RuleStatus
	entered map[string]bool
	stayed  map[string]bool
}

func New(rules []Rule, binding Binding) *Evaluator {
	return &Evaluator{
		rules:   append([]Rule(nil), rules...),
		binding: binding,
		status:  make([]RuleStatus, len(rules)),
		entered: make(map[string]bool),
		stayed:  make(map[string]bool),
	}
}

// HandleTriggerEnter records that objectID began overlapping the owner's
// monitored region. Consumed by the next Step.
func (e *Evaluator) HandleTriggerEnter(objectID string) {
	e.entered[objectID] = true
}

// HandleTriggerStay records that objectID overlapped the owner's monitored
// region this step. Consumed by the next Step.
func (e *Evaluator) HandleTriggerStay(objectID string) {
	e.stayed[objectID] = true
}

// Step runs one evaluation pass and returns the force events of rules that
// fired. A missing body, collider, keyboard, or marker degrades to the
// affected rules staying silent; Step never fails.
func (e *Evaluator) Step(step int, t float64) []kinetic.ForceEvent {
	for i := range e.status {
		e.status[i] = RuleStatus{}
	}

	entered := e.entered
	stayed := e.stayed
	e.entered = make(map[string]bool)
	e.stayed = make(map[string]bool)

	body := e.binding.Owner
	if body == nil {
		return nil
	}

	var events []kinetic.ForceEvent
	grounded, probed := false, false

	for i, r := range e.rules {
		if r.RequiresGrounded {
			// Position cannot change mid-pass, so one probe serves every
			// rule.
			if !probed {
				grounded = e.groundedNow(body)
				probed = true
			}
			if !grounded {
				continue
			}
		}

		// Impulses earlier in the pass change velocity immediately, so the
		// gate reads fresh speed per rule.
		if body.Velocity().Len() >= r.SpeedCap {
			continue
		}

		fired := false
		switch {
		case r.TriggerObject != "":
			if r.Continuous {
				fired = stayed[r.TriggerObject]
			} else {
				fired = entered[r.TriggerObject]
			}
		case r.TriggerKey != "":
			if e.binding.Keys != nil {
				if r.Continuous {
					fired = e.binding.Keys.KeyHeld(r.TriggerKey)
				} else {
					fired = e.binding.Keys.KeyPressed(r.TriggerKey)
				}
			}
		}
		if !fired {
			continue
		}

		dir := kinetic.Unit(r.Direction)
		if r.RelativeToOwner {
			dir = body.Orientation().Rotate(dir)
		}

		origin := body.Position()
		if r.Origin != "" && e.binding.Markers != nil {
			if m := e.binding.Markers(r.Origin); m != nil {
				origin = m.Position()
			}
		}

		mode := r.Mode()
		switch r.Kind {
		case kinetic.Torque:
			body.AddTorque(dir.Mul(r.Strength), mode)
		default:
			body.AddForceAtPoint(dir.Mul(r.Strength), origin, mode)
		}

		magnitude := r.Strength * dir.Len()
		e.status[i] = RuleStatus{
			Fired:     true,
			Direction: dir,
			Origin:    origin,
			Magnitude: magnitude,
			Mode:      mode,
		}
		events = append(events, kinetic.ForceEvent{
			Time:      t,
			Step:      step,
			Source:    r.Name,
			Body:      e.binding.OwnerID,
			Kind:      r.Kind,
			Mode:      mode,
			Magnitude: magnitude,
			Direction: dir,
			Origin:    origin,
		})
	}

	return events
}

func (e *Evaluator) groundedNow(body kinetic.Body) bool {
	if e.binding.Collider == nil || e.binding.Caster == nil {
		return false
	}
	reach := e.binding.Collider.HalfHeight() + groundProbeSlack
	return e.binding.Caster.RayHit(body.Position(), kinetic.Down, reach)
}

// Grounded reports the current ground probe result, for renderers.
func (e *Evaluator) Grounded() bool {
	if e.binding.Owner == nil {
		return false
	}
	return e.groundedNow(e.binding.Owner)
}

// OwnerID returns the label emitted on this evaluator's force events.
func (e *Evaluator) OwnerID() string {
	return e.binding.OwnerID
}

// Len returns the number of configured rules.
func (e *Evaluator) Len() int {
	return len(e.rules)
}

// Rule returns a copy of the i-th rule.
func (e *Evaluator) Rule(i int) Rule {
	return e.rules[i]
}

// Status returns the i-th rule's snapshot from the latest pass.
func (e *Evaluator) Status(i int) RuleStatus {
	return e.status[i]
}

// Statuses returns a copy of every rule's snapshot from the latest pass.
func (e *Evaluator) Statuses() []RuleStatus {
	out := make([]RuleStatus, len(e.status))
	copy(out, e.status)
	return out
}
