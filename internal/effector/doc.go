// Package effector evaluates configured force rules against a host body,
// once per simulation step.
//
// A [Rule] names its trigger (a key or an external object), its gates
// (ground requirement, speed cap), and what it applies (directional force or
// pure torque, world-relative or owner-relative, optionally at a marker
// origin). The [Evaluator] owns a list of rules plus a [Binding] to host
// capabilities, consumes trigger enter/stay notations between passes, and
// applies whatever fires. Per-rule [RuleStatus] snapshots expose what fired,
// where, and how hard, for renderers only.
//
// Missing host pieces (body, collider, caster, keyboard, marker) silently
// disable the rules that need them. Nothing here returns an error.
//
// # Example
//
//	ev := effector.New(rules, effector.Binding{
//		OwnerID:  "crate",
//		Owner:    body,
//		Collider: capsule,
//		Caster:   world,
//		Keys:     keyboard,
//	})
//	ev.HandleTriggerStay("belt")
//	events := ev.Step(step, t)
package effector
