// Package kinetic defines the host-facing vocabulary shared by every
// forcelab component.
//
// The package holds the interfaces a host engine supplies and the records
// components hand back:
//
//   - [Body]: rigid-body handle (pose, velocity, force/torque requests)
//   - [Collider], [Caster]: ground-probe inputs
//   - [Keyboard]: held/pressed key state per step
//   - [ForceEvent]: one application request, as seen by observers
//   - [Frame]: one step's snapshot (events, body states, wind samples)
//   - [Observer], [Metric]: frame consumers
//
// # Example
//
//	ev := effector.New(rules, binding)
//	events := ev.Step(step, t)
//	for _, e := range events {
//		fmt.Println(e.Source, e.Magnitude)
//	}
//
// # Thread Safety
//
// Nothing here is thread-safe. The host drives all components from a single
// simulation loop; frames may be handed to other goroutines only by value.
package kinetic
