// Package hostsim is the reference host: a minimal fixed-step world that
// supplies everything the force components consume from an engine.
//
// [Types]
//   - [RigidBody]: force/impulse accumulation and semi-implicit Euler
//     integration, with an optional ground plane
//   - [BoxVolume]: axis-aligned trigger region dispatching enter/stay
//   - [ScriptedKeyboard], [ManualKeyboard]: key timelines and live input
//   - [World]: assembles a scene.Scenario and runs it step by step
//
// # Example
//
//	sc, _ := scene.Preset("boostpad")
//	w, _ := hostsim.NewWorld(sc)
//	res, err := w.Run(context.Background())
//
// # Step Order
//
// Keyboard advance, volume overlap dispatch, wind advance and stays,
// evaluator passes, integration, frame publish. Components never see a
// partially integrated step.
package hostsim
