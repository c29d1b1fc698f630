// Package viz renders live runs in the terminal using the Bubble Tea
// framework:
//
//   - [Model]: live simulation view with a braille 3D scene, per-rule
//     activity lamps, wind sparkline, and speed graph
//   - [Canvas]: braille-based pixel canvas
//   - Theme selection with 5 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset the scenario
//	T     - Cycle color themes
//	X/Y/Z - Rotate the camera (shift reverses)
//	+/-   - Zoom
//	?     - Show help overlay
package viz
