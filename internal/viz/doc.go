// Package viz draws a relaxing chain in the terminal.
//
// The live view is a Bubble Tea program:
//
//   - [Model]: relaxes a chain one or more iterations per tick and draws it
//     over the contour lines of its surface
//   - [Canvas]: Braille dot canvas, two by four dots per cell
//   - [RunInteractive]: preset picker and parameter editor in front of [Model]
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single iteration
//	R     - Rebuild the chain
//	+/-   - Iterations per tick
//	[ ]   - Step through history
//	G     - Toggle GIF recording
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
