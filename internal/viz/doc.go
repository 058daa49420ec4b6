// Package viz provides the terminal views of an optimisation run.
//
// The live view is a Bubble Tea program fed by a [Session], which runs the
// driver on its own goroutine and publishes immutable frames:
//
//   - [Model]: live view with a braille preview and a fitness chart
//   - [Canvas]: Braille-based pixel canvas for the candidate preview
//   - [Gate]: pause/resume switch the driver waits on between steps
//   - [FitnessChart]: asciigraph plot of a stored fitness history
//
// # Key Bindings
//
//	Space - Pause/Resume
//	O     - Toggle polygon outlines
//	S     - Save the current candidate as PNG
//	G     - Toggle GIF recording
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
