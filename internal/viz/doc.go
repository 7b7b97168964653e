// Package viz draws particle paths in the terminal.
//
// [Canvas] is a Braille dot canvas; [Viewport] maps the flow plane onto it.
// [Model] is a Bubble Tea program that advances a single particle on every
// frame and shows its path over arrows of the current flow velocity, with a
// side panel of time, slip and history force.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart from the release point
//	T     - Cycle color themes
//	A     - Toggle flow arrows
//	+/-   - Double/halve steps per frame
//	G     - Toggle GIF recording
//	Q     - Quit
package viz
