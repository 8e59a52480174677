// Package viz renders lattices and recorded series for the terminal and
// for image files.
//
//   - [RenderGrid], [PlainGrid] and [GridCanvas]: lattice views for the terminal
//   - [GridImage] and [Recorder]: PNG snapshots and GIF animations
//   - [SeriesChart] and [SweepChart]: PNG line charts
//   - [PlotColumn]: asciigraph plot of one recorded column
//   - [Model] and [Menu]: Bubble Tea live view and preset picker
//
// # Key Bindings
//
//	Space - Pause/Resume
//	T     - Cycle color themes
//	B     - Toggle braille view
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	Esc   - Back to the preset menu
package viz
