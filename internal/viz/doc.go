// Package viz renders flowpipes for the terminal and for image files.
//
//   - [TimePlot]: asciigraph plot of the lower/upper bound of one coordinate
//   - [PhasePlot]: Braille [Canvas] of the (position, velocity) plane
//   - [SavePNG]: the three gonum/plot figures (t, x), (t, v), (x, v)
//   - [NewLiveProgram]: Bubble Tea program with an α slider that re-solves on
//     change and accepts [ConfigMsg] reloads
//
// # Key Bindings (live)
//
//	←/→ or h/l - Move the α slider by one step
//	m          - Toggle forward/discrete approximation model
//	p          - Switch the plotted coordinate
//	q          - Quit
package viz
