// Package viz renders tracer output for the terminal and for image files.
//
//   - [Progress]: Bubble Tea model for live run progress, fed by a [Feed]
//     observer attached to the tracer
//   - [Canvas], [CrossSection]: braille dot rendering of a poloidal cross-section
//   - [PlotSeries]: ASCII line charts of per-snapshot metrics
//   - [RenderCrossSection]: scatter plots written as PNG, SVG or PDF
//
// # Key Bindings
//
//	q, Esc, Ctrl+C - stop the run
package viz
