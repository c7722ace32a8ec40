// Package viz renders simulation results in the terminal.
//
// Summaries are laid out with lipgloss, series are drawn with asciigraph and
// the deformed bow is drawn on a Braille [Canvas] with 2x4 dots per cell.
package viz
