// Package printer renders validation results for humans and machines.
//
// Print writes a result.Tree as an indented outline with a marker per check:
// ✓ for pass, ✗ for fail and - for not applicable. Markers are coloured with
// lipgloss; colours are dropped automatically when the writer is not a
// terminal. JSON writes the ordered JSON form of any result value.
package printer
