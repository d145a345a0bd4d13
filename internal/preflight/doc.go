// Package preflight provides readiness checks for the binaries, directories,
// sample sources, and cache backend autocut depends on.
//
// These checks run in two contexts:
//   - Runs call RunAll before doing any work so a missing tool or unwritable
//     directory fails fast instead of after minutes of fingerprinting.
//   - The CLI "autocut status" command renders every result as a table.
package preflight
