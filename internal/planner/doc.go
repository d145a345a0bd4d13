// Package planner turns detected transitions into named output intervals.
//
// It owns the caller-facing pattern vocabulary: a transition pattern is an
// ordered list of steps naming a reference sample and which edge of it marks
// the cut, and a cut pattern flags each interval between transitions as cut
// or keep. Patterns are checked against each other, and output names against
// the wildcard contract, before any audio is touched.
package planner
