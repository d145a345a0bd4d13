package planner

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"autocut/internal/faults"
)

// Edge selects which boundary of a reference sample's occurrence a step cuts at.
type Edge int

const (
	// EdgeStart cuts where the sample begins playing.
	EdgeStart Edge = iota
	// EdgeEnd cuts where the sample stops playing.
	EdgeEnd
)

func (e Edge) String() string {
	if e == EdgeEnd {
		return "end"
	}
	return "start"
}

// Step is one entry of a transition pattern.
type Step struct {
	Sample string
	Edge   Edge
}

func (s Step) String() string {
	if s.Edge == EdgeEnd {
		return s.Sample + ":end"
	}
	return s.Sample
}

// Segment flags one interval between transitions.
type Segment int

const (
	// Cut drops the interval.
	Cut Segment = iota
	// Keep copies the interval into the output.
	Keep
)

func (s Segment) String() string {
	if s == Keep {
		return "keep"
	}
	return "cut"
}

// FoldName normalizes a sample name for case-insensitive matching.
func FoldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// ParseStep parses "name", "name:start" or "name:end".
func ParseStep(raw string) (Step, error) {
	name, edge, hasEdge := strings.Cut(strings.TrimSpace(raw), ":")
	step := Step{Sample: FoldName(name)}
	if step.Sample == "" {
		return Step{}, fmt.Errorf("%w: empty sample name in transition step %q", faults.ErrConfiguration, raw)
	}
	if hasEdge {
		switch strings.ToLower(strings.TrimSpace(edge)) {
		case "start", "":
			step.Edge = EdgeStart
		case "end":
			step.Edge = EdgeEnd
		default:
			return Step{}, fmt.Errorf("%w: transition step %q has unknown edge %q (want start or end)", faults.ErrConfiguration, raw, edge)
		}
	}
	return step, nil
}

// ParseSteps parses a transition pattern. An empty pattern is rejected.
func ParseSteps(raw []string) ([]Step, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: transition pattern is empty", faults.ErrConfiguration)
	}
	steps := make([]Step, 0, len(raw))
	for _, entry := range raw {
		step, err := ParseStep(entry)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// ParseSegments parses a cut pattern written as cut/keep or C/K entries.
func ParseSegments(raw []string) ([]Segment, error) {
	segments := make([]Segment, 0, len(raw))
	for _, entry := range raw {
		switch strings.ToLower(strings.TrimSpace(entry)) {
		case "cut", "c":
			segments = append(segments, Cut)
		case "keep", "k":
			segments = append(segments, Keep)
		default:
			return nil, fmt.Errorf("%w: cut pattern entry %q is neither cut nor keep", faults.ErrConfiguration, entry)
		}
	}
	return segments, nil
}

// CheckPatterns verifies that a cut pattern fits a transition pattern: one
// flag per interval, so exactly one more entry than there are steps.
func CheckPatterns(steps []Step, segments []Segment) error {
	if len(segments) != len(steps)+1 {
		return faults.PatternMismatch(len(segments), len(steps)+1)
	}
	return nil
}

// StepNames returns the distinct sample names referenced by steps, in first-use order.
func StepNames(steps []Step) []string {
	seen := make(map[string]struct{}, len(steps))
	names := make([]string, 0, len(steps))
	for _, step := range steps {
		if _, ok := seen[step.Sample]; ok {
			continue
		}
		seen[step.Sample] = struct{}{}
		names = append(names, step.Sample)
	}
	return names
}
