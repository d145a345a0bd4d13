package planner

import (
	"fmt"
	"path/filepath"
	"strings"

	"autocut/internal/faults"
)

// Wildcard is replaced by the part number in split mode.
const Wildcard = "*"

// Output is one named destination and the intervals copied into it.
type Output struct {
	Name      string
	Intervals []Interval
}

// ValidateOutputName enforces the wildcard contract: split output needs
// exactly one wildcard, merged output must not contain any.
func ValidateOutputName(name string, split bool) error {
	if strings.TrimSpace(name) == "" {
		return faults.OutputNaming(name, "is empty")
	}
	count := strings.Count(name, Wildcard)
	switch {
	case split && count != 1:
		return faults.OutputNaming(name, "must contain exactly one '*' when writing separate parts")
	case !split && count != 0:
		return faults.OutputNaming(name, "must not contain '*' when merging into one output")
	}
	return nil
}

// ValidateOutputFor applies the wildcard contract to a run that writes parts
// outputs. A split run that writes at most one part may leave the wildcard
// out; PartName then numbers the file.
func ValidateOutputFor(name string, merge bool, parts int) error {
	if !merge && parts <= 1 && !strings.Contains(name, Wildcard) {
		return ValidateOutputName(name, false)
	}
	return ValidateOutputName(name, !merge)
}

// KeptIntervals counts the Keep flags in a cut pattern, which is the number
// of parts a split run writes.
func KeptIntervals(segments []Segment) int {
	n := 0
	for _, segment := range segments {
		if segment == Keep {
			n++
		}
	}
	return n
}

// PartName substitutes the wildcard with a two-digit, 1-based part number.
// Names without a wildcard get the number appended before the extension.
func PartName(pattern string, index int) string {
	part := fmt.Sprintf("%02d", index)
	if strings.Contains(pattern, Wildcard) {
		return strings.Replace(pattern, Wildcard, part, 1)
	}
	ext := filepath.Ext(pattern)
	return strings.TrimSuffix(pattern, ext) + "_" + part + ext
}

// GroupOutputs assigns intervals to named outputs: one output holding every
// interval when merging, otherwise one numbered part per interval.
func GroupOutputs(name string, intervals []Interval, merge bool) ([]Output, error) {
	if err := ValidateOutputFor(name, merge, len(intervals)); err != nil {
		return nil, err
	}
	if len(intervals) == 0 {
		return nil, nil
	}
	if merge {
		return []Output{{Name: name, Intervals: append([]Interval(nil), intervals...)}}, nil
	}
	outputs := make([]Output, 0, len(intervals))
	for i, interval := range intervals {
		outputs = append(outputs, Output{Name: PartName(name, i+1), Intervals: []Interval{interval}})
	}
	return outputs, nil
}

// SuggestOutputName derives an output name from the first input when the
// caller did not supply one. The suggestion never equals the input path.
func SuggestOutputName(input, ext string, split bool) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if ext == "" {
		ext = filepath.Ext(input)
	}
	if split {
		base += "_part" + Wildcard
	} else {
		base += "_cut"
	}
	return filepath.Join(filepath.Dir(input), base+ext)
}
