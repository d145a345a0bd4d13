package planner

import "autocut/internal/faults"

// EndOfStream marks an interval that runs to the end of the audio.
const EndOfStream int64 = -1

// Interval is a half-open range of PCM frames. End may be EndOfStream.
type Interval struct {
	Start int64
	End   int64
}

// IntervalsToKeep pads the transitions with the stream start and end and
// returns the intervals flagged Keep, in order.
func IntervalsToKeep(transitions []int64, pattern []Segment) ([]Interval, error) {
	if len(pattern) != len(transitions)+1 {
		return nil, faults.PatternMismatch(len(pattern), len(transitions)+1)
	}
	bounds := make([]int64, 0, len(transitions)+2)
	bounds = append(bounds, 0)
	bounds = append(bounds, transitions...)
	bounds = append(bounds, EndOfStream)

	var keep []Interval
	for i, segment := range pattern {
		if segment == Keep {
			keep = append(keep, Interval{Start: bounds[i], End: bounds[i+1]})
		}
	}
	return keep, nil
}
