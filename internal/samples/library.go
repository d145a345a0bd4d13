package samples

import (
	"fmt"
	"sort"
	"strings"

	"autocut/internal/faults"
	"autocut/internal/planner"
)

// Library is the closed set of reference samples for a run, keyed by folded name.
type Library struct {
	samples map[string]*ReferenceSample
}

// NewLibrary indexes samples by their folded names. Later duplicates win.
func NewLibrary(samples ...*ReferenceSample) *Library {
	lib := &Library{samples: make(map[string]*ReferenceSample, len(samples))}
	for _, sample := range samples {
		if sample == nil {
			continue
		}
		lib.samples[planner.FoldName(sample.Name())] = sample
	}
	return lib
}

// Names returns the sample names in sorted order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.samples))
	for name := range l.samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the sample registered under name.
func (l *Library) Get(name string) (*ReferenceSample, bool) {
	sample, ok := l.samples[planner.FoldName(name)]
	return sample, ok
}

func (l *Library) Len() int { return len(l.samples) }

// Validate checks that every step names a sample in the library.
func (l *Library) Validate(steps []planner.Step) error {
	var missing []string
	for _, name := range planner.StepNames(steps) {
		if _, ok := l.samples[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: transition pattern references unknown samples %s (known: %s)",
			faults.ErrConfiguration, strings.Join(missing, ", "), strings.Join(l.Names(), ", "))
	}
	return nil
}
