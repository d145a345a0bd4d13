package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrHeterogeneousInput marks inputs that disagree on sample rate or channel count.
	ErrHeterogeneousInput = errors.New("heterogeneous input")
	// ErrIncompleteSequence marks a scan that ran out of audio before the pattern completed.
	ErrIncompleteSequence = errors.New("incomplete transition sequence")
	// ErrPatternMismatch marks a cut/keep pattern whose length does not fit the transitions.
	ErrPatternMismatch = errors.New("cut pattern mismatch")
	// ErrOutputNaming marks an output name that violates the wildcard contract.
	ErrOutputNaming  = errors.New("output naming error")
	ErrConfiguration = errors.New("configuration error")
	ErrExternalTool  = errors.New("external tool error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker. The marker should be one of the sentinels above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Recoverable reports whether the caller may fall back to an unedited output
// instead of failing. Only an incomplete sequence qualifies: the audio simply
// did not contain what was expected. Every other kind is a caller or
// environment bug.
func Recoverable(err error) bool {
	return errors.Is(err, ErrIncompleteSequence)
}

// Kind returns a short label for the error kind, used in logs and JSON output.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrHeterogeneousInput):
		return "heterogeneous_input"
	case errors.Is(err, ErrIncompleteSequence):
		return "incomplete_sequence"
	case errors.Is(err, ErrPatternMismatch):
		return "pattern_mismatch"
	case errors.Is(err, ErrOutputNaming):
		return "output_naming"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	default:
		return "unknown"
	}
}

// IncompleteSequenceError reports how far a scan got before running out of windows.
type IncompleteSequenceError struct {
	Found    int
	Expected int
	Missing  string
	Windows  int
}

func (e *IncompleteSequenceError) Error() string {
	return fmt.Sprintf("did not find the full expected transition sequence: found %d of %d transitions (missing %s after %d windows)",
		e.Found, e.Expected, e.Missing, e.Windows)
}

func (e *IncompleteSequenceError) Unwrap() error { return ErrIncompleteSequence }

// HeterogeneousInputError names the input that disagreed with the first one.
type HeterogeneousInputError struct {
	Path           string
	SampleRate     int
	Channels       int
	WantSampleRate int
	WantChannels   int
}

func (e *HeterogeneousInputError) Error() string {
	return fmt.Sprintf("input %s has %d Hz / %d ch, expected %d Hz / %d ch; inputs with different sample rates or channel counts cannot be combined",
		e.Path, e.SampleRate, e.Channels, e.WantSampleRate, e.WantChannels)
}

func (e *HeterogeneousInputError) Unwrap() error { return ErrHeterogeneousInput }

// PatternMismatch builds a pattern mismatch error for the given lengths.
func PatternMismatch(cutLen, intervals int) error {
	return fmt.Errorf("%w: cut pattern has %d entries but the transition sequence yields %d intervals", ErrPatternMismatch, cutLen, intervals)
}

// OutputNaming builds an output naming error for name.
func OutputNaming(name, reason string) error {
	return fmt.Errorf("%w: %q %s", ErrOutputNaming, name, reason)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "autocut failure"
	}
	return strings.Join(parts, ": ")
}
