package faults_test

import (
	"errors"
	"strings"
	"testing"

	"autocut/internal/faults"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := faults.Wrap(faults.ErrExternalTool, "ffmpeg", "concat", "failed", base)
	if !errors.Is(err, faults.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"ffmpeg", "concat", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestTypedErrorsUnwrapToSentinels(t *testing.T) {
	incomplete := &faults.IncompleteSequenceError{Found: 1, Expected: 3, Missing: "intro", Windows: 40}
	if !errors.Is(incomplete, faults.ErrIncompleteSequence) {
		t.Fatalf("expected incomplete sequence sentinel")
	}
	if !faults.Recoverable(incomplete) {
		t.Fatalf("expected incomplete sequence to be recoverable")
	}

	hetero := &faults.HeterogeneousInputError{Path: "b.wav", SampleRate: 48000, Channels: 2, WantSampleRate: 44100, WantChannels: 2}
	if !errors.Is(hetero, faults.ErrHeterogeneousInput) {
		t.Fatalf("expected heterogeneous input sentinel")
	}
	if faults.Recoverable(hetero) {
		t.Fatalf("heterogeneous input must not be recoverable")
	}

	var target *faults.IncompleteSequenceError
	wrapped := faults.Wrap(faults.ErrIncompleteSequence, "scanner", "scan", "", incomplete)
	if !errors.As(wrapped, &target) || target.Found != 1 {
		t.Fatalf("expected errors.As to recover details, got %v", wrapped)
	}
}

func TestKindLabels(t *testing.T) {
	cases := map[string]error{
		"pattern_mismatch": faults.PatternMismatch(2, 3),
		"output_naming":    faults.OutputNaming("a.mp3", "must contain a wildcard"),
		"configuration":    faults.Wrap(faults.ErrConfiguration, "config", "", "bad", nil),
		"unknown":          errors.New("plain"),
		"":                 nil,
	}
	for want, err := range cases {
		if got := faults.Kind(err); got != want {
			t.Fatalf("Kind(%v) = %q, want %q", err, got, want)
		}
	}
}
