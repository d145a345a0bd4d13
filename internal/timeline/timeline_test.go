package timeline_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"autocut/internal/faults"
	"autocut/internal/fingerprint"
	"autocut/internal/timeline"
)

type stubFingerprinter struct {
	results map[string]fingerprint.Result
	calls   atomic.Int32
}

func (s *stubFingerprinter) FingerprintFile(_ context.Context, path string) (fingerprint.Result, error) {
	s.calls.Add(1)
	result, ok := s.results[path]
	if !ok {
		return fingerprint.Result{}, fmt.Errorf("no fixture for %s", path)
	}
	// Later files finish first so ordering depends on the index, not completion.
	if path == "a.wav" {
		time.Sleep(10 * time.Millisecond)
	}
	return result, nil
}

func seq(start, n int) []fingerprint.Code {
	codes := make([]fingerprint.Code, n)
	for i := range codes {
		codes[i] = fingerprint.Code(start + i)
	}
	return codes
}

func TestBuildConcatenatesInInputOrder(t *testing.T) {
	fp := &stubFingerprinter{results: map[string]fingerprint.Result{
		"a.wav": {Codes: seq(0, 4), Duration: 2, SampleRate: 48000, Channels: 2},
		"b.wav": {Codes: seq(100, 6), Duration: 3, SampleRate: 48000, Channels: 2},
	}}
	tl, err := timeline.Build(context.Background(), fp, []string{"a.wav", "b.wav"}, 4)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tl.Len() != 10 || tl.Duration() != 5 || tl.Rate() != 2 {
		t.Fatalf("len=%d duration=%v rate=%v", tl.Len(), tl.Duration(), tl.Rate())
	}
	var first []fingerprint.Code
	for _, window := range tl.Windows(5) {
		first = window
		break
	}
	if first[0] != 0 || first[4] != 100 {
		t.Fatalf("codes out of order: %v", first)
	}
}

func TestBuildRejectsHeterogeneousInput(t *testing.T) {
	fp := &stubFingerprinter{results: map[string]fingerprint.Result{
		"a.wav": {Codes: seq(0, 4), Duration: 2, SampleRate: 48000, Channels: 2},
		"b.wav": {Codes: seq(0, 4), Duration: 2, SampleRate: 44100, Channels: 2},
	}}
	_, err := timeline.Build(context.Background(), fp, []string{"a.wav", "b.wav"}, 2)
	if !errors.Is(err, faults.ErrHeterogeneousInput) {
		t.Fatalf("expected heterogeneous input error, got %v", err)
	}
	var detail *faults.HeterogeneousInputError
	if !errors.As(err, &detail) || detail.Path != "b.wav" || detail.WantSampleRate != 48000 {
		t.Fatalf("unexpected detail: %#v", detail)
	}
}

func TestBuildRejectsZeroDuration(t *testing.T) {
	fp := &stubFingerprinter{results: map[string]fingerprint.Result{
		"a.wav": {SampleRate: 48000, Channels: 2},
	}}
	if _, err := timeline.Build(context.Background(), fp, []string{"a.wav"}, 1); err == nil {
		t.Fatal("expected error for zero duration")
	}
}

func TestWindowsPartitionTheSequence(t *testing.T) {
	tl, err := timeline.New(seq(0, 23), 23, 8000, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, size := range []int{1, 5, 10, 23, 40} {
		total, count := 0, 0
		for w, window := range tl.Windows(size) {
			if w != count {
				t.Fatalf("size %d: window index %d, want %d", size, w, count)
			}
			if count < tl.WindowCount(size)-1 && len(window) != size {
				t.Fatalf("size %d: interior window has %d codes", size, len(window))
			}
			if window[0] != fingerprint.Code(w*size) {
				t.Fatalf("size %d: window %d starts at %d", size, w, window[0])
			}
			total += len(window)
			count++
		}
		if total != tl.Len() || count != tl.WindowCount(size) {
			t.Fatalf("size %d: total=%d count=%d want %d/%d", size, total, count, tl.Len(), tl.WindowCount(size))
		}
	}

	again := 0
	for range tl.Windows(5) {
		again++
	}
	if again != 5 {
		t.Fatalf("Windows not restartable: second pass yielded %d", again)
	}
	for range tl.Windows(0) {
		t.Fatal("size 0 must yield nothing")
	}
}

func TestIndexConversions(t *testing.T) {
	// 80 codes over 10 s at 44.1 kHz: 8 codes per second.
	tl, err := timeline.New(seq(0, 80), 10, 44100, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := tl.WindowSize(2.5); got != 20 {
		t.Fatalf("WindowSize(2.5) = %d, want 20", got)
	}
	cases := map[int]int64{0: 0, 1: 5512, 8: 44100, 79: 435487}
	for index, want := range cases {
		if got := tl.IndexToPCMSample(index); got != want {
			t.Fatalf("IndexToPCMSample(%d) = %d, want %d", index, got, want)
		}
	}
	if got := tl.IndexToSeconds(20); got != 2.5 {
		t.Fatalf("IndexToSeconds(20) = %v", got)
	}
}
