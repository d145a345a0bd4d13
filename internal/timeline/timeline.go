package timeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"

	"golang.org/x/sync/errgroup"

	"autocut/internal/faults"
	"autocut/internal/fingerprint"
)

// Timeline is the read-only fingerprint of a concatenated set of inputs.
type Timeline struct {
	codes      []fingerprint.Code
	duration   float64
	sampleRate int
	channels   int
	rate       float64
}

// New builds a timeline from already concatenated codes.
func New(codes []fingerprint.Code, duration float64, sampleRate, channels int) (*Timeline, error) {
	if duration <= 0 {
		return nil, errors.New("timeline has zero duration")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("timeline sample rate %d is not positive", sampleRate)
	}
	return &Timeline{
		codes:      codes,
		duration:   duration,
		sampleRate: sampleRate,
		channels:   channels,
		rate:       float64(len(codes)) / duration,
	}, nil
}

// Build fingerprints files in order and concatenates the results. Files are
// fingerprinted concurrently with at most workers in flight; the combined
// sequence always follows input order. Every file must share the first
// file's sample rate and channel count.
func Build(ctx context.Context, fp fingerprint.Fingerprinter, files []string, workers int) (*Timeline, error) {
	if len(files) == 0 {
		return nil, errors.New("no input files")
	}
	results := make([]fingerprint.Result, len(files))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(max(workers, 1))
	for i, path := range files {
		group.Go(func() error {
			result, err := fp.FingerprintFile(groupCtx, path)
			if err != nil {
				return fmt.Errorf("fingerprint %s: %w", path, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	first := results[0]
	var (
		codes    []fingerprint.Code
		duration float64
	)
	for i, result := range results {
		if result.SampleRate != first.SampleRate || result.Channels != first.Channels {
			return nil, faults.Wrap(faults.ErrHeterogeneousInput, "timeline", "build", "",
				&faults.HeterogeneousInputError{
					Path:           files[i],
					SampleRate:     result.SampleRate,
					Channels:       result.Channels,
					WantSampleRate: first.SampleRate,
					WantChannels:   first.Channels,
				})
		}
		codes = append(codes, result.Codes...)
		duration += result.Duration
	}
	return New(codes, duration, first.SampleRate, first.Channels)
}

func (t *Timeline) Len() int { return len(t.codes) }

func (t *Timeline) Duration() float64 { return t.duration }

func (t *Timeline) SampleRate() int { return t.sampleRate }

func (t *Timeline) Channels() int { return t.channels }

// Rate returns fingerprint codes per second.
func (t *Timeline) Rate() float64 { return t.rate }

// WindowSize returns the number of codes covering seconds of audio.
func (t *Timeline) WindowSize(seconds float64) int {
	return int(math.Floor(seconds * t.rate))
}

// WindowCount returns how many windows of size Windows yields.
func (t *Timeline) WindowCount(size int) int {
	if size <= 0 {
		return 0
	}
	return (len(t.codes) + size - 1) / size
}

// Windows yields consecutive non-overlapping windows of size codes, keyed by
// window number. The last window may be shorter. A non-positive size yields
// nothing. Windows share the timeline's backing array and must not be modified.
func (t *Timeline) Windows(size int) iter.Seq2[int, []fingerprint.Code] {
	return func(yield func(int, []fingerprint.Code) bool) {
		if size <= 0 {
			return
		}
		for w, start := 0, 0; start < len(t.codes); w, start = w+1, start+size {
			end := min(start+size, len(t.codes))
			if !yield(w, t.codes[start:end:end]) {
				return
			}
		}
	}
}

// IndexToPCMSample maps a fingerprint index to a frame in the concatenated audio.
func (t *Timeline) IndexToPCMSample(index int) int64 {
	if t.rate == 0 {
		return 0
	}
	return int64(math.Floor(float64(t.sampleRate) * float64(index) / t.rate))
}

// IndexToSeconds maps a fingerprint index to seconds from the start of the audio.
func (t *Timeline) IndexToSeconds(index int) float64 {
	if t.rate == 0 {
		return 0
	}
	return float64(index) / t.rate
}
