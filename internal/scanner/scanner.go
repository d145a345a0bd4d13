package scanner

import (
	"fmt"
	"log/slog"

	"autocut/internal/faults"
	"autocut/internal/fingerprint"
	"autocut/internal/logging"
	"autocut/internal/planner"
	"autocut/internal/samples"
	"autocut/internal/timeline"
)

// Event is one committed transition.
type Event struct {
	// Window is the window the transition was dated to.
	Window int
	// Index is the fingerprint index of the start of that window.
	Index  int
	Sample string
	Edge   planner.Edge
}

// Option customizes a scan.
type Option func(*options)

type options struct {
	progress func(done, total int)
	logger   *slog.Logger
}

// WithProgress registers a callback invoked after every window.
func WithProgress(fn func(done, total int)) Option {
	return func(o *options) { o.progress = fn }
}

// WithLogger logs committed state changes at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

type state struct {
	steps         []planner.Step
	next          int
	transitioning bool
	active        string
	run           int
	candidate     int
}

// watched returns the sample the current window is compared against.
func (s *state) watched() string {
	if s.transitioning {
		return s.active
	}
	return s.steps[s.next].Sample
}

// commit flips the state at window w and reports whether the flip satisfies
// the next step of the pattern.
func (s *state) commit() (Event, bool) {
	step := s.steps[s.next]
	if s.transitioning {
		ended := s.active
		s.transitioning = false
		s.active = ""
		if step.Edge == planner.EdgeEnd && step.Sample == ended {
			s.next++
			return Event{Window: s.candidate, Sample: ended, Edge: planner.EdgeEnd}, true
		}
		return Event{}, false
	}
	s.transitioning = true
	s.active = step.Sample
	if step.Edge == planner.EdgeStart {
		s.next++
		return Event{Window: s.candidate, Sample: step.Sample, Edge: planner.EdgeStart}, true
	}
	return Event{}, false
}

// Scan finds one event per step of steps, in order. A start step commits
// when its sample begins (after any sample still playing has ended). An end
// step commits when its sample stops (after waiting for it to begin). The
// scan stops at the last step; if the windows run out first, the result is
// an *faults.IncompleteSequenceError and no events.
func Scan(tl *timeline.Timeline, lib *samples.Library, steps []planner.Step, cfg ScanConfig, opts ...Option) ([]Event, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	logger := logging.NewComponentLogger(o.logger, "scanner")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: transition pattern is empty", faults.ErrConfiguration)
	}
	if err := lib.Validate(steps); err != nil {
		return nil, err
	}
	size := tl.WindowSize(cfg.WindowSeconds)
	if size < 1 {
		return nil, fmt.Errorf("%w: window of %.2fs holds no fingerprint codes at %.2f codes/s",
			faults.ErrConfiguration, cfg.WindowSeconds, tl.Rate())
	}

	total := tl.WindowCount(size)
	st := &state{steps: steps}
	events := make([]Event, 0, len(steps))
	processed := 0

	for w, window := range tl.Windows(size) {
		processed++
		sample, _ := lib.Get(st.watched())
		errRate := sample.WindowError(window, cfg.CheckHighBits)
		vote := (st.transitioning && errRate > cfg.ErrorThreshold) ||
			(!st.transitioning && errRate < cfg.ErrorThreshold)

		if vote {
			if st.run == 0 {
				st.candidate = w
			}
			st.run++
		} else {
			st.run = 0
		}

		if st.run >= cfg.MinRunWindows {
			st.run = 0
			wasTransitioning, watched := st.transitioning, st.watched()
			event, emitted := st.commit()
			logger.Debug("state change committed",
				logging.Int("window", st.candidate),
				logging.String("sample", watched),
				logging.Bool("ended", wasTransitioning),
				logging.Bool("emitted", emitted))
			if emitted {
				event.Index = event.Window * size
				events = append(events, event)
				if st.next == len(steps) {
					if o.progress != nil {
						o.progress(total, total)
					}
					return events, nil
				}
			}
		}
		if o.progress != nil {
			o.progress(processed, total)
		}
	}

	return nil, &faults.IncompleteSequenceError{
		Found:    st.next,
		Expected: len(steps),
		Missing:  steps[st.next].String(),
		Windows:  processed,
	}
}

// Transitions converts events to PCM frame offsets in the timeline's audio.
func Transitions(tl *timeline.Timeline, events []Event) []int64 {
	out := make([]int64, len(events))
	for i, event := range events {
		out[i] = tl.IndexToPCMSample(event.Index)
	}
	return out
}

// WindowErrors pairs each window with its best matching sample.
type WindowErrors struct {
	Window int
	Index  int
	Sample string
	Error  float64
}

// ErrorProfile returns, for every window, the lowest error across all
// library samples and the sample that produced it. Ties go to the name that
// sorts first.
func ErrorProfile(tl *timeline.Timeline, lib *samples.Library, windowSeconds float64, checkHighBits bool) ([]WindowErrors, error) {
	size := tl.WindowSize(windowSeconds)
	if size < 1 {
		return nil, fmt.Errorf("%w: window of %.2fs holds no fingerprint codes", faults.ErrConfiguration, windowSeconds)
	}
	names := lib.Names()
	profile := make([]WindowErrors, 0, tl.WindowCount(size))
	for w, window := range tl.Windows(size) {
		profile = append(profile, bestMatch(lib, names, w, w*size, window, checkHighBits))
	}
	return profile, nil
}

func bestMatch(lib *samples.Library, names []string, w, index int, window []fingerprint.Code, checkHighBits bool) WindowErrors {
	best := WindowErrors{Window: w, Index: index, Error: samples.MissError}
	for _, name := range names {
		sample, _ := lib.Get(name)
		if errRate := sample.WindowError(window, checkHighBits); best.Sample == "" || errRate < best.Error {
			best.Sample = name
			best.Error = errRate
		}
	}
	return best
}
