package autocut

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"autocut/internal/faults"
	"autocut/internal/logging"
	"autocut/internal/planner"
	"autocut/internal/samples"
	"autocut/internal/scanner"
	"autocut/internal/splicer"
	"autocut/internal/staging"
	"autocut/internal/textutil"
	"autocut/internal/timeline"
)

// LibrarySource provides the reference samples.
type LibrarySource interface {
	Load(ctx context.Context) (*samples.Library, error)
}

// TimelineSource fingerprints an ordered list of inputs.
type TimelineSource interface {
	Load(ctx context.Context, files []string) (*timeline.Timeline, error)
}

// MediaTool converts, segments, and joins audio.
type MediaTool interface {
	Convert(ctx context.Context, input, output string) error
	SegmentAudio(ctx context.Context, input, outDir string, segmentSeconds int) ([]string, error)
	Concat(ctx context.Context, inputs []string, output string) error
}

// Runner executes autocut runs.
type Runner struct {
	Samples        LibrarySource
	Timelines      TimelineSource
	Media          MediaTool
	Scan           scanner.ScanConfig
	SegmentSeconds int
	BufferFrames   int
	// WorkDir is the parent of per-run directories.
	WorkDir string
	// KeepWorkDir leaves run directories in place for debugging.
	KeepWorkDir bool
	Logger      *slog.Logger
}

// Request describes one autocut of an ordered set of audio inputs.
type Request struct {
	Inputs   []string
	Output   string
	Steps    []planner.Step
	Segments []planner.Segment
	// Merge writes every kept interval into Output instead of one part per interval.
	Merge bool
	// IgnoreErrors falls back to an unedited merge when the pattern is not found.
	IgnoreErrors bool
	Progress     func(done, total int)
}

// Result reports what a run produced.
type Result struct {
	Outputs     []string
	Events      []scanner.Event
	Transitions []int64
	// Fallback is set when the outputs are an unedited merge.
	Fallback       bool
	FallbackReason error
}

// Autocut cuts req.Inputs according to the transition and cut patterns.
func (r *Runner) Autocut(ctx context.Context, req Request) (Result, error) {
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}
	ctx, logger := r.runContext(ctx, "autocut")
	runDir, release, err := staging.Acquire(r.WorkDir, r.KeepWorkDir, logger)
	if err != nil {
		return Result{}, err
	}
	defer release()
	return r.autocutIn(ctx, logger, runDir, req)
}

func validateRequest(req Request) error {
	if len(req.Inputs) == 0 {
		return errors.New("no input files")
	}
	if err := planner.CheckPatterns(req.Steps, req.Segments); err != nil {
		return err
	}
	return planner.ValidateOutputFor(req.Output, req.Merge, planner.KeptIntervals(req.Segments))
}

func (r *Runner) runContext(ctx context.Context, stage string) (context.Context, *slog.Logger) {
	if _, ok := logging.RunIDFromContext(ctx); !ok {
		ctx = logging.WithRunID(ctx, uuid.NewString())
	}
	ctx = logging.WithStage(ctx, stage)
	return ctx, logging.WithContext(ctx, logging.NewComponentLogger(r.Logger, "autocut"))
}

func (r *Runner) autocutIn(ctx context.Context, logger *slog.Logger, runDir string, req Request) (Result, error) {
	inputs, err := r.prepareInputs(ctx, runDir, req.Inputs)
	if err != nil {
		return Result{}, err
	}

	events, tl, err := r.scan(ctx, logger, inputs, req.Steps, req.Progress)
	if err != nil {
		if req.IgnoreErrors && faults.Recoverable(err) {
			logging.WarnWithContext(logger, "transition pattern not found; writing unedited audio", "autocut_fallback",
				logging.Error(err),
				logging.Alert("unedited_output"),
				logging.String(logging.FieldErrorHint, "check the transition pattern or the reference samples"),
				logging.String(logging.FieldImpact, "output is not cut"))
			outputs, mergeErr := r.mergeUnedited(ctx, inputs, req.Output, req.Merge)
			if mergeErr != nil {
				return Result{}, mergeErr
			}
			return Result{Outputs: outputs, Fallback: true, FallbackReason: err}, nil
		}
		return Result{}, err
	}

	transitions := scanner.Transitions(tl, events)
	for i, event := range events {
		logger.Info("transition found",
			logging.String("sample", event.Sample),
			logging.String("edge", event.Edge.String()),
			logging.String("timestamp", FormatSeconds(tl.IndexToSeconds(event.Index))),
			logging.Int64("frame", transitions[i]))
	}

	intervals, err := planner.IntervalsToKeep(transitions, req.Segments)
	if err != nil {
		return Result{}, err
	}
	groups, err := planner.GroupOutputs(req.Output, intervals, req.Merge)
	if err != nil {
		return Result{}, err
	}

	partsDir := filepath.Join(runDir, "parts")
	if err := os.MkdirAll(partsDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create parts dir: %w", err)
	}
	sp := &splicer.Splicer{
		BufferFrames: r.BufferFrames,
		Concatenator: r.Media,
		WorkDir:      partsDir,
		Logger:       r.Logger,
	}
	outputs, err := sp.Splice(logging.WithStage(ctx, "splice"), inputs, groups)
	if err != nil {
		return Result{}, err
	}
	logger.Info("autocut complete", logging.Int("outputs", len(outputs)), logging.Int("events", len(events)))
	return Result{Outputs: outputs, Events: events, Transitions: transitions}, nil
}

// prepareInputs converts any non-WAV input into the run directory.
func (r *Runner) prepareInputs(ctx context.Context, runDir string, inputs []string) ([]string, error) {
	prepared := make([]string, len(inputs))
	for i, input := range inputs {
		if strings.EqualFold(filepath.Ext(input), ".wav") {
			prepared[i] = input
			continue
		}
		base := textutil.SanitizeToken(strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)))
		out := filepath.Join(runDir, fmt.Sprintf("%03d-%s.wav", i, base))
		if err := r.Media.Convert(ctx, input, out); err != nil {
			return nil, err
		}
		prepared[i] = out
	}
	return prepared, nil
}

func (r *Runner) scan(ctx context.Context, logger *slog.Logger, inputs []string, steps []planner.Step, progress func(int, int)) ([]scanner.Event, *timeline.Timeline, error) {
	lib, err := r.Samples.Load(logging.WithStage(ctx, "samples"))
	if err != nil {
		return nil, nil, err
	}
	if err := lib.Validate(steps); err != nil {
		return nil, nil, err
	}
	tl, err := r.Timelines.Load(logging.WithStage(ctx, "fingerprint"), inputs)
	if err != nil {
		return nil, nil, err
	}
	opts := []scanner.Option{scanner.WithLogger(logger)}
	if progress != nil {
		opts = append(opts, scanner.WithProgress(progress))
	}
	events, err := scanner.Scan(tl, lib, steps, r.Scan, opts...)
	if err != nil {
		return nil, tl, err
	}
	return events, tl, nil
}

// mergeUnedited joins inputs into a single output. In split mode the
// output is the first part name.
func (r *Runner) mergeUnedited(ctx context.Context, inputs []string, output string, merge bool) ([]string, error) {
	target := output
	if !merge {
		target = planner.PartName(output, 1)
	}
	if dir := filepath.Dir(target); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := r.Media.Concat(ctx, inputs, target); err != nil {
		return nil, err
	}
	return []string{target}, nil
}

// Detect scans inputs for steps without writing any audio.
func (r *Runner) Detect(ctx context.Context, inputs []string, steps []planner.Step, progress func(int, int)) ([]scanner.Event, *timeline.Timeline, error) {
	if len(inputs) == 0 {
		return nil, nil, errors.New("no input files")
	}
	ctx, logger := r.runContext(ctx, "scan")
	runDir, release, err := staging.Acquire(r.WorkDir, r.KeepWorkDir, logger)
	if err != nil {
		return nil, nil, err
	}
	defer release()
	prepared, err := r.prepareInputs(ctx, runDir, inputs)
	if err != nil {
		return nil, nil, err
	}
	return r.scan(ctx, logger, prepared, steps, progress)
}

// ErrorProfile returns the per-window minimum error of inputs against every sample.
func (r *Runner) ErrorProfile(ctx context.Context, inputs []string) ([]scanner.WindowErrors, *timeline.Timeline, error) {
	if len(inputs) == 0 {
		return nil, nil, errors.New("no input files")
	}
	ctx, logger := r.runContext(ctx, "errors")
	runDir, release, err := staging.Acquire(r.WorkDir, r.KeepWorkDir, logger)
	if err != nil {
		return nil, nil, err
	}
	defer release()
	prepared, err := r.prepareInputs(ctx, runDir, inputs)
	if err != nil {
		return nil, nil, err
	}
	lib, err := r.Samples.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	tl, err := r.Timelines.Load(ctx, prepared)
	if err != nil {
		return nil, nil, err
	}
	profile, err := scanner.ErrorProfile(tl, lib, r.Scan.WindowSeconds, r.Scan.CheckHighBits)
	if err != nil {
		return nil, nil, err
	}
	return profile, tl, nil
}

// FormatSeconds renders seconds as H:MM:SS.
func FormatSeconds(seconds float64) string {
	total := int64(seconds)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total/60)%60, total%60)
}
