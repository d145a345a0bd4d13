package splicer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-audio/audio"

	"autocut/internal/faults"
	"autocut/internal/fileutil"
	"autocut/internal/logging"
	"autocut/internal/planner"
)

// DefaultBufferFrames is the copy buffer size in frames.
const DefaultBufferFrames = 4096

// Concatenator joins audio files into one output.
type Concatenator interface {
	Concat(ctx context.Context, inputs []string, output string) error
}

// Splicer copies intervals of WAV inputs into output files.
type Splicer struct {
	BufferFrames int
	Concatenator Concatenator
	// WorkDir receives partial files; it must exist.
	WorkDir string
	Logger  *slog.Logger
}

// piece is the part of one output interval that falls inside one input.
type piece struct {
	output int
	start  int64
	end    int64
}

// Splice writes every output whose intervals cover at least one frame and
// returns their names in output order. Interval bounds are global frame
// offsets into the concatenation of inputs; planner.EndOfStream runs to the
// end of the last input.
func (s *Splicer) Splice(ctx context.Context, inputs []string, outputs []planner.Output) ([]string, error) {
	logger := logging.NewComponentLogger(s.Logger, "splicer")
	if len(inputs) == 0 {
		return nil, errors.New("no input files")
	}
	bufferFrames := s.BufferFrames
	if bufferFrames <= 0 {
		bufferFrames = DefaultBufferFrames
	}

	partials := make([][]string, len(outputs))
	var (
		global int64
		first  pcmFormat
	)
	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := openReader(input)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			first = r.format
		} else if r.format != first {
			_ = r.Close()
			return nil, faults.Wrap(faults.ErrHeterogeneousInput, "splicer", "open", "",
				&faults.HeterogeneousInputError{
					Path:           input,
					SampleRate:     r.format.SampleRate,
					Channels:       r.format.Channels,
					WantSampleRate: first.SampleRate,
					WantChannels:   first.Channels,
				})
		}

		pieces := clampPieces(outputs, global, r.frames)
		written, err := s.copyPieces(ctx, r, i, pieces, bufferFrames)
		closeErr := r.Close()
		if err != nil {
			return nil, err
		}
		if closeErr != nil {
			return nil, closeErr
		}
		for idx, path := range written {
			partials[idx] = append(partials[idx], path)
		}
		logger.Debug("input spliced",
			logging.String("input_path", input),
			logging.Int64("frames", r.frames),
			logging.Int("pieces", len(pieces)))
		global += r.frames
	}

	var finalized []string
	for idx, out := range outputs {
		if len(partials[idx]) == 0 {
			logger.Info("output has no audio; skipped", logging.String("output", out.Name))
			continue
		}
		if err := s.finalize(ctx, partials[idx], out.Name); err != nil {
			return nil, err
		}
		finalized = append(finalized, out.Name)
		logger.Info("output written", logging.String("output", out.Name), logging.Int("partials", len(partials[idx])))
	}
	return finalized, nil
}

// clampPieces maps every output interval onto the input spanning
// [offset, offset+frames) and returns the non-empty pieces in local frames,
// ordered by start.
func clampPieces(outputs []planner.Output, offset, frames int64) []piece {
	var pieces []piece
	for idx, out := range outputs {
		for _, iv := range out.Intervals {
			start := iv.Start - offset
			end := frames
			if iv.End != planner.EndOfStream {
				end = iv.End - offset
			}
			start = max(start, 0)
			end = min(end, frames)
			if end > start {
				pieces = append(pieces, piece{output: idx, start: start, end: end})
			}
		}
	}
	sort.SliceStable(pieces, func(a, b int) bool { return pieces[a].start < pieces[b].start })
	return pieces
}

// copyPieces streams each piece into its output's partial for this input and
// returns the partial paths keyed by output index.
func (s *Splicer) copyPieces(ctx context.Context, r *reader, inputIdx int, pieces []piece, bufferFrames int) (map[int]string, error) {
	writers := map[int]*writer{}
	closeAll := func() error {
		var errs []error
		for _, w := range writers {
			errs = append(errs, w.Close())
		}
		return errors.Join(errs...)
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: r.format.Channels, SampleRate: r.format.SampleRate},
		Data:           make([]int, bufferFrames*r.format.Channels),
		SourceBitDepth: r.format.BitDepth,
	}

	for _, p := range pieces {
		if err := ctx.Err(); err != nil {
			_ = closeAll()
			return nil, err
		}
		if p.start < r.pos {
			if err := r.reset(); err != nil {
				_ = closeAll()
				return nil, err
			}
		}
		if err := r.advance(p.start-r.pos, buf, nil); err != nil {
			_ = closeAll()
			return nil, err
		}
		w := writers[p.output]
		sink := func(chunk *audio.IntBuffer) error {
			if w == nil {
				path := filepath.Join(s.WorkDir, fmt.Sprintf("part-%03d-%03d.wav", p.output, inputIdx))
				created, err := createWriter(path, r.format)
				if err != nil {
					return err
				}
				w = created
				writers[p.output] = w
			}
			return w.write(chunk)
		}
		if err := r.advance(p.end-p.start, buf, sink); err != nil {
			_ = closeAll()
			return nil, err
		}
	}

	if err := closeAll(); err != nil {
		return nil, err
	}
	paths := make(map[int]string, len(writers))
	for idx, w := range writers {
		if w.frames > 0 {
			paths[idx] = w.path
		}
	}
	return paths, nil
}

func (s *Splicer) finalize(ctx context.Context, partials []string, output string) error {
	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if len(partials) == 1 && strings.EqualFold(filepath.Ext(output), ".wav") {
		if err := fileutil.MoveFile(partials[0], output); err != nil {
			return fmt.Errorf("move %s to %s: %w", partials[0], output, err)
		}
		return nil
	}
	if s.Concatenator == nil {
		return fmt.Errorf("output %s needs %d partials joined but no concatenator is configured", output, len(partials))
	}
	if err := s.Concatenator.Concat(ctx, partials, output); err != nil {
		return err
	}
	for _, partial := range partials {
		_ = os.Remove(partial)
	}
	return nil
}
