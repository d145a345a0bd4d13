package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"autocut/internal/logging"
)

// DefaultSegmentSeconds caps the length of each extracted audio segment.
const DefaultSegmentSeconds = 1800

// Tool runs ffmpeg.
type Tool struct {
	Binary string
	Logger *slog.Logger
}

// New returns a Tool using binary (default "ffmpeg").
func New(binary string, logger *slog.Logger) *Tool {
	return &Tool{Binary: binary, Logger: logging.NewComponentLogger(logger, "ffmpeg")}
}

// Convert decodes input and writes output. WAV outputs are forced to 16-bit
// PCM so the splicer can stream them.
func (t *Tool) Convert(ctx context.Context, input, output string) error {
	args := []string{"-i", input, "-vn"}
	if isWAV(output) {
		args = append(args, "-c:a", "pcm_s16le")
	}
	args = append(args, output)
	return t.run(ctx, "convert", args...)
}

// SegmentAudio extracts the audio of input into PCM WAV files of at most
// segmentSeconds each, written to outDir. Segment paths are returned in
// playback order.
func (t *Tool) SegmentAudio(ctx context.Context, input, outDir string, segmentSeconds int) ([]string, error) {
	if segmentSeconds <= 0 {
		segmentSeconds = DefaultSegmentSeconds
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create segment dir: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	listPath := filepath.Join(outDir, base+".segments.txt")
	pattern := filepath.Join(outDir, base+"_%03d.wav")

	err := t.run(ctx, "segment",
		"-i", input,
		"-vn",
		"-c:a", "pcm_s16le",
		"-f", "segment",
		"-segment_time", strconv.Itoa(segmentSeconds),
		"-segment_list", listPath,
		pattern,
	)
	if err != nil {
		return nil, err
	}
	defer os.Remove(listPath)
	return readSegmentList(listPath, outDir)
}

// Concat joins inputs, in order, into output using the concat demuxer.
// Streams are copied when the output is WAV and re-encoded otherwise.
func (t *Tool) Concat(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return errors.New("ffmpeg concat: no inputs")
	}
	list, err := os.CreateTemp(filepath.Dir(output), ".concat-*.txt")
	if err != nil {
		return fmt.Errorf("ffmpeg concat list: %w", err)
	}
	defer os.Remove(list.Name())
	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			list.Close()
			return fmt.Errorf("ffmpeg concat list: %w", err)
		}
		fmt.Fprintf(list, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	if err := list.Close(); err != nil {
		return fmt.Errorf("ffmpeg concat list: %w", err)
	}

	args := []string{"-f", "concat", "-safe", "0", "-i", list.Name()}
	if isWAV(output) {
		args = append(args, "-c", "copy")
	}
	args = append(args, output)
	return t.run(ctx, "concat", args...)
}

func (t *Tool) run(ctx context.Context, operation string, args ...string) error {
	binary := strings.TrimSpace(t.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	full := append([]string{"-hide_banner", "-nostdin", "-loglevel", "error", "-y"}, args...)
	t.logger().Debug("running ffmpeg",
		logging.String("operation", operation),
		logging.String("argv", strings.Join(full, " ")))

	cmd := exec.CommandContext(ctx, binary, full...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg %s: %w: %s", operation, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func (t *Tool) logger() *slog.Logger {
	if t.Logger == nil {
		return logging.NewNop()
	}
	return t.Logger
}

func readSegmentList(listPath, outDir string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("read segment list: %w", err)
	}
	defer file.Close()

	var segments []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		if !filepath.IsAbs(name) {
			name = filepath.Join(outDir, name)
		}
		segments = append(segments, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read segment list: %w", err)
	}
	if len(segments) == 0 {
		return nil, errors.New("ffmpeg segment: no segments produced")
	}
	return segments, nil
}

func isWAV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".wav")
}
