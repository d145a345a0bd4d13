package fingerprint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"autocut/internal/faults"
	"autocut/internal/logging"
	"autocut/internal/media/ffprobe"
)

// Result is the full fingerprint of one audio file plus the metadata needed
// to map fingerprint indices back to PCM frames.
type Result struct {
	Codes      []Code
	Duration   float64
	SampleRate int
	Channels   int
}

// Rate returns fingerprint codes per second of audio.
func (r Result) Rate() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(len(r.Codes)) / r.Duration
}

// Fingerprinter computes the full fingerprint of an audio file. Implementations
// must be deterministic for a given file.
type Fingerprinter interface {
	FingerprintFile(ctx context.Context, path string) (Result, error)
}

// Fpcalc fingerprints files with chromaprint's fpcalc and reads stream
// metadata with ffprobe.
type Fpcalc struct {
	Binary        string
	FFprobeBinary string
	Logger        *slog.Logger
}

// NewFpcalc returns an adapter using the given binaries (defaults when empty).
func NewFpcalc(fpcalcBinary, ffprobeBinary string, logger *slog.Logger) *Fpcalc {
	return &Fpcalc{
		Binary:        fpcalcBinary,
		FFprobeBinary: ffprobeBinary,
		Logger:        logging.NewComponentLogger(logger, "fingerprint"),
	}
}

type fpcalcOutput struct {
	Duration    float64 `json:"duration"`
	Fingerprint []int64 `json:"fingerprint"`
}

// FingerprintFile implements Fingerprinter.
func (f *Fpcalc) FingerprintFile(ctx context.Context, path string) (Result, error) {
	probe, err := ffprobe.Inspect(ctx, f.FFprobeBinary, path)
	if err != nil {
		return Result{}, faults.Wrap(faults.ErrExternalTool, "fingerprint", "probe", path, err)
	}
	stream, err := probe.AudioStream()
	if err != nil {
		return Result{}, faults.Wrap(faults.ErrExternalTool, "fingerprint", "probe", path, err)
	}

	out, err := f.run(ctx, path)
	if err != nil {
		return Result{}, faults.Wrap(faults.ErrExternalTool, "fingerprint", "fpcalc", path, err)
	}

	result := Result{
		Codes:      out.codes(),
		Duration:   probe.DurationSeconds(),
		SampleRate: stream.SampleRateHz(),
		Channels:   stream.Channels,
	}
	if result.Duration <= 0 {
		result.Duration = out.Duration
	}
	if result.SampleRate <= 0 || result.Channels <= 0 {
		return Result{}, faults.Wrap(faults.ErrExternalTool, "fingerprint", "probe", path,
			fmt.Errorf("missing sample rate or channels (rate=%d channels=%d)", result.SampleRate, result.Channels))
	}

	f.logger().Debug("fingerprinted audio file",
		logging.String("input_path", path),
		logging.Int("codes", len(result.Codes)),
		logging.Float64("duration_seconds", result.Duration),
		logging.Int("sample_rate", result.SampleRate),
		logging.Int("channels", result.Channels),
		logging.Int("audio_streams", probe.AudioStreamCount()),
		logging.Int64("size_bytes", probe.SizeBytes()))
	return result, nil
}

func (f *Fpcalc) run(ctx context.Context, path string) (fpcalcOutput, error) {
	binary := strings.TrimSpace(f.Binary)
	if binary == "" {
		binary = "fpcalc"
	}
	// -length 0 fingerprints the whole file instead of the first two minutes.
	cmd := exec.CommandContext(ctx, binary, "-raw", "-json", "-length", "0", path) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return fpcalcOutput{}, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return parseFpcalc(output)
}

func parseFpcalc(data []byte) (fpcalcOutput, error) {
	var out fpcalcOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return fpcalcOutput{}, fmt.Errorf("parse fpcalc output: %w", err)
	}
	if len(out.Fingerprint) == 0 {
		return fpcalcOutput{}, errors.New("fpcalc: fingerprint missing")
	}
	return out, nil
}

// codes narrows fpcalc's raw integers to 32-bit codes. Depending on the
// chromaprint version raw values are printed signed or unsigned.
func (o fpcalcOutput) codes() []Code {
	codes := make([]Code, len(o.Fingerprint))
	for i, v := range o.Fingerprint {
		codes[i] = Code(uint32(v))
	}
	return codes
}

func (f *Fpcalc) logger() *slog.Logger {
	if f.Logger == nil {
		return logging.NewNop()
	}
	return f.Logger
}
