package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Number is a numeric field that ffprobe may emit as a quoted string or
// "N/A". Missing or unparseable values decode to 0.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(bytes.Trim(data, `"`)))
	if raw == "" || raw == "null" || strings.EqualFold(raw, "N/A") {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		*n = 0
		return nil
	}
	*n = Number(v)
	return nil
}

// Result is the subset of ffprobe output the fingerprint adapter reads.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes one stream in the container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   Number `json:"duration"`
	SampleRate Number `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Format holds container-level metadata.
type Format struct {
	Filename   string `json:"filename"`
	Duration   Number `json:"duration"`
	Size       Number `json:"size"`
	FormatName string `json:"format_name"`
}

// ErrNoAudioStream is returned when a file carries no audio stream.
var ErrNoAudioStream = errors.New("ffprobe: no audio stream")

// Inspect runs binary (default "ffprobe") against path.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	args := []string{"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}
	return Parse(output)
}

// Parse decodes raw ffprobe JSON.
func Parse(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

func (s Stream) isAudio() bool { return strings.EqualFold(s.CodecType, "audio") }

// AudioStream returns the first audio stream.
func (r Result) AudioStream() (Stream, error) {
	for _, stream := range r.Streams {
		if stream.isAudio() {
			return stream, nil
		}
	}
	return Stream{}, ErrNoAudioStream
}

// AudioStreamCount returns the number of audio streams.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if stream.isAudio() {
			count++
		}
	}
	return count
}

// SampleRateHz returns the stream sample rate, or 0 when unknown.
func (s Stream) SampleRateHz() int { return int(s.SampleRate) }

// DurationSeconds prefers the container duration and falls back to the
// first audio stream. Returns 0 when neither is known.
func (r Result) DurationSeconds() float64 {
	if r.Format.Duration > 0 {
		return float64(r.Format.Duration)
	}
	if stream, err := r.AudioStream(); err == nil {
		return float64(stream.Duration)
	}
	return 0
}

// SizeBytes returns the container size, or 0 when unknown.
func (r Result) SizeBytes() int64 { return int64(r.Format.Size) }
