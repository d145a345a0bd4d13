package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// stubFFmpeg records its argv to argsPath and runs extra shell afterwards.
func stubFFmpeg(t *testing.T, extra string) (binary, argsPath string) {
	t.Helper()
	dir := t.TempDir()
	argsPath = filepath.Join(dir, "args.txt")
	binary = filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > '" + argsPath + "'\n" + extra
	if err := os.WriteFile(binary, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return binary, argsPath
}

func readArgs(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestConvertForcesPCMForWAV(t *testing.T) {
	binary, argsPath := stubFFmpeg(t, "")
	tool := New(binary, nil)
	if err := tool.Convert(context.Background(), "in.mp3", "out.wav"); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	args := readArgs(t, argsPath)
	want := []string{"-hide_banner", "-nostdin", "-loglevel", "error", "-y", "-i", "in.mp3", "-vn", "-c:a", "pcm_s16le", "out.wav"}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("args = %q, want %q", args, want)
	}
}

func TestSegmentAudioReadsSegmentList(t *testing.T) {
	extra := `prev=""
for arg in "$@"; do
  if [ "$prev" = "-segment_list" ]; then list="$arg"; fi
  prev="$arg"
done
printf 'vod_000.wav\nvod_001.wav\n' > "$list"
`
	binary, argsPath := stubFFmpeg(t, extra)
	outDir := filepath.Join(t.TempDir(), "segments")

	segments, err := New(binary, nil).SegmentAudio(context.Background(), "/videos/vod.mp4", outDir, 0)
	if err != nil {
		t.Fatalf("SegmentAudio returned error: %v", err)
	}
	want := []string{filepath.Join(outDir, "vod_000.wav"), filepath.Join(outDir, "vod_001.wav")}
	if !reflect.DeepEqual(segments, want) {
		t.Fatalf("segments = %v, want %v", segments, want)
	}
	args := strings.Join(readArgs(t, argsPath), " ")
	if !strings.Contains(args, "-segment_time 1800") {
		t.Fatalf("expected default segment time, got %q", args)
	}
	if _, err := os.Stat(filepath.Join(outDir, "vod.segments.txt")); !os.IsNotExist(err) {
		t.Fatalf("segment list should be removed, stat err = %v", err)
	}
}

func TestConcatWritesListAndCopiesWAV(t *testing.T) {
	extra := `prev=""
for arg in "$@"; do
  if [ "$prev" = "-i" ]; then cp "$arg" "$(dirname "$arg")/list-copy.txt"; fi
  prev="$arg"
done
`
	binary, argsPath := stubFFmpeg(t, extra)
	outDir := t.TempDir()
	output := filepath.Join(outDir, "episode.wav")
	inputs := []string{"/tmp/a part.wav", "/tmp/it's.wav"}

	if err := New(binary, nil).Concat(context.Background(), inputs, output); err != nil {
		t.Fatalf("Concat returned error: %v", err)
	}
	args := readArgs(t, argsPath)
	if args[len(args)-1] != output || args[len(args)-2] != "copy" {
		t.Fatalf("expected stream copy into output, got %q", args)
	}
	list, err := os.ReadFile(filepath.Join(outDir, "list-copy.txt"))
	if err != nil {
		t.Fatalf("read copied list: %v", err)
	}
	want := "file '/tmp/a part.wav'\nfile '/tmp/it'\\''s.wav'\n"
	if string(list) != want {
		t.Fatalf("concat list = %q, want %q", list, want)
	}
	matches, _ := filepath.Glob(filepath.Join(outDir, ".concat-*.txt"))
	if len(matches) != 0 {
		t.Fatalf("concat list not cleaned up: %v", matches)
	}
}

func TestConcatReencodesNonWAV(t *testing.T) {
	binary, argsPath := stubFFmpeg(t, "")
	output := filepath.Join(t.TempDir(), "episode.m4a")
	if err := New(binary, nil).Concat(context.Background(), []string{"/tmp/a.wav"}, output); err != nil {
		t.Fatalf("Concat returned error: %v", err)
	}
	if strings.Contains(strings.Join(readArgs(t, argsPath), " "), "-c copy") {
		t.Fatal("non-WAV output should not stream copy")
	}
}

func TestRunSurfacesStderr(t *testing.T) {
	binary, _ := stubFFmpeg(t, "echo 'Invalid data found when processing input' >&2\nexit 1\n")
	err := New(binary, nil).Convert(context.Background(), "bad.mp4", "out.wav")
	if err == nil || !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}
