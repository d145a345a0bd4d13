package fingerprint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"autocut/internal/faults"
)

const probeJSON = `{"streams":[{"index":0,"codec_type":"audio","sample_rate":"48000","channels":2}],"format":{"duration":"2.5"}}`

func writeStub(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

func TestFpcalcFingerprintFile(t *testing.T) {
	dir := t.TempDir()
	ffprobe := writeStub(t, dir, "ffprobe", "cat <<'JSON'\n"+probeJSON+"\nJSON\n")
	fpcalc := writeStub(t, dir, "fpcalc", `echo '{"duration": 2.49, "fingerprint": [1, -1, 4294967295, 16]}'`+"\n")

	fp := NewFpcalc(fpcalc, ffprobe, nil)
	result, err := fp.FingerprintFile(context.Background(), filepath.Join(dir, "in.wav"))
	if err != nil {
		t.Fatalf("FingerprintFile returned error: %v", err)
	}
	want := []Code{1, 0xFFFFFFFF, 0xFFFFFFFF, 16}
	if len(result.Codes) != len(want) {
		t.Fatalf("codes = %v, want %v", result.Codes, want)
	}
	for i := range want {
		if result.Codes[i] != want[i] {
			t.Fatalf("code %d = %#x, want %#x", i, result.Codes[i], want[i])
		}
	}
	if result.Duration != 2.5 {
		t.Fatalf("duration = %v, want ffprobe duration 2.5", result.Duration)
	}
	if result.SampleRate != 48000 || result.Channels != 2 {
		t.Fatalf("unexpected stream metadata: %+v", result)
	}
	if result.Rate() != 1.6 {
		t.Fatalf("rate = %v, want 1.6", result.Rate())
	}
}

func TestFpcalcFailureIsExternalToolError(t *testing.T) {
	dir := t.TempDir()
	ffprobe := writeStub(t, dir, "ffprobe", "cat <<'JSON'\n"+probeJSON+"\nJSON\n")
	fpcalc := writeStub(t, dir, "fpcalc", "echo 'ERROR: could not open file' >&2\nexit 2\n")

	_, err := NewFpcalc(fpcalc, ffprobe, nil).FingerprintFile(context.Background(), "missing.wav")
	if !errors.Is(err, faults.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestParseFpcalcRejectsEmptyFingerprint(t *testing.T) {
	if _, err := parseFpcalc([]byte(`{"duration": 1.0, "fingerprint": []}`)); err == nil {
		t.Fatal("expected error for empty fingerprint")
	}
	if _, err := parseFpcalc([]byte(`not json`)); err == nil {
		t.Fatal("expected error for malformed output")
	}
}

func TestResultRateZeroDuration(t *testing.T) {
	if got := (Result{Codes: []Code{1}}).Rate(); got != 0 {
		t.Fatalf("Rate = %v, want 0", got)
	}
}
