package samples_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"autocut/internal/cache"
	"autocut/internal/fingerprint"
	"autocut/internal/samples"
	"autocut/internal/staging"
)

// copyConverter copies the source bytes to the output path.
type copyConverter struct{}

func (copyConverter) Convert(_ context.Context, input, output string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	return os.WriteFile(output, data, 0o644)
}

// contentFingerprinter maps a file's content to a fixed code sequence.
type contentFingerprinter struct {
	mu    sync.Mutex
	calls int
	codes map[string][]fingerprint.Code
}

func (f *contentFingerprinter) FingerprintFile(_ context.Context, path string) (fingerprint.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	data, err := os.ReadFile(path)
	if err != nil {
		return fingerprint.Result{}, err
	}
	codes, ok := f.codes[string(data)]
	if !ok {
		return fingerprint.Result{}, fmt.Errorf("unknown content %q", data)
	}
	return fingerprint.Result{Codes: codes, Duration: float64(len(codes)) / 8, SampleRate: 44100, Channels: 2}, nil
}

func writeSources(t *testing.T, names ...string) map[string]string {
	t.Helper()
	dir := t.TempDir()
	files := make(map[string]string, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name+".mp3")
		if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
			t.Fatalf("write source: %v", err)
		}
		files[name] = path
	}
	return files
}

func newLoader(t *testing.T, store cache.Store, fp *contentFingerprinter, files map[string]string) *samples.Loader {
	t.Helper()
	return &samples.Loader{
		Store:         store,
		Files:         files,
		Mask:          samples.DefaultMask,
		Fingerprinter: fp,
		Converter:     copyConverter{},
		WorkDir:       t.TempDir(),
		Workers:       2,
	}
}

func TestLoaderRegeneratesThenUsesCache(t *testing.T) {
	ctx := context.Background()
	store, err := cache.OpenDir(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	fp := &contentFingerprinter{codes: map[string][]fingerprint.Code{
		"overture": randomCodes(11, 40),
		"intro":    randomCodes(12, 30),
	}}
	files := writeSources(t, "overture", "intro")

	lib, err := newLoader(t, store, fp, files).Load(ctx)
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}
	if lib.Len() != 2 || fp.calls != 2 {
		t.Fatalf("expected 2 samples from 2 fingerprints, got %d samples, %d calls", lib.Len(), fp.calls)
	}

	lib, err = newLoader(t, store, fp, files).Load(ctx)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if fp.calls != 2 {
		t.Fatalf("expected cached bundle to be used, fingerprint calls = %d", fp.calls)
	}
	intro, ok := lib.Get("intro")
	if !ok || intro.Len() != 30 {
		t.Fatalf("cached intro sample wrong: %v %v", ok, intro)
	}
}

func TestLoaderRegeneratesOnMaskChangeOrNewSample(t *testing.T) {
	ctx := context.Background()
	store, err := cache.OpenDir(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	fp := &contentFingerprinter{codes: map[string][]fingerprint.Code{
		"overture": randomCodes(13, 40),
		"sting":    randomCodes(14, 20),
	}}
	files := writeSources(t, "overture", "sting")

	if _, err := newLoader(t, store, fp, map[string]string{"overture": files["overture"]}).Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if fp.calls != 1 {
		t.Fatalf("calls = %d, want 1", fp.calls)
	}

	if _, err := newLoader(t, store, fp, files).Load(ctx); err != nil {
		t.Fatalf("Load with new sample: %v", err)
	}
	if fp.calls != 3 {
		t.Fatalf("expected regeneration of both samples, calls = %d", fp.calls)
	}

	loader := newLoader(t, store, fp, files)
	loader.Mask = 0xFFFF0000
	lib, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("Load with new mask: %v", err)
	}
	if fp.calls != 5 {
		t.Fatalf("expected regeneration after mask change, calls = %d", fp.calls)
	}
	sting, _ := lib.Get("sting")
	if sting.Mask() != 0xFFFF0000 {
		t.Fatalf("mask = %#x", sting.Mask())
	}
}

func TestLoaderFallsBackOnCorruptBundle(t *testing.T) {
	ctx := context.Background()
	store, err := cache.OpenDir(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	if err := store.Put(ctx, samples.DefaultBundleKey, []byte("not json")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	fp := &contentFingerprinter{codes: map[string][]fingerprint.Code{"intro": randomCodes(15, 10)}}
	lib, err := newLoader(t, store, fp, writeSources(t, "intro")).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if lib.Len() != 1 {
		t.Fatalf("Len = %d", lib.Len())
	}
}

func TestLoaderMissingSourceIsFatal(t *testing.T) {
	fp := &contentFingerprinter{codes: map[string][]fingerprint.Code{}}
	files := map[string]string{"intro": filepath.Join(t.TempDir(), "missing.mp3")}
	_, err := newLoader(t, cache.None{}, fp, files).Load(context.Background())
	if err == nil {
		t.Fatal("expected error for missing source audio")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist cause, got %v", err)
	}
}

func TestLoaderRebuildIgnoresCachedBundle(t *testing.T) {
	ctx := context.Background()
	store, err := cache.OpenDir(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	fp := &contentFingerprinter{codes: map[string][]fingerprint.Code{"intro": randomCodes(21, 30)}}
	files := writeSources(t, "intro")

	if _, err := newLoader(t, store, fp, files).Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	fp.codes["intro"] = randomCodes(22, 25)
	if _, err := newLoader(t, store, fp, files).Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if fp.calls != 2 {
		t.Fatalf("expected Rebuild to fingerprint again, calls = %d", fp.calls)
	}

	lib, err := newLoader(t, store, fp, files).Load(ctx)
	if err != nil {
		t.Fatalf("Load after rebuild: %v", err)
	}
	intro, _ := lib.Get("intro")
	if fp.calls != 2 || intro.Len() != 25 {
		t.Fatalf("expected rebuilt bundle from cache, calls = %d, len = %d", fp.calls, intro.Len())
	}
}

func TestRegenerateKeepsConversionDirOnlyWhenAsked(t *testing.T) {
	fp := &contentFingerprinter{codes: map[string][]fingerprint.Code{"intro": randomCodes(15, 30)}}
	files := writeSources(t, "intro")

	for _, keep := range []bool{false, true} {
		loader := newLoader(t, nil, fp, files)
		loader.KeepWorkDir = keep
		if _, err := loader.Regenerate(context.Background()); err != nil {
			t.Fatalf("Regenerate(keep=%v): %v", keep, err)
		}
		entries, err := os.ReadDir(loader.WorkDir)
		if err != nil {
			t.Fatalf("read work dir: %v", err)
		}
		if !keep {
			if len(entries) != 0 {
				t.Fatalf("conversion dir left behind: %v", entries)
			}
			continue
		}
		if len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), staging.RunDirPrefix) {
			t.Fatalf("expected one kept run dir, got %v", entries)
		}
		kept, err := filepath.Glob(filepath.Join(loader.WorkDir, entries[0].Name(), "*.wav"))
		if err != nil || len(kept) != 1 {
			t.Fatalf("expected the converted sample in the kept dir, got %v (%v)", kept, err)
		}
	}
}
