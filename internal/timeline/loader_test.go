package timeline_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"autocut/internal/cache"
	"autocut/internal/fingerprint"
	"autocut/internal/timeline"
)

func TestCacheKeyUsesBaseNames(t *testing.T) {
	a := timeline.CacheKey([]string{"/x/ep01.wav", "/x/ep02.wav"})
	b := timeline.CacheKey([]string{"/y/ep01.wav", "/y/ep02.wav"})
	c := timeline.CacheKey([]string{"/x/ep02.wav", "/x/ep01.wav"})
	if a != b {
		t.Fatalf("directory should not affect the key: %s vs %s", a, b)
	}
	if a == c {
		t.Fatal("order should affect the key")
	}
	if err := cache.ValidateKey(a); err != nil {
		t.Fatalf("key not valid for cache: %v", err)
	}
}

func TestCacheKeySeparatesSameNameBySize(t *testing.T) {
	write := func(dir string, size int) string {
		t.Helper()
		path := filepath.Join(dir, "video_000.wav")
		if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		return path
	}
	first := write(t.TempDir(), 1024)
	sameSize := write(t.TempDir(), 1024)
	otherSize := write(t.TempDir(), 2048)

	if timeline.CacheKey([]string{first}) != timeline.CacheKey([]string{sameSize}) {
		t.Fatal("identical name and size should share a key")
	}
	if timeline.CacheKey([]string{first}) == timeline.CacheKey([]string{otherSize}) {
		t.Fatal("different sizes under one name should not share a key")
	}
}

func TestLoaderCachesTimeline(t *testing.T) {
	ctx := context.Background()
	store, err := cache.OpenSQLite(ctx, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer store.Close()

	fp := &stubFingerprinter{results: map[string]fingerprint.Result{
		"a.wav": {Codes: seq(0xFFFFFFF0, 12), Duration: 1.5, SampleRate: 44100, Channels: 2},
		"b.wav": {Codes: seq(7, 16), Duration: 2, SampleRate: 44100, Channels: 2},
	}}
	loader := &timeline.Loader{Store: store, Fingerprinter: fp, Workers: 2}
	files := []string{"a.wav", "b.wav"}

	first, err := loader.Load(ctx, files)
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}
	second, err := loader.Load(ctx, files)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if fp.calls.Load() != 2 {
		t.Fatalf("expected one fingerprint call per file, got %d", fp.calls.Load())
	}
	if second.Rate() != first.Rate() || second.Duration() != first.Duration() {
		t.Fatalf("cached rate/duration %v/%v, want %v/%v", second.Rate(), second.Duration(), first.Rate(), first.Duration())
	}
	if second.SampleRate() != 44100 || second.Channels() != 2 {
		t.Fatalf("cached format %d Hz x%d", second.SampleRate(), second.Channels())
	}
	if got, want := allCodes(second), allCodes(first); !reflect.DeepEqual(got, want) {
		t.Fatalf("cached codes differ:\n got %v\nwant %v", got, want)
	}
	if want := append(seq(0xFFFFFFF0, 12), seq(7, 16)...); !reflect.DeepEqual(allCodes(first), want) {
		t.Fatalf("codes out of input order: %v", allCodes(first))
	}
}

func allCodes(tl *timeline.Timeline) []fingerprint.Code {
	var codes []fingerprint.Code
	for _, window := range tl.Windows(tl.Len()) {
		codes = append(codes, window...)
	}
	return codes
}

func TestLoaderRebuildsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	store, err := cache.OpenDir(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	files := []string{"b.wav"}
	if err := store.Put(ctx, timeline.CacheKey(files), []byte(`{"codes":[1],"duration":0}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	fp := &stubFingerprinter{results: map[string]fingerprint.Result{
		"b.wav": {Codes: seq(0, 4), Duration: 1, SampleRate: 8000, Channels: 1},
	}}
	tl, err := (&timeline.Loader{Store: store, Fingerprinter: fp}).Load(ctx, files)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tl.Len() != 4 || fp.calls.Load() != 1 {
		t.Fatalf("expected rebuild, len=%d calls=%d", tl.Len(), fp.calls.Load())
	}
}
