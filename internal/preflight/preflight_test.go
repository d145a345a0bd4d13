package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autocut/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckSampleFiles(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "intro.wav")
	if err := os.WriteFile(present, make([]byte, 1024), 0o644); err != nil {
		t.Fatal(err)
	}
	results := CheckSampleFiles(map[string]string{
		"overture": filepath.Join(dir, "missing.wav"),
		"intro":    present,
	})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "Sample intro" || !results[0].Passed || !strings.Contains(results[0].Detail, "1.0 KiB") {
		t.Fatalf("unexpected intro result %#v", results[0])
	}
	if results[1].Passed {
		t.Fatalf("expected missing overture to fail: %#v", results[1])
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.WorkDir = t.TempDir()
	cfg.Paths.CacheDir = t.TempDir()
	cfg.Paths.LogDir = ""
	cfg.Samples.Files = map[string]string{}
	return &cfg
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}

func TestRunAll_DirBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Backend = "dir"

	results := RunAll(context.Background(), cfg)
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %#v", failed)
	}
	if last := results[len(results)-1]; last.Name != "Cache" || !strings.Contains(last.Detail, "read/write ok") {
		t.Fatalf("unexpected cache result %#v", last)
	}
}

func TestCheckCache_Disabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Backend = "none"
	if result := CheckCache(context.Background(), cfg); !result.Passed || result.Detail != "Disabled" {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestCheckCache_SQLite(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Backend = "sqlite"
	if result := CheckCache(context.Background(), cfg); !result.Passed {
		t.Fatalf("expected sqlite probe to pass: %s", result.Detail)
	}
}
