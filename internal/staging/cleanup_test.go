package staging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"autocut/internal/logging"
)

func makeDir(t *testing.T, path string, age time.Duration) {
	t.Helper()
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("create dir: %v", err)
	}
	if age > 0 {
		stamp := time.Now().Add(-age)
		if err := os.Chtimes(path, stamp, stamp); err != nil {
			t.Fatalf("set time: %v", err)
		}
	}
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Failures) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOldRunDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	oldRun := filepath.Join(tmpDir, RunDirPrefix+"old")
	recentRun := filepath.Join(tmpDir, RunDirPrefix+"recent")
	oldOther := filepath.Join(tmpDir, "keepme")
	makeDir(t, oldRun, 2*time.Hour)
	makeDir(t, recentRun, 0)
	makeDir(t, oldOther, 2*time.Hour)

	result := CleanStale(tmpDir, time.Hour, logging.NewNop())

	if len(result.Removed) != 1 || result.Removed[0] != oldRun {
		t.Fatalf("removed = %v, want [%s]", result.Removed, oldRun)
	}
	for _, path := range []string{recentRun, oldOther} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s should still exist", path)
		}
	}
}

func TestCleanStaleIgnoresFiles(t *testing.T) {
	tmpDir := t.TempDir()
	oldFile := filepath.Join(tmpDir, RunDirPrefix+"file.txt")
	if err := os.WriteFile(oldFile, []byte("test"), 0o644); err != nil {
		t.Fatalf("create file: %v", err)
	}
	oldTime := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(oldFile, oldTime, oldTime); err != nil {
		t.Fatalf("set old time: %v", err)
	}

	result := CleanStale(tmpDir, time.Hour, logging.NewNop())
	if len(result.Removed) != 0 {
		t.Errorf("expected no removals for files, got %d", len(result.Removed))
	}
}

func TestListDirectoriesReportsSize(t *testing.T) {
	tmpDir := t.TempDir()
	run := filepath.Join(tmpDir, RunDirPrefix+"a")
	makeDir(t, run, 0)
	if err := os.WriteFile(filepath.Join(run, "part.wav"), make([]byte, 2048), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	dirs, err := ListDirectories(tmpDir)
	if err != nil {
		t.Fatalf("ListDirectories: %v", err)
	}
	if len(dirs) != 1 || dirs[0].Size != 2048 {
		t.Fatalf("dirs = %+v", dirs)
	}
}

func TestCleanStaleZeroAgeRemovesEveryRun(t *testing.T) {
	tmpDir := t.TempDir()
	newer := filepath.Join(tmpDir, RunDirPrefix+"b")
	older := filepath.Join(tmpDir, RunDirPrefix+"a")
	makeDir(t, newer, time.Minute)
	makeDir(t, older, time.Hour)

	result := CleanStale(tmpDir, 0, nil)
	if len(result.Removed) != 2 || result.Removed[0] != older {
		t.Fatalf("removed = %v, want oldest first", result.Removed)
	}
}

func TestAcquireRelease(t *testing.T) {
	base := t.TempDir()
	dir, release, err := Acquire(base, false, nil)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(dir), RunDirPrefix) || filepath.Dir(dir) != base {
		t.Fatalf("unexpected run dir %s", dir)
	}
	other, releaseOther, err := Acquire(base, false, nil)
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	defer releaseOther()
	if other == dir {
		t.Fatal("run directories must be unique")
	}

	release()
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("run dir not removed: %v", err)
	}
}

func TestAcquireKeep(t *testing.T) {
	dir, release, err := Acquire(t.TempDir(), true, nil)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	release()
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("kept run dir missing: %v", err)
	}
}
