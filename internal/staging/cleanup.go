package staging

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"autocut/internal/logging"
)

// CleanStaleResult lists what a cleanup pass removed and what it could not.
type CleanStaleResult struct {
	Removed  []string
	Failures []RemoveFailure
}

// RemoveFailure is a run directory that could not be removed.
type RemoveFailure struct {
	Path string
	Err  error
}

func (f RemoveFailure) Error() string { return f.Path + ": " + f.Err.Error() }

func (f RemoveFailure) Unwrap() error { return f.Err }

// CleanStale removes run directories under workDir whose modification time
// is older than maxAge. A zero maxAge removes every run directory. Entries
// without the run prefix are never touched.
func CleanStale(workDir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	var result CleanStaleResult
	logger = logging.NewComponentLogger(logger, "staging")

	dirs, err := ListDirectories(workDir)
	if err != nil {
		result.Failures = append(result.Failures, RemoveFailure{Path: workDir, Err: err})
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, dir := range dirs {
		if maxAge > 0 && !dir.ModTime.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(dir.Path); err != nil {
			result.Failures = append(result.Failures, RemoveFailure{Path: dir.Path, Err: err})
			logging.WarnWithContext(logger, "failed to remove stale run directory", "staging_cleanup_failed",
				logging.String("work_dir", dir.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check work_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"))
			continue
		}
		result.Removed = append(result.Removed, dir.Path)
		logger.Info("removed stale run directory",
			logging.String("work_dir", dir.Path),
			logging.Duration("age", time.Since(dir.ModTime)),
			logging.Int64("size_bytes", dir.Size),
			logging.String(logging.FieldEventType, "staging_cleanup"))
	}
	return result
}

// DirInfo describes one run directory.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// ListDirectories returns the run directories in workDir, oldest first.
// A missing workDir is not an error.
func ListDirectories(workDir string) ([]DirInfo, error) {
	workDir = strings.TrimSpace(workDir)
	if workDir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(workDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), RunDirPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(workDir, entry.Name())
		dirs = append(dirs, DirInfo{Name: entry.Name(), Path: path, ModTime: info.ModTime(), Size: treeSize(path)})
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].ModTime.Before(dirs[j].ModTime) })
	return dirs, nil
}

// treeSize sums regular file sizes under root, skipping unreadable entries.
func treeSize(root string) int64 {
	var size int64
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
		}
		return nil
	})
	return size
}
