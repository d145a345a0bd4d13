package staging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"autocut/internal/logging"
)

// RunDirPrefix marks directories created by Acquire.
const RunDirPrefix = "run-"

// Acquire creates a unique work directory under baseDir. The returned
// release func removes it; with keep set the directory is left in place and
// its path logged instead.
func Acquire(baseDir string, keep bool, logger *slog.Logger) (string, func(), error) {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		return "", nil, fmt.Errorf("work directory not configured")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create work directory: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	dir := filepath.Join(baseDir, RunDirPrefix+uuid.NewString())
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create run directory: %w", err)
	}

	release := func() {
		if keep {
			logger.Info("keeping work directory", logging.String("work_dir", dir), logging.String("kept", dir))
			return
		}
		if err := os.RemoveAll(dir); err != nil {
			logging.WarnWithContext(logger, "failed to remove work directory", "staging_cleanup_failed",
				logging.String("work_dir", dir),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run autocut clean or remove it manually"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"))
		}
	}
	return dir, release, nil
}
