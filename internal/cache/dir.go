package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"autocut/internal/logging"
)

// DirStore keeps one file per key below a root directory.
type DirStore struct {
	root   string
	logger *slog.Logger
}

// OpenDir creates root if needed and returns a file-backed store.
func OpenDir(root string, logger *slog.Logger) (*DirStore, error) {
	if root == "" {
		return nil, errors.New("cache directory not configured")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &DirStore{root: root, logger: logger}, nil
}

func (s *DirStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Get reads the file for key.
func (s *DirStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	return data, nil
}

// Put writes value atomically while holding the key's lock file.
func (s *DirStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	target := s.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	lock := flock.New(target + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock cache entry: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock cache entry %s: not acquired", key)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	s.logger.Debug("cache entry written", logging.String("cache_key", key), logging.Int("size_bytes", len(value)))
	return nil
}

// Delete removes the file for key. Missing entries are not an error.
func (s *DirStore) Delete(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cache file: %w", err)
	}
	_ = os.Remove(s.path(key) + ".lock")
	return nil
}

func (s *DirStore) Close() error { return nil }
