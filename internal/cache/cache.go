package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"autocut/internal/logging"
)

// ErrNotFound is returned by Get when the key has no stored value.
var ErrNotFound = errors.New("cache entry not found")

// Backend names accepted by Open.
const (
	BackendDir    = "dir"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendS3     = "s3"
	BackendNone   = "none"
)

// Store is a key/value blob store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// S3Options configures the S3 backend.
type S3Options struct {
	Bucket          string
	Region          string
	Prefix          string
	Endpoint        string
	UsePathStyle    bool
	AccessKeyID     string
	SecretAccessKey string
}

// Options selects and configures a backend.
type Options struct {
	Backend string
	Dir     string
	S3      S3Options
	Logger  *slog.Logger
}

// Open constructs the configured backend. An empty backend name opens the
// no-op store.
func Open(ctx context.Context, opts Options) (Store, error) {
	logger := logging.NewComponentLogger(opts.Logger, "cache")
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	var (
		store Store
		err   error
	)
	switch backend {
	case "", BackendNone:
		return None{}, nil
	case BackendDir:
		store, err = OpenDir(opts.Dir, logger)
	case BackendSQLite:
		store, err = OpenSQLite(ctx, opts.Dir, logger)
	case BackendBadger:
		store, err = OpenBadger(opts.Dir, logger)
	case BackendS3:
		store, err = OpenS3(ctx, opts.S3, logger)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", backend, err)
	}
	logger.Debug("cache opened", logging.String("cache_backend", backend), logging.String("cache_dir", opts.Dir))
	return store, nil
}

// GetJSON reads key and decodes it into dest.
func GetJSON(ctx context.Context, store Store, key string, dest any) error {
	data, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return nil
}

// PutJSON encodes value and stores it under key.
func PutJSON(ctx context.Context, store Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	return store.Put(ctx, key, data)
}

// ValidateKey rejects keys that cannot be mapped safely onto every backend.
func ValidateKey(key string) error {
	if key == "" {
		return errors.New("cache key is empty")
	}
	if strings.HasPrefix(key, "/") || strings.HasSuffix(key, "/") {
		return fmt.Errorf("cache key %q must not start or end with a slash", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("cache key %q has an empty or relative segment", key)
		}
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '/', r == '_', r == '-', r == '.':
		default:
			return fmt.Errorf("cache key %q contains %q", key, r)
		}
	}
	return nil
}

// None is a store that never holds anything.
type None struct{}

func (None) Get(context.Context, string) ([]byte, error) { return nil, ErrNotFound }

func (None) Put(context.Context, string, []byte) error { return nil }

func (None) Delete(context.Context, string) error { return nil }

func (None) Close() error { return nil }
