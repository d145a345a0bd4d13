package timeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"autocut/internal/cache"
	"autocut/internal/fingerprint"
	"autocut/internal/logging"
)

// Loader builds timelines, consulting a cache keyed by CacheKey.
type Loader struct {
	Store         cache.Store
	Fingerprinter fingerprint.Fingerprinter
	Workers       int
	Logger        *slog.Logger
}

type snapshot struct {
	Codes      []fingerprint.Code `json:"codes"`
	Duration   float64            `json:"duration"`
	SampleRate int                `json:"sample_rate"`
	Channels   int                `json:"channels"`
}

// CacheKey derives the cache key for an ordered list of inputs from their
// base names and, for files that can be read, their sizes. Sizes keep two
// inputs that share a name apart; modification times are left out because
// converted inputs are rewritten on every run.
func CacheKey(files []string) string {
	parts := make([]string, len(files))
	for i, file := range files {
		parts[i] = filepath.Base(file)
		if info, err := os.Stat(file); err == nil && info.Mode().IsRegular() {
			parts[i] += ":" + strconv.FormatInt(info.Size(), 10)
		}
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "/")))
	return "timeline/" + hex.EncodeToString(sum[:])
}

// Load returns the cached timeline for files when present and decodable,
// otherwise builds it and stores it. Cache failures only produce warnings.
func (l *Loader) Load(ctx context.Context, files []string) (*Timeline, error) {
	logger := logging.NewComponentLogger(l.Logger, "timeline")
	key := CacheKey(files)

	if l.Store != nil {
		var cached snapshot
		err := cache.GetJSON(ctx, l.Store, key, &cached)
		if err == nil {
			tl, buildErr := New(cached.Codes, cached.Duration, cached.SampleRate, cached.Channels)
			if buildErr == nil {
				logger.Info("fingerprints loaded from cache",
					logging.Bool("cache_hit", true),
					logging.String("cache_key", key),
					logging.Int("codes", tl.Len()))
				return tl, nil
			}
			err = buildErr
		}
		if !errors.Is(err, cache.ErrNotFound) {
			logging.WarnWithContext(logger, "cached fingerprints unusable", "timeline_cache_read_failed",
				logging.Error(err),
				logging.String("cache_key", key),
				logging.String(logging.FieldErrorHint, "inputs will be fingerprinted again"),
				logging.String(logging.FieldImpact, "slower run"))
		}
	}

	logger.Info("fingerprinting inputs", logging.Int("inputs", len(files)))
	tl, err := Build(ctx, l.Fingerprinter, files, l.Workers)
	if err != nil {
		return nil, err
	}
	logger.Info("fingerprinting complete",
		logging.Int("codes", tl.Len()),
		logging.Float64("duration_seconds", tl.Duration()))

	if l.Store != nil {
		if err := cache.PutJSON(ctx, l.Store, key, snapshot{
			Codes:      tl.codes,
			Duration:   tl.duration,
			SampleRate: tl.sampleRate,
			Channels:   tl.channels,
		}); err != nil {
			logging.WarnWithContext(logger, "failed to cache fingerprints", "timeline_cache_write_failed",
				logging.Error(err),
				logging.String("cache_key", key),
				logging.String(logging.FieldErrorHint, "check cache backend settings"),
				logging.String(logging.FieldImpact, "the next run fingerprints these inputs again"))
		}
	}
	return tl, nil
}
