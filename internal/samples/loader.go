package samples

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"autocut/internal/cache"
	"autocut/internal/faults"
	"autocut/internal/fingerprint"
	"autocut/internal/logging"
	"autocut/internal/planner"
	"autocut/internal/staging"
	"autocut/internal/textutil"
)

// DefaultBundleKey is where the sample bundle is cached.
const DefaultBundleKey = "samples/bundle"

// Converter transcodes source audio to WAV.
type Converter interface {
	Convert(ctx context.Context, input, output string) error
}

// Loader builds a Library from configured source files.
type Loader struct {
	Store         cache.Store
	BundleKey     string
	Files         map[string]string
	Mask          uint32
	Fingerprinter fingerprint.Fingerprinter
	Converter     Converter
	WorkDir       string
	// KeepWorkDir leaves the conversion directory in place for inspection.
	KeepWorkDir bool
	Workers     int
	Logger      *slog.Logger
}

type bundle struct {
	Mask    uint32                        `json:"mask"`
	Samples map[string][]fingerprint.Code `json:"samples"`
}

// Load returns the library from the cached bundle when it matches the
// configured samples and mask, otherwise regenerates it from source audio and
// writes the bundle back.
func (l *Loader) Load(ctx context.Context) (*Library, error) {
	logger := logging.NewComponentLogger(l.Logger, "samples")
	if len(l.Files) == 0 {
		return nil, fmt.Errorf("%w: no sample files configured", faults.ErrConfiguration)
	}

	if lib, ok := l.loadCached(ctx, logger); ok {
		logger.Info("sample fingerprints loaded from cache",
			logging.Bool("cache_hit", true),
			logging.Int("samples", lib.Len()))
		return lib, nil
	}

	lib, err := l.Regenerate(ctx)
	if err != nil {
		return nil, err
	}
	l.storeBundle(ctx, logger, lib)
	return lib, nil
}

func (l *Loader) mask() uint32 {
	if l.Mask == 0 {
		return DefaultMask
	}
	return l.Mask
}

func (l *Loader) bundleKey() string {
	if strings.TrimSpace(l.BundleKey) == "" {
		return DefaultBundleKey
	}
	return l.BundleKey
}

func (l *Loader) loadCached(ctx context.Context, logger *slog.Logger) (*Library, bool) {
	if l.Store == nil {
		return nil, false
	}
	var cached bundle
	if err := cache.GetJSON(ctx, l.Store, l.bundleKey(), &cached); err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			logging.WarnWithContext(logger, "sample bundle unreadable", "sample_bundle_read_failed",
				logging.Error(err),
				logging.String("cache_key", l.bundleKey()),
				logging.String(logging.FieldErrorHint, "the bundle will be rebuilt from source audio"),
				logging.String(logging.FieldImpact, "sample fingerprints are regenerated"))
		}
		return nil, false
	}
	if cached.Mask != l.mask() {
		logger.Info("sample bundle built with a different mask; regenerating",
			logging.String("cached_mask", fmt.Sprintf("%#08x", cached.Mask)),
			logging.String("mask", fmt.Sprintf("%#08x", l.mask())))
		return nil, false
	}
	refs := make([]*ReferenceSample, 0, len(l.Files))
	for name := range l.Files {
		codes, ok := cached.Samples[planner.FoldName(name)]
		if !ok || len(codes) == 0 {
			logger.Info("sample bundle missing a configured sample; regenerating", logging.String("sample", name))
			return nil, false
		}
		refs = append(refs, NewReferenceSample(planner.FoldName(name), codes, cached.Mask))
	}
	return NewLibrary(refs...), true
}

func (l *Loader) storeBundle(ctx context.Context, logger *slog.Logger, lib *Library) {
	if l.Store == nil {
		return
	}
	out := bundle{Mask: l.mask(), Samples: make(map[string][]fingerprint.Code, lib.Len())}
	for _, name := range lib.Names() {
		sample, _ := lib.Get(name)
		out.Samples[name] = sample.codes
	}
	if err := cache.PutJSON(ctx, l.Store, l.bundleKey(), out); err != nil {
		logging.WarnWithContext(logger, "failed to cache sample bundle", "sample_bundle_write_failed",
			logging.Error(err),
			logging.String("cache_key", l.bundleKey()),
			logging.String(logging.FieldErrorHint, "check cache backend settings"),
			logging.String(logging.FieldImpact, "the next run regenerates sample fingerprints"))
	}
}

// Rebuild regenerates the library regardless of the cache and writes the
// fresh bundle back.
func (l *Loader) Rebuild(ctx context.Context) (*Library, error) {
	lib, err := l.Regenerate(ctx)
	if err != nil {
		return nil, err
	}
	l.storeBundle(ctx, logging.NewComponentLogger(l.Logger, "samples"), lib)
	return lib, nil
}

// Regenerate converts and fingerprints every configured sample. Distinct
// samples are processed concurrently; a missing or unreadable source file
// fails the whole load.
func (l *Loader) Regenerate(ctx context.Context) (*Library, error) {
	logger := logging.NewComponentLogger(l.Logger, "samples")
	if l.Fingerprinter == nil || l.Converter == nil {
		return nil, errors.New("sample regeneration requires a fingerprinter and a converter")
	}
	workDir := l.WorkDir
	if strings.TrimSpace(workDir) == "" {
		workDir = os.TempDir()
	}
	tmpDir, release, err := staging.Acquire(workDir, l.KeepWorkDir, logger)
	if err != nil {
		return nil, fmt.Errorf("create sample work dir: %w", err)
	}
	defer release()

	names := make([]string, 0, len(l.Files))
	for name := range l.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	logger.Info("generating sample fingerprints", logging.Int("samples", len(names)))
	refs := make([]*ReferenceSample, len(names))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(max(l.Workers, 1))
	for i, name := range names {
		source := l.Files[name]
		group.Go(func() error {
			if _, err := os.Stat(source); err != nil {
				return fmt.Errorf("%w: sample %s source audio %s: %w", faults.ErrConfiguration, name, source, err)
			}
			wavPath := filepath.Join(tmpDir, fmt.Sprintf("%02d-%s.wav", i, textutil.SanitizeToken(name)))
			if err := l.Converter.Convert(groupCtx, source, wavPath); err != nil {
				return fmt.Errorf("convert sample %s: %w", name, err)
			}
			result, err := l.Fingerprinter.FingerprintFile(groupCtx, wavPath)
			if err != nil {
				return fmt.Errorf("fingerprint sample %s: %w", name, err)
			}
			if len(result.Codes) == 0 {
				return fmt.Errorf("%w: sample %s produced an empty fingerprint", faults.ErrExternalTool, name)
			}
			refs[i] = NewReferenceSample(planner.FoldName(name), result.Codes, l.mask())
			logger.Debug("sample fingerprinted",
				logging.String("sample", name),
				logging.Int("codes", len(result.Codes)),
				logging.Float64("duration_seconds", result.Duration))
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return NewLibrary(refs...), nil
}
