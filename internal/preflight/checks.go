package preflight

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"autocut/internal/cache"
	"autocut/internal/config"
	"autocut/internal/deps"
)

const cacheProbeKey = "preflight/probe"

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSampleFiles verifies that every configured sample source is a
// readable file. Results are ordered by sample name.
func CheckSampleFiles(files map[string]string) []Result {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]Result, 0, len(names))
	for _, name := range names {
		path := files[name]
		label := "Sample " + name
		info, err := os.Stat(path)
		switch {
		case err != nil:
			results = append(results, Result{Name: label, Detail: fmt.Sprintf("%s (error: %v)", path, err)})
		case info.IsDir():
			results = append(results, Result{Name: label, Detail: fmt.Sprintf("%s (error: is a directory)", path)})
		case unix.Access(path, unix.R_OK) != nil:
			results = append(results, Result{Name: label, Detail: fmt.Sprintf("%s (error: not readable)", path)})
		default:
			results = append(results, Result{Name: label, Passed: true,
				Detail: fmt.Sprintf("%s (%s)", path, humanize.IBytes(uint64(info.Size())))})
		}
	}
	return results
}

// CheckCache opens the configured backend and round-trips a probe entry.
func CheckCache(ctx context.Context, cfg *config.Config) Result {
	const name = "Cache"
	backend := cfg.Cache.Backend
	if !cfg.Cache.Enabled || backend == cache.BackendNone || backend == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, err := cache.Open(checkCtx, CacheOptions(cfg))
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", backend, err)}
	}
	defer store.Close()

	payload := []byte(time.Now().UTC().Format(time.RFC3339Nano))
	if err := store.Put(checkCtx, cacheProbeKey, payload); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: write: %v)", backend, err)}
	}
	got, err := store.Get(checkCtx, cacheProbeKey)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: read: %v)", backend, err)}
	}
	_ = store.Delete(checkCtx, cacheProbeKey)
	if !bytes.Equal(got, payload) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: probe mismatch)", backend)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", backend)}
}

// CacheOptions maps the cache section of cfg onto cache.Options.
// A disabled cache maps to the none backend.
func CacheOptions(cfg *config.Config) cache.Options {
	backend := cfg.Cache.Backend
	if !cfg.Cache.Enabled {
		backend = cache.BackendNone
	}
	return cache.Options{
		Backend: backend,
		Dir:     cfg.Paths.CacheDir,
		S3: cache.S3Options{
			Bucket:          cfg.Cache.S3.Bucket,
			Region:          cfg.Cache.S3.Region,
			Prefix:          cfg.Cache.S3.Prefix,
			Endpoint:        cfg.Cache.S3.Endpoint,
			UsePathStyle:    cfg.Cache.S3.UsePathStyle,
			AccessKeyID:     cfg.Cache.S3.AccessKeyID,
			SecretAccessKey: cfg.Cache.S3.SecretAccessKey,
		},
	}
}

// CheckSystemDeps evaluates the external binaries named in cfg.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.ToolRequirements(cfg.Tools.FFmpeg, cfg.Tools.FFprobe, cfg.Tools.Fpcalc))
}
