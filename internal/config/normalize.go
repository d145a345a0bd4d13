package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"autocut/internal/planner"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	if err := c.normalizeSamples(); err != nil {
		return err
	}
	c.normalizePatterns()
	c.normalizeAutocut()
	c.normalizeCache()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(strings.TrimSpace(c.Paths.WorkDir)); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.CacheDir, err = expandPath(strings.TrimSpace(c.Paths.CacheDir)); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	c.Tools.Fpcalc = strings.TrimSpace(c.Tools.Fpcalc)
}

func (c *Config) normalizeSamples() error {
	if len(c.Samples.Files) == 0 {
		c.Samples.Files = Default().Samples.Files
	}
	files := make(map[string]string, len(c.Samples.Files))
	for name, path := range c.Samples.Files {
		folded := planner.FoldName(name)
		if _, dup := files[folded]; dup {
			return fmt.Errorf("samples.files: %q collides with another sample name when case is ignored", name)
		}
		expanded, err := expandPath(strings.TrimSpace(path))
		if err != nil {
			return fmt.Errorf("samples.files.%s: %w", name, err)
		}
		files[folded] = expanded
	}
	c.Samples.Files = files
	c.Samples.BundleKey = strings.Trim(strings.TrimSpace(c.Samples.BundleKey), "/")
	return nil
}

func (c *Config) normalizePatterns() {
	defaults := Default()
	if len(c.TransitionPatterns) == 0 {
		c.TransitionPatterns = defaults.TransitionPatterns
	}
	if len(c.CutPatterns) == 0 {
		c.CutPatterns = defaults.CutPatterns
	}
	c.TransitionPatterns = foldKeys(c.TransitionPatterns)
	c.CutPatterns = foldKeys(c.CutPatterns)
}

func (c *Config) normalizeAutocut() {
	c.Autocut.TransitionPattern = planner.FoldName(c.Autocut.TransitionPattern)
	c.Autocut.CutPattern = planner.FoldName(c.Autocut.CutPattern)
	ext := strings.TrimSpace(c.Autocut.OutputExtension)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Autocut.OutputExtension = strings.ToLower(ext)
}

func (c *Config) normalizeCache() {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if !c.Cache.Enabled {
		c.Cache.Backend = "none"
	}
	c.Cache.S3.Bucket = strings.TrimSpace(c.Cache.S3.Bucket)
	c.Cache.S3.Region = strings.TrimSpace(c.Cache.S3.Region)
	c.Cache.S3.Endpoint = strings.TrimSpace(c.Cache.S3.Endpoint)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func foldKeys(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for key, value := range in {
		out[planner.FoldName(key)] = slices.Clone(value)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
