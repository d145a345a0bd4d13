package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/sethvargo/go-envconfig"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains working, cache, and log directories.
type Paths struct {
	WorkDir  string `toml:"work_dir" env:"AUTOCUT_WORK_DIR, overwrite" validate:"required"`
	CacheDir string `toml:"cache_dir" env:"AUTOCUT_CACHE_DIR, overwrite" validate:"required"`
	LogDir   string `toml:"log_dir" env:"AUTOCUT_LOG_DIR, overwrite"`
}

// Tools names the external binaries autocut shells out to.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg" env:"AUTOCUT_FFMPEG, overwrite" validate:"required"`
	FFprobe string `toml:"ffprobe" env:"AUTOCUT_FFPROBE, overwrite" validate:"required"`
	Fpcalc  string `toml:"fpcalc" env:"AUTOCUT_FPCALC, overwrite" validate:"required"`
}

// Scan parameterizes the transition scanner.
type Scan struct {
	ErrorThreshold float64 `toml:"error_threshold" env:"AUTOCUT_ERROR_THRESHOLD, overwrite" validate:"gt=0,lt=1"`
	MinRunWindows  int     `toml:"min_run_windows" env:"AUTOCUT_MIN_RUN_WINDOWS, overwrite" validate:"min=1"`
	WindowSeconds  float64 `toml:"window_seconds" env:"AUTOCUT_WINDOW_SECONDS, overwrite" validate:"gt=0"`
	CheckHighBits  bool    `toml:"check_high_bits"`
	Mask           uint32  `toml:"mask" validate:"required"`
}

// Samples maps reference sample names to their source audio.
type Samples struct {
	BundleKey string            `toml:"bundle_key" validate:"required"`
	Files     map[string]string `toml:"files"`
}

// Autocut holds defaults for a run.
type Autocut struct {
	TransitionPattern string `toml:"transition_pattern" env:"AUTOCUT_TRANSITION_PATTERN, overwrite"`
	CutPattern        string `toml:"cut_pattern" env:"AUTOCUT_CUT_PATTERN, overwrite"`
	Merge             bool   `toml:"merge"`
	IgnoreErrors      bool   `toml:"ignore_errors"`
	OutputExtension   string `toml:"output_extension" validate:"required,startswith=."`
	SegmentSeconds    int    `toml:"segment_seconds" validate:"min=1"`
	BufferFrames      int    `toml:"buffer_frames" validate:"min=1"`
	Workers           int    `toml:"workers" env:"AUTOCUT_WORKERS, overwrite" validate:"min=1,max=64"`
	StaleWorkDirHours int    `toml:"stale_work_dir_hours" validate:"min=1"`
}

// S3Cache configures the s3 cache backend.
type S3Cache struct {
	Bucket          string `toml:"bucket" env:"AUTOCUT_S3_BUCKET, overwrite"`
	Region          string `toml:"region" env:"AWS_REGION, overwrite"`
	Prefix          string `toml:"prefix"`
	Endpoint        string `toml:"endpoint" env:"AUTOCUT_S3_ENDPOINT, overwrite"`
	UsePathStyle    bool   `toml:"use_path_style"`
	AccessKeyID     string `toml:"-" json:"-" env:"AWS_ACCESS_KEY_ID, overwrite"`
	SecretAccessKey string `toml:"-" json:"-" env:"AWS_SECRET_ACCESS_KEY, overwrite"`
}

// Cache selects where fingerprint timelines and the sample bundle persist.
type Cache struct {
	Enabled bool    `toml:"enabled"`
	Backend string  `toml:"backend" env:"AUTOCUT_CACHE_BACKEND, overwrite" validate:"oneof=dir sqlite badger s3 none"`
	S3      S3Cache `toml:"s3"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" env:"AUTOCUT_LOG_FORMAT, overwrite" validate:"oneof=console json"`
	Level  string `toml:"level" env:"AUTOCUT_LOG_LEVEL, overwrite" validate:"oneof=debug info warn error"`
}

// Config encapsulates all configuration values for autocut.
//
// Sections:
//   - Paths: work, cache, and log directories
//   - Tools: ffmpeg, ffprobe, fpcalc binaries
//   - Scan: threshold, debounce, and window settings for the scanner
//   - Samples: reference sample sources
//   - TransitionPatterns / CutPatterns: named patterns selectable per run
//   - Autocut: run defaults (patterns, merge, fallback, workers)
//   - Cache: advisory cache backend
//   - Logging: log format and level
type Config struct {
	Paths              Paths               `toml:"paths"`
	Tools              Tools               `toml:"tools"`
	Scan               Scan                `toml:"scan"`
	Samples            Samples             `toml:"samples"`
	TransitionPatterns map[string][]string `toml:"transition_patterns"`
	CutPatterns        map[string][]string `toml:"cut_patterns"`
	Autocut            Autocut             `toml:"autocut"`
	Cache              Cache               `toml:"cache"`
	Logging            Logging             `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned
// config has environment overrides applied and all paths expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		// Named tables in the file replace the built-in ones wholesale.
		cfg.Samples.Files = nil
		cfg.TransitionPatterns = nil
		cfg.CutPatterns = nil

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.applyEnv(context.Background(), envconfig.OsLookuper()); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) applyEnv(ctx context.Context, lookuper envconfig.Lookuper) error {
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: c, Lookuper: lookuper}); err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("autocut.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the work and cache directories. The log
// directory is created by the logger on demand.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.CacheDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// TransitionPattern returns the raw steps of a named transition pattern.
// An empty name selects the configured default.
func (c *Config) TransitionPattern(name string) ([]string, error) {
	return lookupPattern("transition", c.TransitionPatterns, name, c.Autocut.TransitionPattern)
}

// CutPattern returns the raw entries of a named cut pattern.
// An empty name selects the configured default.
func (c *Config) CutPattern(name string) ([]string, error) {
	return lookupPattern("cut", c.CutPatterns, name, c.Autocut.CutPattern)
}

// SampleNames returns the configured sample names, sorted.
func (c *Config) SampleNames() []string {
	return sortedKeys(c.Samples.Files)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders cfg as TOML (used by `config show`). Credentials are
// tagged toml:"-" and never rendered.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
