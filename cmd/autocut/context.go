package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"autocut/internal/autocut"
	"autocut/internal/cache"
	"autocut/internal/config"
	"autocut/internal/fingerprint"
	"autocut/internal/logging"
	"autocut/internal/media/ffmpeg"
	"autocut/internal/preflight"
	"autocut/internal/samples"
	"autocut/internal/scanner"
	"autocut/internal/timeline"
)

type commandContext struct {
	configFlag *string
	debugFlag  *bool
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, debugFlag, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		debugFlag:  debugFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.debugMode() {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) debugMode() bool {
	return c.debugFlag != nil && *c.debugFlag
}

// JSONMode reports whether --json was passed.
func (c *commandContext) JSONMode() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// openStore opens the configured cache backend. Failures degrade to the
// none backend; the cache is advisory.
func (c *commandContext) openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) cache.Store {
	opts := preflight.CacheOptions(cfg)
	opts.Logger = logger
	store, err := cache.Open(ctx, opts)
	if err != nil {
		logging.WarnWithContext(logger, "cache unavailable; continuing without it", "cache_open_failed",
			logging.Error(err),
			logging.String("cache_backend", opts.Backend),
			logging.String(logging.FieldErrorHint, "run `autocut status` to check the cache settings"),
			logging.String(logging.FieldImpact, "fingerprints are recomputed every run"))
		return cache.None{}
	}
	return store
}

// newRunner wires the configured tools and cache into an autocut.Runner.
// The returned close func releases the cache store.
func (c *commandContext) newRunner(ctx context.Context) (*autocut.Runner, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}

	store := c.openStore(ctx, cfg, logger)
	fp := fingerprint.NewFpcalc(cfg.Tools.Fpcalc, cfg.Tools.FFprobe, logger)
	tool := ffmpeg.New(cfg.Tools.FFmpeg, logger)

	runner := &autocut.Runner{
		Samples:   c.newSampleLoader(cfg, store, fp, tool, logger),
		Timelines: &timeline.Loader{Store: store, Fingerprinter: fp, Workers: cfg.Autocut.Workers, Logger: logger},
		Media:     tool,
		Scan: scanner.ScanConfig{
			ErrorThreshold: cfg.Scan.ErrorThreshold,
			MinRunWindows:  cfg.Scan.MinRunWindows,
			WindowSeconds:  cfg.Scan.WindowSeconds,
			CheckHighBits:  cfg.Scan.CheckHighBits,
		},
		SegmentSeconds: cfg.Autocut.SegmentSeconds,
		BufferFrames:   cfg.Autocut.BufferFrames,
		WorkDir:        cfg.Paths.WorkDir,
		KeepWorkDir:    c.debugMode(),
		Logger:         logger,
	}
	closeFn := func() {
		if err := store.Close(); err != nil {
			logger.Debug("cache close failed", logging.Error(err))
		}
	}
	return runner, closeFn, nil
}

func (c *commandContext) newSampleLoader(cfg *config.Config, store cache.Store, fp fingerprint.Fingerprinter, conv samples.Converter, logger *slog.Logger) *samples.Loader {
	return &samples.Loader{
		Store:         store,
		BundleKey:     cfg.Samples.BundleKey,
		Files:         cfg.Samples.Files,
		Mask:          cfg.Scan.Mask,
		Fingerprinter: fp,
		Converter:     conv,
		WorkDir:       cfg.Paths.WorkDir,
		KeepWorkDir:   c.debugMode(),
		Workers:       cfg.Autocut.Workers,
		Logger:        logger,
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func requireArgs(name string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("at least one %s is required", name)
		}
		return nil
	}
}
