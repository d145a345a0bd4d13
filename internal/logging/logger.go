package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"autocut/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	// Level is debug, info, warn, or error. Unknown values mean info.
	Level string
	// Format is "console" (default) or "json".
	Format string
	// OutputPaths are files, or "stdout"/"stderr". Empty means stderr.
	OutputPaths []string
}

type handlerFactory func(io.Writer, *slog.LevelVar, bool) slog.Handler

var handlerFactories = map[string]handlerFactory{
	"console": newConsoleHandler,
	"json":    newJSONHandler,
}

// New builds a logger. Debug level also records the caller.
func New(opts Options) (*slog.Logger, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	factory, ok := handlerFactories[format]
	if !ok {
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))

	w, err := openWriters(opts.OutputPaths)
	if err != nil {
		return nil, err
	}
	return slog.New(factory(w, levelVar, levelVar.Level() <= slog.LevelDebug)), nil
}

// NewFromConfig creates a logger from the [logging] and [paths] config
// sections. Console output goes to stderr so stdout stays parseable for
// --json callers; when a log directory is configured, lines are also
// appended to autocut.log there.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{})
	}
	outputs := []string{"stderr"}
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		outputs = append(outputs, filepath.Join(dir, "autocut.log"))
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
}

func parseLevel(value string) slog.Level {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// openWriters fans out to every distinct destination in paths, creating
// parent directories for log files.
func openWriters(paths []string) (io.Writer, error) {
	seen := make(map[string]bool, len(paths))
	var writers []io.Writer
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true

		switch path {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("ensure log directory: %w", err)
			}
			file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", path, err)
			}
			writers = append(writers, file)
		}
	}
	switch len(writers) {
	case 0:
		return os.Stderr, nil
	case 1:
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}
