package logging

import (
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// jsonKeys shortens slog's built-in keys for machine-readable output.
var jsonKeys = map[string]string{
	slog.TimeKey:    "ts",
	slog.LevelKey:   "level",
	slog.MessageKey: "msg",
	slog.SourceKey:  "caller",
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   addSource,
		ReplaceAttr: replaceJSONAttr,
	})
}

func replaceJSONAttr(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) == 0 {
		if key, ok := jsonKeys[attr.Key]; ok {
			attr.Key = key
		}
	}
	v := attr.Value
	switch {
	case v.Kind() == slog.KindTime:
		attr.Value = slog.StringValue(v.Time().UTC().Format(time.RFC3339))
	case v.Kind() == slog.KindDuration:
		// Durations are written as seconds so they line up with duration_seconds.
		attr.Value = slog.Float64Value(v.Duration().Round(time.Millisecond).Seconds())
	case attr.Key == "level":
		attr.Value = slog.StringValue(strings.ToLower(v.String()))
	case attr.Key == "caller":
		if src, ok := v.Any().(*slog.Source); ok && src != nil {
			attr.Value = slog.StringValue(filepath.Base(src.File) + ":" + strconv.Itoa(src.Line))
		}
	}
	return attr
}
