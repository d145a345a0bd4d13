package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// consoleHandler writes a one-line header per record followed by indented
// fields. Info and above show a curated subset; debug shows everything.
type consoleHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	prefix    string
	addSource bool
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	var collected []kv
	for _, attr := range h.attrs {
		collected = appendFlattened(collected, "", attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		collected = appendFlattened(collected, h.prefix, attr)
		return true
	})

	line := recordLine{ts: record.Time, level: record.Level, message: strings.TrimSpace(record.Message)}
	if line.ts.IsZero() {
		line.ts = time.Now()
	}
	if line.message == "" {
		line.message = "(no message)"
	}
	if h.addSource {
		line.source = record.Source()
	}

	fields := make([]kv, 0, len(collected))
	for _, attr := range lastValueWins(collected) {
		switch attr.key {
		case FieldComponent:
			line.component = attrString(attr.value)
			continue
		case FieldStage:
			line.stage = attrString(attr.value)
		case FieldInput:
			line.input = attrString(attr.value)
		}
		fields = append(fields, attr)
	}

	var buf bytes.Buffer
	line.writeTo(&buf)
	if record.Level < slog.LevelInfo {
		for _, attr := range fields {
			fmt.Fprintf(&buf, "    %s: %s\n", attr.key, formatValue(attr.value))
		}
	} else {
		shown, hidden := selectInfoFields(fields)
		for _, field := range shown {
			fmt.Fprintf(&buf, "    - %s: %s\n", field.label, field.value)
		}
		switch {
		case hidden == 1:
			buf.WriteString("    + 1 more field hidden\n")
		case hidden > 1:
			fmt.Fprintf(&buf, "    + %d more fields hidden\n", hidden)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

type recordLine struct {
	ts        time.Time
	level     slog.Level
	component string
	stage     string
	input     string
	message   string
	source    *slog.Source
}

// writeTo renders "TIME LEVEL [component] input (stage) - message [file:line]".
func (l recordLine) writeTo(buf *bytes.Buffer) {
	parts := []string{formatTimestamp(l.ts), levelLabel(l.level)}
	if l.component != "" {
		parts = append(parts, "["+l.component+"]")
	}
	if subject := subjectOf(l.stage, l.input); subject != "" {
		parts = append(parts, subject)
	}
	parts = append(parts, "-", l.message)
	if l.source != nil && l.source.File != "" {
		parts = append(parts, fmt.Sprintf("[%s:%d]", filepath.Base(l.source.File), l.source.Line))
	}
	buf.WriteString(strings.Join(parts, " "))
	buf.WriteByte('\n')
}

func subjectOf(stage, input string) string {
	stage = strings.TrimSpace(stage)
	input = strings.TrimSpace(input)
	if input == "" {
		return stage
	}
	if stage == "" {
		return filepath.Base(input)
	}
	return filepath.Base(input) + " (" + stage + ")"
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, attr := range attrs {
		if h.prefix != "" {
			attr.Key = h.prefix + attr.Key
		}
		clone.attrs = append(clone.attrs, attr)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

type kv struct {
	key   string
	value slog.Value
}

// lastValueWins drops empty keys and collapses repeats: a key keeps the
// position it first appeared at and the value it was last given.
func lastValueWins(attrs []kv) []kv {
	index := make(map[string]int, len(attrs))
	out := attrs[:0:0]
	for _, attr := range attrs {
		if attr.key == "" {
			continue
		}
		if i, seen := index[attr.key]; seen {
			out[i].value = attr.value
			continue
		}
		index[attr.key] = len(out)
		out = append(out, attr)
	}
	return out
}

// appendFlattened appends attr to dst, expanding groups into dotted keys.
func appendFlattened(dst []kv, prefix string, attr slog.Attr) []kv {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	v := attr.Value.Resolve()
	if v.Kind() != slog.KindGroup {
		return append(dst, kv{key: prefix + attr.Key, value: v})
	}
	next := prefix
	if attr.Key != "" {
		next = prefix + attr.Key + "."
	}
	for _, member := range v.Group() {
		dst = appendFlattened(dst, next, member)
	}
	return dst
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}
