// Package logging assembles the structured slog loggers used across autocut.
//
// It owns the console and JSON handlers, level and output plumbing, and
// context helpers that tag log lines with the run id, the pipeline stage,
// and the input being processed. A no-op logger is provided for tests and
// wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits the same field shape.
package logging
