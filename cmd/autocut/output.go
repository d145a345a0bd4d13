package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"autocut/internal/autocut"
	"autocut/internal/config"
	"autocut/internal/faults"
	"autocut/internal/scanner"
	"autocut/internal/timeline"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type eventJSON struct {
	Sample    string  `json:"sample"`
	Edge      string  `json:"edge"`
	Window    int     `json:"window"`
	Seconds   float64 `json:"seconds"`
	Timestamp string  `json:"timestamp"`
	Frame     int64   `json:"frame,omitempty"`
}

type resultJSON struct {
	Outputs        []string    `json:"outputs"`
	Events         []eventJSON `json:"events"`
	Fallback       bool        `json:"fallback"`
	FallbackReason string      `json:"fallback_reason,omitempty"`
	FallbackKind   string      `json:"fallback_kind,omitempty"`
}

func eventsJSON(tl *timeline.Timeline, events []scanner.Event, transitions []int64) []eventJSON {
	out := make([]eventJSON, 0, len(events))
	for i, event := range events {
		seconds := 0.0
		if tl != nil {
			seconds = tl.IndexToSeconds(event.Index)
		}
		entry := eventJSON{
			Sample:    event.Sample,
			Edge:      event.Edge.String(),
			Window:    event.Window,
			Seconds:   seconds,
			Timestamp: autocut.FormatSeconds(seconds),
		}
		if i < len(transitions) {
			entry.Frame = transitions[i]
		}
		out = append(out, entry)
	}
	return out
}

func newResultJSON(result autocut.Result) resultJSON {
	out := resultJSON{
		Outputs:  result.Outputs,
		Events:   eventsJSON(nil, result.Events, result.Transitions),
		Fallback: result.Fallback,
	}
	if out.Outputs == nil {
		out.Outputs = []string{}
	}
	if result.FallbackReason != nil {
		out.FallbackReason = result.FallbackReason.Error()
		out.FallbackKind = faults.Kind(result.FallbackReason)
	}
	return out
}

func printResult(cmd *cobra.Command, result autocut.Result) {
	out := cmd.OutOrStdout()
	if result.Fallback {
		fmt.Fprintf(out, "Transitions not found (%v); wrote unedited audio\n", result.FallbackReason)
	}
	if len(result.Outputs) == 0 {
		fmt.Fprintln(out, "No audio kept; nothing written")
		return
	}
	for _, path := range result.Outputs {
		fmt.Fprintf(out, "Wrote %s\n", path)
	}
}

// expandInputs resolves input paths and verifies they exist.
func expandInputs(args []string) ([]string, error) {
	inputs := make([]string, 0, len(args))
	for _, arg := range args {
		path, err := config.ExpandPath(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("inspect input %q: %w", arg, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("input %q is a directory", arg)
		}
		inputs = append(inputs, path)
	}
	return inputs, nil
}
