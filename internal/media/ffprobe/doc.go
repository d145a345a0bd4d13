// Package ffprobe reads audio stream metadata from ffprobe's JSON output.
//
// Inspect runs the binary; Parse decodes captured output. Numeric fields
// arrive as strings and are decoded into Number.
package ffprobe
