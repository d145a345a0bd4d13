// Package main hosts the autocut CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation, builds
// the cache store and external tool wrappers, and hands the actual work to
// internal/autocut. Commands own only presentation: progress bars on a
// terminal, tables for humans, and JSON for scripts.
package main
