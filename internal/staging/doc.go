// Package staging manages per-run work directories under the configured
// work dir: creating them, releasing them when a run ends, and sweeping up
// directories abandoned by interrupted runs.
package staging
