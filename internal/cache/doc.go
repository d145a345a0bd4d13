// Package cache stores derived fingerprint data between runs.
//
// A Store is a flat key/value blob store with pluggable backends: plain
// files guarded by per-key locks, a SQLite table, a Badger database, an S3
// bucket, or nothing at all. Keys are slash-separated names such as
// "samples/bundle" or "timeline/<digest>". Callers treat every failure as
// advisory: a miss or an unreadable entry means recomputing the value.
package cache
