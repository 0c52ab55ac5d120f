// Package guard wraps fallible operations: Retry re-runs an operation with
// exponential backoff, SafeFile turns filesystem failures into a logged
// false so callers can skip non-critical work.
package guard
