// Package server hosts the Fiber HTTP service that publishes the output
// artifacts under /api and cache diagnostics under /-/. Every request gets an
// X-Request-ID and an access log line; handlers only read artifacts, so the
// update job stays the single writer of the data directory. When an artifact
// has not been produced yet the routes answer 202 with a null-filled body and
// a short max-age so clients retry soon.
package server
