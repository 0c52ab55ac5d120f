// Package cache owns everything pitwall persists on disk between runs: the
// disk-backed Store for raw upstream bodies and published artifacts, the
// cache metadata record that remembers when each category was last refreshed,
// and the freshness Policy that decides whether a category needs a refetch.
// The Inspector and Sweeper work on file modification times only and never
// consult the metadata record. Manager ties the pieces together and is built
// once per process; callers receive it explicitly instead of sharing globals.
package cache
