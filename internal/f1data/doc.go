// Package f1data fetches season schedules, session results and championship
// standings from an Ergast-compatible JSON API. Raw bodies go through the
// cache package's ResponseCache so repeated runs inside the TTL never touch
// the network. Failures are classified into ErrAPITimeout,
// ErrDataNotAvailable and the generic ErrF1Data so callers can decide what
// to retry.
package f1data
