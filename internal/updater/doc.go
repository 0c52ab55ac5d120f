// Package updater runs one refresh pass: it consults the cache freshness
// policy, fetches whatever is stale through the f1data client with retries,
// publishes the output artifacts and records the refresh in the metadata
// store. Stages run in a fixed order, each under its own timeout, and a
// Summary reports which of them succeeded.
package updater
