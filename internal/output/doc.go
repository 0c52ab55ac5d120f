// Package output defines the public JSON artifacts published to the data
// directory and the writer that stores them through a cache.Store. Builders
// turn f1data values into artifact documents; readers give the HTTP surface
// the same documents back, reporting cache.ErrNotFound when an artifact has
// not been produced yet.
package output
