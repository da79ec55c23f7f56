// Package worker provides a generic worker pool used to run poll cycles on
// a shared set of background goroutines instead of one goroutine per
// synonym source.
package worker
