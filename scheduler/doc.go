// Package scheduler runs the periodic poll cycles that keep synonym maps
// fresh. One lightweight ticker goroutine per registered source submits due
// work to a shared worker pool; the pool executes the actual
// check/fetch/compile/swap cycle.
//
// Cycles for the same source never overlap (a tick that arrives while the
// previous cycle is still running is skipped), cycles for different sources
// run independently, and any failure inside a cycle is contained: it is
// logged, counted, and reflected in health, and the next tick fires on
// schedule regardless.
package scheduler
