// Package retry provides simple exponential backoff retry logic for
// transient source failures inside a single poll cycle.
package retry
