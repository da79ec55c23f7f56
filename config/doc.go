// Package config defines configuration for dynamic synonym filter
// definitions and the reload engine, with validation performed at
// construction time. Validation failures are configuration errors: they are
// surfaced synchronously to the caller and never retried.
package config
