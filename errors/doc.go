// Package errors provides standardized error handling for the dynamic
// synonym subsystem. It defines the reload error taxonomy (source
// unavailable, malformed rules, invalid configuration, shutdown timeout),
// error classification for retry decisions, and helpers for consistent
// error wrapping across components.
package errors
