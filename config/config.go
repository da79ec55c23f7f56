package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/c360/dynsynonym/errors"
)

// SourceKind identifies where synonym rule text comes from
type SourceKind string

const (
	// SourceLocal reads rules from a file on the local filesystem
	SourceLocal SourceKind = "local"
	// SourceRemote fetches rules from an HTTP endpoint
	SourceRemote SourceKind = "remote"
)

// FilterConfig configures one dynamic synonym filter definition: its rule
// source, poll cadence, and compile options.
type FilterConfig struct {
	SourceKind          SourceKind `json:"source_kind"`
	Location            string     `json:"location"`
	PollIntervalSeconds int        `json:"poll_interval_seconds"`
	ConnectTimeoutMs    int        `json:"connect_timeout_ms"`
	ReadTimeoutMs       int        `json:"read_timeout_ms"`

	// Expand controls comma-group semantics: true produces full equivalence
	// classes, false normalizes every term in a group to its first term.
	Expand bool `json:"expand"`
	// Lenient skips malformed rule lines instead of failing the compile.
	Lenient bool `json:"lenient"`
}

// EngineConfig configures the shared reload engine
type EngineConfig struct {
	Workers       int           `json:"workers"`
	QueueSize     int           `json:"queue_size"`
	ShutdownGrace time.Duration `json:"shutdown_grace"`
}

// DefaultFilterConfig returns default configuration for a filter definition
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		SourceKind:          SourceLocal,
		PollIntervalSeconds: 60,
		ConnectTimeoutMs:    5000,
		ReadTimeoutMs:       10000,
		Expand:              true,
	}
}

// DefaultEngineConfig returns default configuration for the reload engine
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Workers:       2,
		QueueSize:     64,
		ShutdownGrace: 5 * time.Second,
	}
}

// Validate checks the filter configuration for errors
func (c *FilterConfig) Validate() error {
	switch c.SourceKind {
	case SourceLocal, SourceRemote:
	default:
		return errors.WrapFatal(errors.ErrInvalidConfig, "FilterConfig", "Validate",
			fmt.Sprintf("source_kind must be %q or %q, got %q", SourceLocal, SourceRemote, c.SourceKind))
	}

	if c.Location == "" {
		return errors.WrapFatal(errors.ErrMissingConfig, "FilterConfig", "Validate",
			"location is required")
	}

	if c.SourceKind == SourceRemote {
		u, err := url.Parse(c.Location)
		if err != nil {
			return errors.WrapFatal(err, "FilterConfig", "Validate", "parse remote location")
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return errors.WrapFatal(errors.ErrInvalidConfig, "FilterConfig", "Validate",
				fmt.Sprintf("remote location must be an http(s) URL, got %q", c.Location))
		}
	}

	if c.PollIntervalSeconds < 1 {
		return errors.WrapFatal(errors.ErrInvalidConfig, "FilterConfig", "Validate",
			"poll_interval_seconds must be at least 1")
	}

	if c.ConnectTimeoutMs < 0 || c.ReadTimeoutMs < 0 {
		return errors.WrapFatal(errors.ErrInvalidConfig, "FilterConfig", "Validate",
			"timeouts cannot be negative")
	}

	return nil
}

// Validate checks the engine configuration for errors
func (c *EngineConfig) Validate() error {
	if c.Workers < 0 || c.QueueSize < 0 {
		return errors.WrapFatal(errors.ErrInvalidConfig, "EngineConfig", "Validate",
			"workers and queue_size cannot be negative")
	}
	if c.ShutdownGrace < 0 {
		return errors.WrapFatal(errors.ErrInvalidConfig, "EngineConfig", "Validate",
			"shutdown_grace cannot be negative")
	}
	return nil
}

// PollInterval returns the poll interval as a duration
func (c *FilterConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// ConnectTimeout returns the connect timeout as a duration, applying the
// default when unset.
func (c *FilterConfig) ConnectTimeout() time.Duration {
	if c.ConnectTimeoutMs == 0 {
		return 5 * time.Second
	}
	return time.Duration(c.ConnectTimeoutMs) * time.Millisecond
}

// ReadTimeout returns the read timeout as a duration, applying the default
// when unset.
func (c *FilterConfig) ReadTimeout() time.Duration {
	if c.ReadTimeoutMs == 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ReadTimeoutMs) * time.Millisecond
}
