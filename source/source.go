package source

import (
	"context"
	"fmt"

	"github.com/c360/dynsynonym/config"
	"github.com/c360/dynsynonym/errors"
)

// Descriptor identifies a source instance
type Descriptor struct {
	Kind     config.SourceKind
	Location string
}

// String renders the descriptor as "kind:location", used as the source key
// in logs, metrics, and health statuses.
func (d Descriptor) String() string {
	return fmt.Sprintf("%s:%s", d.Kind, d.Location)
}

// Source provides synonym rule text with cheap change detection.
// Implementations are safe for use by one poll cycle at a time; the
// scheduler never overlaps cycles for the same source.
type Source interface {
	// CheckChanged reports whether the upstream content changed since the
	// last successful Fetch. It must be cheap and must not fetch the body.
	CheckChanged(ctx context.Context) (bool, error)

	// Fetch reads the full rule text and advances the freshness marker on
	// success. On failure the marker is left untouched.
	Fetch(ctx context.Context) ([]byte, error)

	// Describe identifies this source
	Describe() Descriptor

	// Close releases any resources held by the source. Safe to call more
	// than once.
	Close() error
}

// New constructs a Source from a validated filter configuration
func New(cfg config.FilterConfig) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.SourceKind {
	case config.SourceLocal:
		return NewFileSource(cfg.Location), nil
	case config.SourceRemote:
		return NewRemoteSource(cfg), nil
	default:
		return nil, errors.WrapFatal(errors.ErrInvalidConfig, "source", "New",
			fmt.Sprintf("unsupported source kind %q", cfg.SourceKind))
	}
}

// unavailable tags err with ErrSourceUnavailable and wraps it as transient
func unavailable(err error, component, method, action string) error {
	return errors.WrapTransient(
		fmt.Errorf("%w: %v", errors.ErrSourceUnavailable, err),
		component, method, action)
}
