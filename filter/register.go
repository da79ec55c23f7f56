package filter

import (
	"fmt"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"

	"github.com/c360/dynsynonym/config"
	"github.com/c360/dynsynonym/errors"
	"github.com/c360/dynsynonym/synonym"
)

// Name is the token filter name used in bleve analyzer definitions
const Name = "dynamic_synonym"

// HandleProvider resolves named filter definitions to their live handles
// and creates definitions on first use. The reload engine implements it;
// passing it here keeps the wiring explicit instead of stashing engine
// state in a package global.
type HandleProvider interface {
	Handle(definition string) (*synonym.Handle, bool)
	Define(definition string, cfg config.FilterConfig) (*synonym.Handle, error)
	Consumers() *Consumers
}

// RegisterWith registers the dynamic synonym token filter with bleve's
// token filter registry, bound to the given provider. Analyzer configs can
// reference a definition added to the engine up front:
//
//	{"type": "dynamic_synonym", "definition": "<name>"}
//
// or carry the full source descriptor inline, which defines the filter on
// first use:
//
//	{"type": "dynamic_synonym", "source_kind": "remote",
//	 "location": "https://...", "poll_interval_seconds": 30}
func RegisterWith(provider HandleProvider) error {
	return registry.RegisterTokenFilter(Name,
		func(cfg map[string]interface{}, _ *registry.Cache) (analysis.TokenFilter, error) {
			return newFromConfig(provider, cfg)
		})
}

// newFromConfig builds a filter from a bleve analyzer config map
func newFromConfig(provider HandleProvider, cfg map[string]interface{}) (analysis.TokenFilter, error) {
	name, _ := cfg["definition"].(string)

	if _, inline := cfg["location"]; !inline {
		if name == "" {
			return nil, errors.WrapFatal(errors.ErrMissingConfig, "filter", "Constructor",
				"definition or location is required")
		}
		handle, ok := provider.Handle(name)
		if !ok {
			return nil, errors.WrapFatal(errors.ErrInvalidConfig, "filter", "Constructor",
				fmt.Sprintf("unknown filter definition %q", name))
		}
		return NewSynonymFilter(handle, provider.Consumers().Register(name)), nil
	}

	fcfg, err := config.FromMap(cfg)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = fmt.Sprintf("%s:%s", fcfg.SourceKind, fcfg.Location)
	}

	handle, err := provider.Define(name, fcfg)
	if err != nil {
		return nil, err
	}
	return NewSynonymFilter(handle, provider.Consumers().Register(name)), nil
}
