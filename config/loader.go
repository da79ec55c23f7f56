package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/c360/dynsynonym/errors"
)

// Config is the daemon configuration: one engine plus any number of named
// filter definitions.
type Config struct {
	Engine  EngineConfig            `json:"engine"`
	Filters map[string]FilterConfig `json:"filters"`
}

// rawConfig mirrors Config but defers filter decoding so each definition
// can start from defaults before the file's overrides are applied.
type rawConfig struct {
	Engine  *EngineConfig              `json:"engine"`
	Filters map[string]json.RawMessage `json:"filters"`
}

// Load reads a JSON configuration file. Missing fields fall back to
// defaults; every filter definition is validated before the config is
// returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFatal(err, "config", "Load", "read config file")
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.WrapFatal(err, "config", "Load", "parse config file")
	}

	cfg := &Config{
		Engine:  DefaultEngineConfig(),
		Filters: make(map[string]FilterConfig, len(raw.Filters)),
	}
	if raw.Engine != nil {
		cfg.Engine = *raw.Engine
	}

	for name, msg := range raw.Filters {
		fc := DefaultFilterConfig()
		if err := json.Unmarshal(msg, &fc); err != nil {
			return nil, errors.WrapFatal(err, "config", "Load",
				fmt.Sprintf("parse filter definition %q", name))
		}
		cfg.Filters[name] = fc
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromMap builds a FilterConfig from a loosely typed configuration map,
// such as a bleve analyzer definition. Unknown keys are ignored; missing
// keys keep their defaults. The result is validated.
func FromMap(m map[string]interface{}) (FilterConfig, error) {
	fc := DefaultFilterConfig()

	data, err := json.Marshal(m)
	if err != nil {
		return fc, errors.WrapFatal(err, "config", "FromMap", "encode config map")
	}
	if err := json.Unmarshal(data, &fc); err != nil {
		return fc, errors.WrapFatal(err, "config", "FromMap", "decode filter config")
	}

	if err := fc.Validate(); err != nil {
		return fc, err
	}
	return fc, nil
}

// Validate checks the engine configuration and every filter definition
func (c *Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if len(c.Filters) == 0 {
		return errors.WrapFatal(errors.ErrMissingConfig, "Config", "Validate",
			"at least one filter definition is required")
	}
	for name, fc := range c.Filters {
		if err := fc.Validate(); err != nil {
			return errors.WrapFatal(err, "Config", "Validate",
				fmt.Sprintf("filter definition %q", name))
		}
	}
	return nil
}
