// Package config loads and validates the library configuration from YAML.
// Documents are checked against an embedded JSON schema before they are
// bound, so a malformed file fails loudly instead of half-applying.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/c360/semgraph/errors"
)

// ReasonConfig bounds the default traversal parameters.
type ReasonConfig struct {
	// Hops is the default traversal depth bound.
	Hops int `yaml:"hops" json:"hops"`
	// Limit is the default cap on traversal results.
	Limit int `yaml:"limit" json:"limit"`
}

// Config is the full library configuration.
type Config struct {
	// Locator selects the storage backend (":memory:", a .db/.sqlite
	// path, or a directory for the badger backend).
	Locator string `yaml:"locator" json:"locator"`

	// ContextLayer names the layer whose facts enrich proposals during
	// validation.
	ContextLayer string `yaml:"context_layer" json:"context_layer"`

	// BlockingConnectors extends the blocking vocabulary with extra
	// connector-id roots.
	BlockingConnectors []string `yaml:"blocking_connectors" json:"blocking_connectors"`

	// ConfidenceMin excludes rules below this confidence from validation.
	ConfidenceMin float64 `yaml:"confidence_min" json:"confidence_min"`

	Reason ReasonConfig `yaml:"reason" json:"reason"`
}

// configSchema is the draft-07 schema every loaded document must satisfy.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "locator": {"type": "string"},
    "context_layer": {"type": "string", "minLength": 1},
    "blocking_connectors": {
      "type": "array",
      "items": {"type": "string", "minLength": 1}
    },
    "confidence_min": {"type": "number", "minimum": 0, "maximum": 1},
    "reason": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "hops": {"type": "integer", "minimum": 1},
        "limit": {"type": "integer", "minimum": 1}
      }
    }
  }
}`

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Locator:      ":memory:",
		ContextLayer: "user",
		Reason:       ReasonConfig{Hops: 2, Limit: 100},
	}
}

// Load reads a YAML configuration file, validates it against the schema,
// and merges it over the defaults.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.WrapInvalid(errors.ErrMissingConfig, "config", "Load",
				fmt.Sprintf("config file %q not found", path))
		}
		return Config{}, errors.WrapInvalid(err, "config", "Load", "read config file")
	}
	return Parse(raw)
}

// Parse validates and binds a YAML document, merged over the defaults.
func Parse(raw []byte) (Config, error) {
	// YAML is validated through its JSON projection because the schema
	// validator only speaks JSON.
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Config{}, errors.WrapInvalid(err, "config", "Parse", "parse YAML")
	}
	if doc == nil {
		return Default(), nil
	}

	jsonDoc, err := json.Marshal(doc)
	if err != nil {
		return Config{}, errors.WrapInvalid(err, "config", "Parse", "convert to JSON")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewBytesLoader(jsonDoc),
	)
	if err != nil {
		return Config{}, errors.WrapInvalid(err, "config", "Parse", "run schema validation")
	}
	if !result.Valid() {
		msg := "configuration invalid:"
		for _, desc := range result.Errors() {
			msg += fmt.Sprintf(" %s: %s;", desc.Field(), desc.Description())
		}
		return Config{}, errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Parse", msg)
	}

	cfg := Default()
	if err := json.Unmarshal(jsonDoc, &cfg); err != nil {
		return Config{}, errors.WrapInvalid(err, "config", "Parse", "bind configuration")
	}
	return cfg, nil
}
