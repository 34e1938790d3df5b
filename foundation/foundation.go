// Package foundation loads curated knowledge packs into a graph store. A
// pack is a YAML or JSON document of rules and facts with their
// attributes; loading is an upsert and is best effort per edge, so one
// malformed entry does not sink the pack.
package foundation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/c360/semgraph/errors"
	"github.com/c360/semgraph/hedge"
	"github.com/c360/semgraph/storage"
)

// Edge is one pack entry: the edge in notation form plus its attributes.
// Attribute values may be strings, booleans or numbers; they are
// normalized to strings on load.
type Edge struct {
	Edge  string         `yaml:"edge" json:"edge"`
	Attrs map[string]any `yaml:"attrs" json:"attrs"`
}

// Pack is a foundation knowledge pack. Rules and Facts are loaded the
// same way; the split exists for authoring clarity.
type Pack struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	// Layer is the default layer for entries that do not set one.
	Layer string `yaml:"layer" json:"layer"`
	Rules []Edge `yaml:"rules" json:"rules"`
	Facts []Edge `yaml:"facts" json:"facts"`
}

// EdgeError records one entry that could not be loaded.
type EdgeError struct {
	Edge string
	Err  error
}

// Result summarizes a pack load.
type Result struct {
	Inserted int
	Updated  int
	Errors   []EdgeError
}

// Loader writes packs into a graph store.
type Loader struct {
	store  storage.Graph
	logger *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader builds a loader over a graph store.
func NewLoader(store storage.Graph, opts ...Option) *Loader {
	l := &Loader{store: store}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default().With("component", "foundation")
	}
	return l
}

// LoadFile reads, parses and loads a pack from a YAML or JSON file,
// chosen by extension.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Loader", "LoadFile", "read pack file")
	}

	var pack Pack
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &pack); err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "LoadFile", "parse YAML pack")
		}
	case ".json":
		if err := json.Unmarshal(raw, &pack); err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "LoadFile", "parse JSON pack")
		}
	default:
		return nil, errors.WrapInvalid(errors.ErrInvalidArgument, "Loader", "LoadFile",
			fmt.Sprintf("unsupported pack extension %q", ext))
	}

	return l.Load(ctx, pack)
}

// Load upserts every entry of the pack. Entries that fail to parse or
// store are collected in the result rather than aborting the load.
func (l *Loader) Load(ctx context.Context, pack Pack) (*Result, error) {
	result := &Result{}
	for _, entry := range append(append([]Edge{}, pack.Rules...), pack.Facts...) {
		if err := l.loadEntry(ctx, pack, entry, result); err != nil {
			result.Errors = append(result.Errors, EdgeError{Edge: entry.Edge, Err: err})
		}
	}

	l.logger.Info("foundation pack loaded",
		"pack", pack.Name,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"errors", len(result.Errors))
	return result, nil
}

func (l *Loader) loadEntry(ctx context.Context, pack Pack, entry Edge, result *Result) error {
	edge, err := hedge.Parse(entry.Edge)
	if err != nil {
		return err
	}

	attrs := normalizeAttrs(entry.Attrs)
	if attrs.Layer() == "" && pack.Layer != "" {
		attrs[storage.KeyLayer] = pack.Layer
	}

	existing, err := l.store.Query(ctx, edge)
	if err != nil {
		return err
	}
	if err := l.store.Add(ctx, edge, attrs); err != nil {
		return err
	}
	if len(existing) > 0 {
		result.Updated++
	} else {
		result.Inserted++
	}
	return nil
}

// normalizeAttrs flattens YAML/JSON attribute values to the string form
// the store keeps.
func normalizeAttrs(in map[string]any) storage.Attributes {
	out := make(storage.Attributes, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case string:
			out[k] = val
		case bool:
			out[k] = strconv.FormatBool(val)
		case int:
			out[k] = strconv.Itoa(val)
		case int64:
			out[k] = strconv.FormatInt(val, 10)
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			out[k] = fmt.Sprintf("%v", val)
		}
	}
	return out
}
