// Package memstore provides an in-memory hypergraph store backend with an
// inverted atom index. It is the reference implementation of storage.Graph
// and backs the test suites of the validator and reasoner.
package memstore

import (
	"context"
	"log/slog"
	"sync"

	"github.com/c360/semgraph/errors"
	"github.com/c360/semgraph/hedge"
	"github.com/c360/semgraph/storage"
)

type record struct {
	edge  *hedge.Hyperedge
	attrs storage.Attributes
}

// Store is an in-memory storage.Graph. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	logger *slog.Logger

	// edges keys records by canonical string; byAtom maps an atom's
	// canonical string to the set of edge keys containing it.
	edges  map[string]record
	byAtom map[string]map[string]struct{}
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New returns an empty in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		edges:  make(map[string]record),
		byAtom: make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default().With("component", "memstore")
	}
	return s
}

// Add stores an edge with its attributes, replacing attributes of an
// existing edge. Wildcard-bearing edges are rejected: the wildcard is a
// pattern construct, never stored.
func (s *Store) Add(ctx context.Context, edge *hedge.Hyperedge, attrs storage.Attributes) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if edge == nil {
		return errors.WrapInvalid(errors.ErrInvalidArgument, "memstore", "Add", "nil edge")
	}
	if edge.HasWildcard() {
		return errors.WrapInvalid(errors.ErrInvalidArgument, "memstore", "Add",
			"wildcard atoms cannot be stored")
	}

	key := edge.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.edges[key] = record{edge: edge, attrs: attrs.Clone()}
	for _, atom := range edge.Atoms() {
		as := atom.String()
		set, ok := s.byAtom[as]
		if !ok {
			set = make(map[string]struct{})
			s.byAtom[as] = set
		}
		set[key] = struct{}{}
	}
	return nil
}

// Remove deletes an edge and its index entries. Absent edges are a no-op.
func (s *Store) Remove(ctx context.Context, edge *hedge.Hyperedge) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if edge == nil {
		return errors.WrapInvalid(errors.ErrInvalidArgument, "memstore", "Remove", "nil edge")
	}

	key := edge.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.edges[key]; !ok {
		return nil
	}
	delete(s.edges, key)
	for _, atom := range edge.Atoms() {
		as := atom.String()
		if set, ok := s.byAtom[as]; ok {
			delete(set, key)
			if len(set) == 0 {
				delete(s.byAtom, as)
			}
		}
	}
	return nil
}

// Query returns stored edges matching the pattern; a nil pattern matches
// everything. Matching is a linear scan: rule sets stay small relative to
// fact stores, and the atom index only accelerates neighbor lookups.
func (s *Store) Query(ctx context.Context, pattern *hedge.Hyperedge) ([]storage.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []storage.Entry
	for _, rec := range s.edges {
		if pattern == nil || rec.edge.Matches(pattern) {
			out = append(out, storage.Entry{Edge: rec.edge, Attrs: rec.attrs.Clone()})
		}
	}
	return out, nil
}

// GetAttrs returns the attribute bag for a stored edge; empty if absent.
func (s *Store) GetAttrs(ctx context.Context, edge *hedge.Hyperedge) (storage.Attributes, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if edge == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidArgument, "memstore", "GetAttrs", "nil edge")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.edges[edge.String()]
	if !ok {
		return storage.Attributes{}, nil
	}
	return rec.attrs.Clone(), nil
}

// NeighborsSharingAtom returns stored edges sharing at least one atom with
// edge, excluding edge itself. Wildcard atoms in the argument are skipped.
func (s *Store) NeighborsSharingAtom(ctx context.Context, edge *hedge.Hyperedge) ([]storage.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if edge == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidArgument, "memstore", "NeighborsSharingAtom", "nil edge")
	}

	self := edge.String()

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []storage.Entry
	for _, atom := range edge.Atoms() {
		if atom.IsWildcard() {
			continue
		}
		for key := range s.byAtom[atom.String()] {
			if key == self {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			rec := s.edges[key]
			out = append(out, storage.Entry{Edge: rec.edge, Attrs: rec.attrs.Clone()})
		}
	}
	return out, nil
}

// Count returns the number of stored edges.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges), nil
}

// Close is a no-op for the in-memory backend.
func (s *Store) Close() error {
	return nil
}

var _ storage.Graph = (*Store)(nil)
