// Package storage defines the contract between the reasoning core and the
// hypergraph store, plus the attribute bag attached to stored edges.
//
// The validator and reasoner consume only the read-side Store interface;
// the backends under storage/ (memstore, badgerstore, sqlitestore)
// additionally implement Graph for ingestion and tests.
package storage

import (
	"context"

	"github.com/c360/semgraph/hedge"
)

// Entry pairs a stored hyperedge with its attributes.
type Entry struct {
	Edge  *hedge.Hyperedge
	Attrs Attributes
}

// Store is the read-only contract the validator and reasoner consume.
// Implementations return entries in unspecified order and must not be
// assumed deterministic across calls.
type Store interface {
	// Query returns every stored edge matching the pattern under the
	// hedge.Matches rule. A nil pattern matches every stored edge.
	Query(ctx context.Context, pattern *hedge.Hyperedge) ([]Entry, error)

	// GetAttrs returns the attribute mapping for a stored edge, or an
	// empty mapping if the edge is absent.
	GetAttrs(ctx context.Context, edge *hedge.Hyperedge) (Attributes, error)

	// NeighborsSharingAtom returns stored edges sharing at least one atom
	// with edge, excluding edge itself.
	NeighborsSharingAtom(ctx context.Context, edge *hedge.Hyperedge) ([]Entry, error)
}

// Graph extends Store with the write side used by ingestion and tests.
type Graph interface {
	Store

	// Add stores an edge with its attributes, replacing the attributes of
	// an existing edge. Edges containing the wildcard atom are rejected.
	Add(ctx context.Context, edge *hedge.Hyperedge, attrs Attributes) error

	// Remove deletes an edge. Removing an absent edge is not an error.
	Remove(ctx context.Context, edge *hedge.Hyperedge) error

	// Count returns the number of stored edges.
	Count(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close() error
}
