// Package semgraph is a knowledge-validation and reasoning layer over a
// hypergraph store. Knowledge lives as recursive, ordered hyperedges in
// a compact notation ("(contraindicated/P ibuprofen/C diabetes/C)");
// edges carry attribute bags and belong to named layers that can be
// toggled at query time.
//
// Two operations sit on top of the store. Validation classifies proposed
// edges as ALLOW, DENY or UNKNOWN against the stored rules, with a
// why-trace of the rules that fired. Reasoning walks the shared-atom
// adjacency breadth-first, bounded by hops and a result limit.
//
// Three backends implement the storage contract: an in-memory store, a
// BadgerDB store, and a SQLite store, selected by locator when opening
// the API.
package semgraph
