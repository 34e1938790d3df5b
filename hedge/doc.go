// Package hedge implements the hyperedge data model: typed atoms, ordered
// recursive hyperedges, the canonical parenthesized string notation, and
// wildcard-aware pattern matching.
//
// A hyperedge is an ordered, non-empty sequence of elements where position 0
// is the connector. Each element is either an Atom (identifier plus type tag,
// e.g. "capital_of/P") or a nested *Hyperedge. Hyperedges are immutable once
// constructed and serialize to a canonical string form:
//
//	(is/P berlin/C city/C)
//	(says/P alice/C (is/P berlin/C capital/C))
//
// Parsing and rendering round-trip exactly: Parse(e.String()) reproduces e.
//
// Pattern matching is deliberately asymmetric. A typed pattern atom matches
// only an atom with the same identifier and the same type tag, so the pattern
// "capital_of/P" never matches the atom "capital_of/C". The bare wildcard
// atom "*" matches any element of any type. The wildcard is legal only in
// patterns; stores reject it in stored edges.
package hedge
