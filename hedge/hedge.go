package hedge

import (
	"fmt"
	"strings"

	"github.com/c360/semgraph/errors"
)

// Element is a position in a hyperedge: either an Atom or a nested
// *Hyperedge. The set of implementations is closed.
type Element interface {
	// String renders the element in canonical notation.
	String() string
	// Equal reports structural equality with another element.
	Equal(other Element) bool

	element()
}

// Hyperedge is an ordered, non-empty sequence of elements whose position 0
// is the connector. The structure is a strict tree: a nested hyperedge is
// owned by exactly one parent, so no cycles can exist by construction.
// Hyperedges are immutable once constructed.
type Hyperedge struct {
	elems []Element
}

// New constructs a hyperedge from elements. At least one element (the
// connector) is required.
func New(elems ...Element) (*Hyperedge, error) {
	if len(elems) == 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidArgument,
			"Hyperedge", "New", "hyperedge requires at least a connector")
	}
	for i, e := range elems {
		if e == nil {
			return nil, errors.WrapInvalid(errors.ErrInvalidArgument,
				"Hyperedge", "New", fmt.Sprintf("nil element at position %d", i))
		}
	}
	copied := make([]Element, len(elems))
	copy(copied, elems)
	return &Hyperedge{elems: copied}, nil
}

// Len returns the arity of the hyperedge (connector included).
func (h *Hyperedge) Len() int {
	return len(h.elems)
}

// At returns the element at position i.
func (h *Hyperedge) At(i int) Element {
	return h.elems[i]
}

// Connector returns the element at position 0.
func (h *Hyperedge) Connector() Element {
	return h.elems[0]
}

// ConnectorAtom returns the connector if it is an atom. The second return
// is false when the connector is itself a nested hyperedge.
func (h *Hyperedge) ConnectorAtom() (Atom, bool) {
	a, ok := h.elems[0].(Atom)
	return a, ok
}

// Elements returns a copy of the element sequence.
func (h *Hyperedge) Elements() []Element {
	out := make([]Element, len(h.elems))
	copy(out, h.elems)
	return out
}

// Atoms returns every atom in the hyperedge, depth first, nested
// sub-hyperedges included.
func (h *Hyperedge) Atoms() []Atom {
	var out []Atom
	h.walkAtoms(func(a Atom) {
		out = append(out, a)
	})
	return out
}

// ConceptAtoms returns every concept-typed atom in the hyperedge,
// depth first. This is the atom set the validator's overlap test uses.
func (h *Hyperedge) ConceptAtoms() []Atom {
	var out []Atom
	h.walkAtoms(func(a Atom) {
		if a.IsConcept() {
			out = append(out, a)
		}
	})
	return out
}

func (h *Hyperedge) walkAtoms(fn func(Atom)) {
	for _, e := range h.elems {
		switch v := e.(type) {
		case Atom:
			fn(v)
		case *Hyperedge:
			v.walkAtoms(fn)
		}
	}
}

// HasWildcard reports whether the hyperedge contains the wildcard atom at
// any depth, i.e. whether it is a pattern rather than a concrete edge.
func (h *Hyperedge) HasWildcard() bool {
	for _, a := range h.Atoms() {
		if a.IsWildcard() {
			return true
		}
	}
	return false
}

// String renders the hyperedge in canonical parenthesized form with single
// spaces between elements.
func (h *Hyperedge) String() string {
	var b strings.Builder
	h.render(&b)
	return b.String()
}

func (h *Hyperedge) render(b *strings.Builder) {
	b.WriteByte('(')
	for i, e := range h.elems {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch v := e.(type) {
		case Atom:
			b.WriteString(v.String())
		case *Hyperedge:
			v.render(b)
		}
	}
	b.WriteByte(')')
}

// Equal reports structural equality with another element: same arity and
// element-wise equality, recursively.
func (h *Hyperedge) Equal(other Element) bool {
	o, ok := other.(*Hyperedge)
	if !ok || len(h.elems) != len(o.elems) {
		return false
	}
	for i, e := range h.elems {
		if !e.Equal(o.elems[i]) {
			return false
		}
	}
	return true
}

// Matches reports whether the hyperedge matches a pattern. The match
// succeeds iff both have the same arity and, at every position, either the
// pattern element is the bare wildcard atom or the elements match exactly:
// atoms by identifier and type, sub-hyperedges recursively. A typed pattern
// atom does not match a differently typed atom with the same identifier.
func (h *Hyperedge) Matches(pattern *Hyperedge) bool {
	if pattern == nil || len(h.elems) != len(pattern.elems) {
		return false
	}
	for i, pe := range pattern.elems {
		if pa, ok := pe.(Atom); ok && pa.IsWildcard() {
			continue
		}
		switch p := pe.(type) {
		case Atom:
			if !p.Equal(h.elems[i]) {
				return false
			}
		case *Hyperedge:
			sub, ok := h.elems[i].(*Hyperedge)
			if !ok || !sub.Matches(p) {
				return false
			}
		}
	}
	return true
}

func (h *Hyperedge) element() {}
