package hedge

// Well-known atom type codes. Type tags may carry short subtype suffixes
// (e.g. "Cc"); classification helpers look only at the leading letter.
const (
	TypeConcept   = "C"
	TypePredicate = "P"
	TypeModifier  = "M"
	TypeBuilder   = "B"
	TypeTrigger   = "T"
	TypeJunction  = "J"
)

// Wildcard is the identifier of the pattern atom that matches any element.
const Wildcard = "*"

// Atom is a typed token inside a hyperedge: an identifier plus a type tag.
// The zero value is not a valid atom. Atoms are immutable values; equality
// is exact on both identifier and type.
type Atom struct {
	ID   string
	Type string
}

// NewAtom builds an atom from an identifier and a type tag.
func NewAtom(id, typ string) Atom {
	return Atom{ID: id, Type: typ}
}

// Concept builds a concept atom ("id/C").
func Concept(id string) Atom {
	return Atom{ID: id, Type: TypeConcept}
}

// Predicate builds a predicate atom ("id/P").
func Predicate(id string) Atom {
	return Atom{ID: id, Type: TypePredicate}
}

// WildcardAtom returns the untyped wildcard pattern atom.
func WildcardAtom() Atom {
	return Atom{ID: Wildcard}
}

// String renders the atom in canonical "id/Type" form. Untyped atoms
// (including the wildcard) render as the bare identifier.
func (a Atom) String() string {
	if a.Type == "" {
		return a.ID
	}
	return a.ID + "/" + a.Type
}

// IsWildcard reports whether the atom is the bare wildcard "*".
// A typed atom with identifier "*" is an ordinary atom, not a wildcard.
func (a Atom) IsWildcard() bool {
	return a.ID == Wildcard && a.Type == ""
}

// IsConcept reports whether the atom's type tag is a concept type.
func (a Atom) IsConcept() bool {
	return len(a.Type) > 0 && a.Type[0] == 'C'
}

// IsPredicate reports whether the atom's type tag is a predicate type.
func (a Atom) IsPredicate() bool {
	return len(a.Type) > 0 && a.Type[0] == 'P'
}

// Equal reports exact equality with another element: same identifier and
// same type tag. An atom never equals a hyperedge.
func (a Atom) Equal(other Element) bool {
	o, ok := other.(Atom)
	return ok && a == o
}

func (a Atom) element() {}
