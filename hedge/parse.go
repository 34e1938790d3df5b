package hedge

import (
	"fmt"
	"strings"

	"github.com/c360/semgraph/errors"
)

// maxPatternDepth bounds nesting in caller-supplied patterns. Stored edges
// have no depth limit; the bound only guards query entry points against
// pathological input.
const maxPatternDepth = 10

// Parse builds a hyperedge from its canonical string form. It fails with a
// classified errors.ErrParseFailed on unbalanced delimiters, empty edges,
// or malformed atom type tags. Whitespace between elements is normalized.
func Parse(s string) (*Hyperedge, error) {
	p := &parser{input: s}
	p.skipSpace()
	if p.pos >= len(p.input) || p.input[p.pos] != '(' {
		return nil, parseError("Parse", "expected '(' at start of hyperedge", s)
	}
	edge, err := p.parseEdge()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, parseError("Parse", "trailing input after hyperedge", s)
	}
	return edge, nil
}

// MustParse is Parse for known-good literals; it panics on error.
func MustParse(s string) *Hyperedge {
	edge, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return edge
}

// ParsePattern parses a caller-supplied query pattern. On top of Parse it
// rejects patterns nested deeper than a fixed bound.
func ParsePattern(s string) (*Hyperedge, error) {
	edge, err := Parse(s)
	if err != nil {
		return nil, err
	}
	if depth(edge) > maxPatternDepth {
		return nil, errors.WrapInvalid(errors.ErrInvalidPattern, "hedge", "ParsePattern",
			fmt.Sprintf("pattern nesting exceeds depth %d", maxPatternDepth))
	}
	return edge, nil
}

func depth(h *Hyperedge) int {
	max := 1
	for _, e := range h.elems {
		if sub, ok := e.(*Hyperedge); ok {
			if d := 1 + depth(sub); d > max {
				max = d
			}
		}
	}
	return max
}

// TypedConcept appends the concept type tag to an untyped identifier,
// canonicalizing whitespace to underscores. Already-typed atoms pass
// through unchanged.
func TypedConcept(s string) string {
	if strings.Contains(s, "/") {
		return s
	}
	return canonIdentifier(s) + "/" + TypeConcept
}

// TypedPredicate appends the predicate type tag to an untyped identifier.
// Already-typed atoms pass through unchanged.
func TypedPredicate(s string) string {
	if strings.Contains(s, "/") {
		return s
	}
	return canonIdentifier(s) + "/" + TypePredicate
}

func canonIdentifier(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
}

type parser struct {
	input string
	pos   int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && isSpace(p.input[p.pos]) {
		p.pos++
	}
}

// parseEdge consumes "(elem elem ...)" starting at the opening parenthesis.
func (p *parser) parseEdge() (*Hyperedge, error) {
	p.pos++ // consume '('
	var elems []Element
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return nil, parseError("Parse", "unbalanced delimiters: missing ')'", p.input)
		}
		switch p.input[p.pos] {
		case ')':
			p.pos++
			if len(elems) == 0 {
				return nil, parseError("Parse", "empty hyperedge", p.input)
			}
			return &Hyperedge{elems: elems}, nil
		case '(':
			sub, err := p.parseEdge()
			if err != nil {
				return nil, err
			}
			elems = append(elems, sub)
		default:
			atom, err := p.parseAtom()
			if err != nil {
				return nil, err
			}
			elems = append(elems, atom)
		}
	}
}

// parseAtom consumes a token up to whitespace or a delimiter and splits it
// into identifier and type tag at the first '/'.
func (p *parser) parseAtom() (Atom, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if isSpace(c) || c == '(' || c == ')' {
			break
		}
		p.pos++
	}
	token := p.input[start:p.pos]

	slash := strings.IndexByte(token, '/')
	if slash < 0 {
		// Untyped atom. Only meaningful as the wildcard in patterns, but
		// parsing stays permissive; stores enforce typing on write.
		return Atom{ID: token}, nil
	}
	id, typ := token[:slash], token[slash+1:]
	if id == "" {
		return Atom{}, parseError("Parse", fmt.Sprintf("atom %q has empty identifier", token), p.input)
	}
	if !validType(typ) {
		return Atom{}, parseError("Parse", fmt.Sprintf("atom %q has malformed type tag", token), p.input)
	}
	return Atom{ID: id, Type: typ}, nil
}

// validType accepts an uppercase type letter optionally followed by a short
// subtype code (letters, digits, '.', '|', '-').
func validType(typ string) bool {
	if typ == "" || typ[0] < 'A' || typ[0] > 'Z' {
		return false
	}
	for i := 1; i < len(typ); i++ {
		c := typ[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '|' || c == '-':
		default:
			return false
		}
	}
	return true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func parseError(op, detail, input string) error {
	return errors.WrapInvalid(errors.ErrParseFailed, "hedge", op,
		fmt.Sprintf("%s in %q", detail, input))
}
