package validate

import (
	"context"

	"github.com/c360/semgraph/hedge"
	"github.com/c360/semgraph/storage"
)

// Rule is a stored hyperedge projected into the validator's view: its
// attributes, its connector atom, and its concept-atom set.
type Rule struct {
	Edge      *hedge.Hyperedge
	Attrs     storage.Attributes
	Connector hedge.Atom

	concepts map[string]struct{}
}

// Concepts returns the canonical strings of the rule's concept atoms.
func (r Rule) Concepts() []string {
	out := make([]string, 0, len(r.concepts))
	for c := range r.concepts {
		out = append(out, c)
	}
	return out
}

// RuleIndex derives the set of active rules from the store. The
// projection is recomputed on every call: rule sets are small relative to
// fact stores, and recomputing avoids any cache invalidation. The linear
// scan is a documented scaling limit, not an oversight.
type RuleIndex struct {
	store storage.Store
}

// NewRuleIndex builds an index view over a store.
func NewRuleIndex(store storage.Store) *RuleIndex {
	return &RuleIndex{store: store}
}

// ActiveRules returns the rules matching the selection pattern whose layer
// is in the active set and whose confidence meets the threshold. A nil
// pattern selects every predicate-connector edge (a single fixed-arity
// pattern cannot express "any arity", so the default is a connector-type
// filter over a full query).
func (ri *RuleIndex) ActiveRules(
	ctx context.Context,
	pattern *hedge.Hyperedge,
	active map[string]struct{},
	confidenceMin float64,
) ([]Rule, error) {
	entries, err := ri.store.Query(ctx, pattern)
	if err != nil {
		return nil, err
	}

	var rules []Rule
	for _, entry := range entries {
		connector, ok := entry.Edge.ConnectorAtom()
		if !ok {
			// Rules with a nested-edge connector carry no classifiable
			// predicate; they never participate in validation.
			continue
		}
		if pattern == nil && !connector.IsPredicate() {
			continue
		}
		if _, enabled := active[entry.Attrs.Layer()]; !enabled {
			continue
		}
		if entry.Attrs.Confidence() < confidenceMin {
			continue
		}

		concepts := make(map[string]struct{})
		for _, atom := range entry.Edge.ConceptAtoms() {
			concepts[atom.String()] = struct{}{}
		}
		rules = append(rules, Rule{
			Edge:      entry.Edge,
			Attrs:     entry.Attrs,
			Connector: connector,
			concepts:  concepts,
		})
	}
	return rules, nil
}
