package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semgraph/hedge"
	"github.com/c360/semgraph/storage"
	"github.com/c360/semgraph/storage/memstore"
)

func active(names ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

func TestRuleIndex_ActiveRules_LayerAndConfidence(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	require.NoError(t, store.Add(ctx, hedge.MustParse("(recommends/P walking/C health/C)"),
		storage.Attributes{storage.KeyLayer: "foundation", storage.KeyConfidence: "0.9"}))
	require.NoError(t, store.Add(ctx, hedge.MustParse("(recommends/P running/C health/C)"),
		storage.Attributes{storage.KeyLayer: "foundation", storage.KeyConfidence: "0.3"}))
	require.NoError(t, store.Add(ctx, hedge.MustParse("(recommends/P yoga/C health/C)"),
		storage.Attributes{storage.KeyLayer: "plan"}))
	// No layer attribute: never active.
	require.NoError(t, store.Add(ctx, hedge.MustParse("(recommends/P tea/C health/C)"), nil))

	index := NewRuleIndex(store)

	rules, err := index.ActiveRules(ctx, nil, active("foundation"), 0.5)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "(recommends/P walking/C health/C)", rules[0].Edge.String())
	assert.Equal(t, "recommends", rules[0].Connector.ID)
	assert.ElementsMatch(t, []string{"walking/C", "health/C"}, rules[0].Concepts())

	rules, err = index.ActiveRules(ctx, nil, active("foundation", "plan"), 0)
	require.NoError(t, err)
	assert.Len(t, rules, 3)

	rules, err = index.ActiveRules(ctx, nil, active(), 0)
	require.NoError(t, err)
	assert.Empty(t, rules, "empty active set yields no rules")
}

func TestRuleIndex_DefaultSelectionIsPredicateConnectors(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	require.NoError(t, store.Add(ctx, hedge.MustParse("(recommends/P walking/C health/C)"),
		storage.Attributes{storage.KeyLayer: "foundation"}))
	// Concept connector: not selected by the default rule pattern.
	require.NoError(t, store.Add(ctx, hedge.MustParse("(walking/C exercise/C)"),
		storage.Attributes{storage.KeyLayer: "foundation"}))

	index := NewRuleIndex(store)
	rules, err := index.ActiveRules(ctx, nil, active("foundation"), 0)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.True(t, rules[0].Connector.IsPredicate())
}

func TestRuleIndex_ExplicitPattern(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	require.NoError(t, store.Add(ctx, hedge.MustParse("(contraindicated/P ibuprofen/C diabetes/C)"),
		storage.Attributes{storage.KeyLayer: "foundation"}))
	require.NoError(t, store.Add(ctx, hedge.MustParse("(recommends/P walking/C health/C)"),
		storage.Attributes{storage.KeyLayer: "foundation"}))

	index := NewRuleIndex(store)
	rules, err := index.ActiveRules(ctx,
		hedge.MustParse("(contraindicated/P * *)"), active("foundation"), 0)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "contraindicated", rules[0].Connector.ID)
}
