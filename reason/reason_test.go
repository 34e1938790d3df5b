package reason

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semgraph/errors"
	"github.com/c360/semgraph/hedge"
	"github.com/c360/semgraph/storage"
	"github.com/c360/semgraph/storage/memstore"
)

func seedStore(t *testing.T, edges ...string) storage.Graph {
	t.Helper()
	store := memstore.New()
	for _, s := range edges {
		require.NoError(t, store.Add(context.Background(), hedge.MustParse(s), nil))
	}
	return store
}

// An unstored literal start anchors the first hop through its atoms but
// is not itself a result; the one-hop neighbor carries the start in its
// path.
func TestReason_UnstoredStartSeedsWithoutEmission(t *testing.T) {
	store := seedStore(t, "(related/P b/C c/C)")
	r := New(store)

	results, err := r.Reason(context.Background(), hedge.MustParse("(is/P a/C b/C)"), 1, 100)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "(related/P b/C c/C)", results[0].EdgeStr)
	assert.Equal(t, 1, results[0].Distance)
	assert.Equal(t, []string{"(is/P a/C b/C)"}, results[0].Path)
}

func TestReason_StoredStartAtDistanceZero(t *testing.T) {
	store := seedStore(t,
		"(is/P a/C b/C)",
		"(related/P b/C c/C)",
	)
	r := New(store)

	results, err := r.Reason(context.Background(), hedge.MustParse("(is/P a/C b/C)"), 1, 100)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "(is/P a/C b/C)", results[0].EdgeStr)
	assert.Equal(t, 0, results[0].Distance)
	assert.Empty(t, results[0].Path)
	assert.Equal(t, "(related/P b/C c/C)", results[1].EdgeStr)
	assert.Equal(t, 1, results[1].Distance)
	assert.Equal(t, []string{"(is/P a/C b/C)"}, results[1].Path)
}

func TestReason_DistancesAndHopBound(t *testing.T) {
	// Chain a-b, b-c, c-d, d-e through shared concepts.
	store := seedStore(t,
		"(r1/P a/C b/C)",
		"(r2/P b/C c/C)",
		"(r3/P c/C d/C)",
		"(r4/P d/C e/C)",
	)
	r := New(store)

	results, err := r.Reason(context.Background(), hedge.MustParse("(r1/P a/C b/C)"), 2, 100)
	require.NoError(t, err)

	byEdge := make(map[string]Result, len(results))
	for _, res := range results {
		byEdge[res.EdgeStr] = res
		assert.LessOrEqual(t, res.Distance, 2, "no result beyond the hop bound")
	}

	require.Len(t, results, 3)
	assert.Equal(t, 0, byEdge["(r1/P a/C b/C)"].Distance)
	assert.Equal(t, 1, byEdge["(r2/P b/C c/C)"].Distance)
	assert.Equal(t, 2, byEdge["(r3/P c/C d/C)"].Distance)
	assert.Equal(t,
		[]string{"(r1/P a/C b/C)", "(r2/P b/C c/C)"},
		byEdge["(r3/P c/C d/C)"].Path)
	assert.NotContains(t, byEdge, "(r4/P d/C e/C)")
}

func TestReason_WildcardStartSeedsAllMatches(t *testing.T) {
	store := seedStore(t,
		"(likes/P alice/C jazz/C)",
		"(likes/P bob/C rock/C)",
		"(plays/P jazz/C trumpet/C)",
	)
	r := New(store)

	results, err := r.Reason(context.Background(), hedge.MustParse("(likes/P * *)"), 1, 100)
	require.NoError(t, err)

	byEdge := make(map[string]Result, len(results))
	for _, res := range results {
		byEdge[res.EdgeStr] = res
	}
	require.Len(t, results, 3)
	assert.Equal(t, 0, byEdge["(likes/P alice/C jazz/C)"].Distance)
	assert.Equal(t, 0, byEdge["(likes/P bob/C rock/C)"].Distance)
	assert.Equal(t, 1, byEdge["(plays/P jazz/C trumpet/C)"].Distance)
	assert.Equal(t, []string{"(likes/P alice/C jazz/C)"},
		byEdge["(plays/P jazz/C trumpet/C)"].Path)
}

func TestReason_LimitCutsMidLayer(t *testing.T) {
	store := seedStore(t,
		"(hub/P x/C a/C)",
		"(s1/P x/C b/C)",
		"(s2/P x/C c/C)",
		"(s3/P x/C d/C)",
	)
	r := New(store)

	results, err := r.Reason(context.Background(), hedge.MustParse("(hub/P x/C a/C)"), 1, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestReason_PatternMatchingNothing(t *testing.T) {
	store := seedStore(t, "(is/P a/C b/C)")
	r := New(store)

	results, err := r.Reason(context.Background(), hedge.MustParse("(missing/P * *)"), 2, 100)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestReason_NoRevisits(t *testing.T) {
	// Triangle: every pair of edges shares an atom.
	store := seedStore(t,
		"(r1/P a/C b/C)",
		"(r2/P b/C c/C)",
		"(r3/P c/C a/C)",
	)
	r := New(store)

	results, err := r.Reason(context.Background(), hedge.MustParse("(r1/P a/C b/C)"), 5, 100)
	require.NoError(t, err)
	assert.Len(t, results, 3, "each edge is reached exactly once")
}

func TestReason_InvalidArguments(t *testing.T) {
	r := New(memstore.New())
	start := hedge.MustParse("(is/P a/C b/C)")

	_, err := r.Reason(context.Background(), nil, 1, 10)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	_, err = r.Reason(context.Background(), start, 0, 10)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	_, err = r.Reason(context.Background(), start, -1, 10)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	_, err = r.Reason(context.Background(), start, 1, 0)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func TestReason_AttrsCarriedOnResults(t *testing.T) {
	store := memstore.New()
	require.NoError(t, store.Add(context.Background(),
		hedge.MustParse("(related/P b/C c/C)"),
		storage.Attributes{storage.KeyLayer: "foundation", storage.KeySource: "pack"}))
	r := New(store)

	results, err := r.Reason(context.Background(), hedge.MustParse("(is/P a/C b/C)"), 1, 100)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "foundation", results[0].Attrs.Layer())
	assert.Equal(t, "pack", results[0].Attrs.Source())
}
