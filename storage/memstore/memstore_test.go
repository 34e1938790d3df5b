package memstore

import (
	"context"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semgraph/errors"
	"github.com/c360/semgraph/hedge"
	"github.com/c360/semgraph/storage"
)

func edgeStrings(entries []storage.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Edge.String())
	}
	sort.Strings(out)
	return out
}

func TestStore_AddQuery(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Add(ctx, hedge.MustParse("(is/P berlin/C city/C)"),
		storage.Attributes{storage.KeyLayer: "foundation"}))
	require.NoError(t, s.Add(ctx, hedge.MustParse("(is/P paris/C city/C)"), nil))
	require.NoError(t, s.Add(ctx, hedge.MustParse("(has/P paris/C tower/C)"), nil))

	all, err := s.Query(ctx, nil)
	require.NoError(t, err)
	want := []string{
		"(has/P paris/C tower/C)",
		"(is/P berlin/C city/C)",
		"(is/P paris/C city/C)",
	}
	if diff := cmp.Diff(want, edgeStrings(all)); diff != "" {
		t.Errorf("Query(nil) mismatch (-want +got):\n%s", diff)
	}

	cities, err := s.Query(ctx, hedge.MustParse("(is/P * city/C)"))
	require.NoError(t, err)
	assert.Len(t, cities, 2)

	exact, err := s.Query(ctx, hedge.MustParse("(is/P berlin/C city/C)"))
	require.NoError(t, err)
	require.Len(t, exact, 1)
	assert.Equal(t, "foundation", exact[0].Attrs.Layer())

	none, err := s.Query(ctx, hedge.MustParse("(is/C * city/C)"))
	require.NoError(t, err)
	assert.Empty(t, none, "typed pattern connector must not match /P connectors")
}

func TestStore_RejectsWildcardEdges(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.Add(ctx, hedge.MustParse("(is/P * city/C)"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func TestStore_AttrsReplaceAndIsolation(t *testing.T) {
	ctx := context.Background()
	s := New()
	edge := hedge.MustParse("(is/P berlin/C city/C)")

	attrs := storage.Attributes{storage.KeyLayer: "foundation"}
	require.NoError(t, s.Add(ctx, edge, attrs))

	// Mutating the caller's bag after Add must not leak into the store.
	attrs[storage.KeyLayer] = "mutated"
	got, err := s.GetAttrs(ctx, edge)
	require.NoError(t, err)
	assert.Equal(t, "foundation", got.Layer())

	// Re-adding replaces attributes.
	require.NoError(t, s.Add(ctx, edge, storage.Attributes{storage.KeyLayer: "user"}))
	got, err = s.GetAttrs(ctx, edge)
	require.NoError(t, err)
	assert.Equal(t, "user", got.Layer())

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_GetAttrs_AbsentEdge(t *testing.T) {
	ctx := context.Background()
	s := New()

	attrs, err := s.GetAttrs(ctx, hedge.MustParse("(is/P ghost/C edge/C)"))
	require.NoError(t, err)
	assert.Empty(t, attrs)
}

func TestStore_NeighborsSharingAtom(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Add(ctx, hedge.MustParse("(is/P a/C b/C)"), nil))
	require.NoError(t, s.Add(ctx, hedge.MustParse("(has/P b/C c/C)"), nil))
	require.NoError(t, s.Add(ctx, hedge.MustParse("(has/P c/C d/C)"), nil))
	require.NoError(t, s.Add(ctx, hedge.MustParse("(is/P x/C y/C)"), nil))

	neighbors, err := s.NeighborsSharingAtom(ctx, hedge.MustParse("(is/P a/C b/C)"))
	require.NoError(t, err)
	// Shares b/C with the second edge and is/P with the fourth; the third
	// edge shares nothing.
	want := []string{"(has/P b/C c/C)", "(is/P x/C y/C)"}
	if diff := cmp.Diff(want, edgeStrings(neighbors)); diff != "" {
		t.Errorf("neighbors mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_Remove(t *testing.T) {
	ctx := context.Background()
	s := New()
	edge := hedge.MustParse("(is/P a/C b/C)")

	require.NoError(t, s.Add(ctx, edge, nil))
	require.NoError(t, s.Add(ctx, hedge.MustParse("(has/P b/C c/C)"), nil))

	require.NoError(t, s.Remove(ctx, edge))
	require.NoError(t, s.Remove(ctx, edge), "removing an absent edge is not an error")

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	neighbors, err := s.NeighborsSharingAtom(ctx, hedge.MustParse("(has/P b/C c/C)"))
	require.NoError(t, err)
	assert.Empty(t, neighbors, "index entries of removed edges must be gone")
}

func TestStore_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New()
	_, err := s.Query(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
