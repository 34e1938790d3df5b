package badgerstore

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semgraph/errors"
	"github.com/c360/semgraph/hedge"
	"github.com/c360/semgraph/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func edgeStrings(entries []storage.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Edge.String())
	}
	sort.Strings(out)
	return out
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingConfig)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	edge := hedge.MustParse("(contraindicated/P ibuprofen/C diabetes/C)")
	attrs := storage.Attributes{
		storage.KeyLayer:     "foundation",
		storage.KeyMandatory: "true",
	}
	require.NoError(t, s.Add(ctx, edge, attrs))

	got, err := s.GetAttrs(ctx, edge)
	require.NoError(t, err)
	assert.Equal(t, "foundation", got.Layer())
	assert.True(t, got.Mandatory())

	entries, err := s.Query(ctx, hedge.MustParse("(contraindicated/P * *)"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Edge.Equal(edge))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cfg := DefaultConfig(dir)
	cfg.SyncWrites = false

	s, err := Open(cfg)
	require.NoError(t, err)
	edge := hedge.MustParse("(is/P berlin/C city/C)")
	require.NoError(t, s.Add(ctx, edge, storage.Attributes{storage.KeyLayer: "foundation"}))
	require.NoError(t, s.Close())

	s, err = Open(cfg)
	require.NoError(t, err)
	defer s.Close()

	attrs, err := s.GetAttrs(ctx, edge)
	require.NoError(t, err)
	assert.Equal(t, "foundation", attrs.Layer())
}

func TestStore_NeighborsSharingAtom(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Add(ctx, hedge.MustParse("(is/P a/C b/C)"), nil))
	require.NoError(t, s.Add(ctx, hedge.MustParse("(has/P b/C c/C)"), nil))
	require.NoError(t, s.Add(ctx, hedge.MustParse("(has/P c/C d/C)"), nil))

	neighbors, err := s.NeighborsSharingAtom(ctx, hedge.MustParse("(is/P a/C b/C)"))
	require.NoError(t, err)
	assert.Equal(t, []string{"(has/P b/C c/C)"}, edgeStrings(neighbors))
}

func TestStore_RemoveCleansIndex(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	edge := hedge.MustParse("(is/P a/C b/C)")
	other := hedge.MustParse("(has/P b/C c/C)")
	require.NoError(t, s.Add(ctx, edge, nil))
	require.NoError(t, s.Add(ctx, other, nil))

	require.NoError(t, s.Remove(ctx, edge))
	require.NoError(t, s.Remove(ctx, edge), "removing an absent edge is not an error")

	neighbors, err := s.NeighborsSharingAtom(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, neighbors)
}

func TestStore_RejectsWildcardEdges(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	err := s.Add(ctx, hedge.MustParse("(is/P * b/C)"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}
