package memory

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dochat/internal/domain"
)

func embedded(id string, vec ...float64) domain.EmbeddedChunk {
	return domain.EmbeddedChunk{
		Chunk:  domain.Chunk{ID: id, DocumentID: "doc", PageNumber: 1, Text: id},
		Vector: vec,
	}
}

func TestSearchOrdersByDescendingSimilarity(t *testing.T) {
	ix := New()
	err := ix.Build(context.Background(), []domain.EmbeddedChunk{
		embedded("far", -1, 0),
		embedded("exact", 1, 0),
		embedded("orthogonal", 0, 1),
		embedded("close", 0.9, 0.44),
	})
	require.NoError(t, err)

	got, err := ix.Search(context.Background(), []float64{1, 0}, 4)
	require.NoError(t, err)
	require.Len(t, got, 4)

	ids := make([]string, len(got))
	for i, sc := range got {
		ids[i] = sc.Chunk.ID
		if i > 0 {
			assert.LessOrEqual(t, sc.Score, got[i-1].Score)
		}
	}
	assert.Equal(t, []string{"exact", "close", "orthogonal", "far"}, ids)
}

func TestSearchCapsAtIndexSize(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Build(context.Background(), []domain.EmbeddedChunk{
		embedded("a", 1, 0),
		embedded("b", 0, 1),
	}))

	got, err := ix.Search(context.Background(), []float64{1, 1}, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = ix.Search(context.Background(), []float64{1, 1}, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSearchEmptyIndex(t *testing.T) {
	ix := New()
	got, err := ix.Search(context.Background(), []float64{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, ix.Len())
}

func TestBuildReplacesWholesale(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Build(context.Background(), []domain.EmbeddedChunk{
		embedded("old-0", 1, 0),
		embedded("old-1", 0, 1),
		embedded("old-2", 1, 1),
	}))
	assert.Equal(t, 3, ix.Len())

	fresh := make([]domain.EmbeddedChunk, 2)
	for i := range fresh {
		fresh[i] = embedded("new-"+strconv.Itoa(i), float64(i), 1)
	}
	require.NoError(t, ix.Build(context.Background(), fresh))
	assert.Equal(t, 2, ix.Len())

	got, err := ix.Search(context.Background(), []float64{1, 1}, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, sc := range got {
		assert.Contains(t, sc.Chunk.ID, "new-")
	}
}

func TestBuildCopiesInput(t *testing.T) {
	ix := New()
	chunks := []domain.EmbeddedChunk{embedded("a", 1, 0)}
	require.NoError(t, ix.Build(context.Background(), chunks))

	// Mutating the caller's slice must not reach the published snapshot.
	chunks[0] = embedded("mutated", 0, 1)
	got, err := ix.Search(context.Background(), []float64{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Chunk.ID)
}
