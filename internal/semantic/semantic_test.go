package semantic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexTermAndSimilarTermsFindsClosestMatch(t *testing.T) {
	ix, err := NewIndex()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, ix.IndexTerm(ctx, "cat", "cat"))
	require.NoError(t, ix.IndexTerm(ctx, "catfish", "catfish"))
	require.NoError(t, ix.IndexTerm(ctx, "airplane", "airplane"))

	matches, err := ix.SimilarTerms(ctx, "cat", 2)
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	assert.Contains(t, ids, "cat")
}

func TestSimilarTermsOnEmptyIndexReturnsNothing(t *testing.T) {
	ix, err := NewIndex()
	require.NoError(t, err)

	matches, err := ix.SimilarTerms(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestEmbedIsDeterministicAndNormalized(t *testing.T) {
	v1, err := embed(context.Background(), "hello")
	require.NoError(t, err)
	v2, err := embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)

	var norm float32
	for _, x := range v1 {
		norm += x * x
	}
	assert.InDelta(t, 1.0, float64(norm), 1e-3)
}
