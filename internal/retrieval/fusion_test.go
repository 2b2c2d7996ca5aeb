package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunk(id string, score float64) RetrievedChunk {
	return RetrievedChunk{ID: id, Content: "content " + id, Score: score}
}

func TestReciprocalRankFusionEmpty(t *testing.T) {
	fused := ReciprocalRankFusion(DefaultRRFK)
	assert.Empty(t, fused)

	fused = ReciprocalRankFusion(DefaultRRFK, nil, nil)
	assert.Empty(t, fused)
}

func TestReciprocalRankFusionSingleList(t *testing.T) {
	list := []RetrievedChunk{chunk("a", 0.9), chunk("b", 0.8), chunk("c", 0.7)}

	fused := ReciprocalRankFusion(60, list)
	require.Len(t, fused, 3)

	// Order preserved, scores replaced with 1/(k+rank).
	assert.Equal(t, "a", fused[0].ID)
	assert.InDelta(t, 1.0/60, fused[0].Score, 1e-12)
	assert.Equal(t, "b", fused[1].ID)
	assert.InDelta(t, 1.0/61, fused[1].Score, 1e-12)
	assert.Equal(t, "c", fused[2].ID)
	assert.InDelta(t, 1.0/62, fused[2].Score, 1e-12)
}

func TestReciprocalRankFusionSharedTop(t *testing.T) {
	// "a" tops both lists, so its fused score is 2/k and it must win.
	vector := []RetrievedChunk{chunk("a", 0.95), chunk("b", 0.80)}
	lexical := []RetrievedChunk{chunk("a", 12.1), chunk("c", 4.2)}

	fused := ReciprocalRankFusion(60, vector, lexical)
	require.Len(t, fused, 3)

	assert.Equal(t, "a", fused[0].ID)
	assert.InDelta(t, 2.0/60, fused[0].Score, 1e-12)
}

func TestReciprocalRankFusionOrdering(t *testing.T) {
	// a: rank 0 + rank 1 -> 1/60 + 1/61
	// b: rank 1 only     -> 1/61
	// c: rank 0 only     -> 1/60
	// d: rank 2 only     -> 1/62
	vector := []RetrievedChunk{chunk("a", 0.9), chunk("b", 0.8)}
	lexical := []RetrievedChunk{chunk("c", 9.0), chunk("a", 7.0), chunk("d", 3.0)}

	fused := ReciprocalRankFusion(60, vector, lexical)
	require.Len(t, fused, 4)

	ids := []string{fused[0].ID, fused[1].ID, fused[2].ID, fused[3].ID}
	assert.Equal(t, []string{"a", "c", "b", "d"}, ids)
}

func TestReciprocalRankFusionDeduplicates(t *testing.T) {
	vector := []RetrievedChunk{{ID: "a", Content: "from vector", Score: 0.9}}
	lexical := []RetrievedChunk{{ID: "a", Content: "from lexical", Score: 8.0}}

	fused := ReciprocalRankFusion(60, vector, lexical)
	require.Len(t, fused, 1)

	// First occurrence wins for content.
	assert.Equal(t, "from vector", fused[0].Content)
}

func TestReciprocalRankFusionTiesBreakByID(t *testing.T) {
	// Disjoint lists at the same ranks produce equal scores.
	vector := []RetrievedChunk{chunk("z", 0.9), chunk("x", 0.8)}
	lexical := []RetrievedChunk{chunk("m", 9.0), chunk("b", 7.0)}

	fused := ReciprocalRankFusion(60, vector, lexical)
	require.Len(t, fused, 4)

	// z and m tie at 1/60; x and b tie at 1/61. ID order breaks ties.
	assert.Equal(t, []string{"m", "z", "b", "x"},
		[]string{fused[0].ID, fused[1].ID, fused[2].ID, fused[3].ID})
}

func TestReciprocalRankFusionDefaultK(t *testing.T) {
	list := []RetrievedChunk{chunk("a", 0.9)}

	fused := ReciprocalRankFusion(0, list)
	require.Len(t, fused, 1)
	assert.InDelta(t, 1.0/DefaultRRFK, fused[0].Score, 1e-12)
}
