package retrieval

import "sort"

// DefaultRRFK is the standard rank-fusion constant. It damps the
// contribution of lower-ranked results without letting any single list
// dominate.
const DefaultRRFK = 60

// ReciprocalRankFusion merges ranked result lists into a single ranking.
//
// Each chunk contributes 1/(k+rank) per list it appears in, with ranks
// starting at 0. Chunks are deduplicated by ID; the first occurrence wins
// for content and metadata, and Score is overwritten with the fused value.
// The result is sorted by fused score descending, ties broken by ID for
// determinism.
func ReciprocalRankFusion(k int, lists ...[]RetrievedChunk) []RetrievedChunk {
	if k <= 0 {
		k = DefaultRRFK
	}

	scores := make(map[string]float64)
	chunks := make(map[string]RetrievedChunk)
	for _, list := range lists {
		for rank, chunk := range list {
			scores[chunk.ID] += 1.0 / float64(k+rank)
			if _, seen := chunks[chunk.ID]; !seen {
				chunks[chunk.ID] = chunk
			}
		}
	}

	fused := make([]RetrievedChunk, 0, len(chunks))
	for id, chunk := range chunks {
		chunk.Score = scores[id]
		fused = append(fused, chunk)
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].ID < fused[j].ID
	})

	return fused
}
