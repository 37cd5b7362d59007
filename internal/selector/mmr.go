// Package selector implements maximal marginal relevance re-ranking. Given a
// relevance-ordered candidate pool that was over-fetched from the vector
// index, it picks the subset that balances closeness to the query against
// redundancy with what has already been picked, so the generator is never fed
// several near-duplicate passages restating the same sentence.
package selector

import (
	"fmt"

	"dochat/internal/domain"
	"dochat/internal/vectorstore"
)

// Select picks up to k candidates by maximal marginal relevance:
//
//	score(c) = lambda*sim(query, c) - (1-lambda)*max(sim(c, s) for s in selected)
//
// candidates must be ordered most-relevant-first (as returned by
// VectorIndex.Search); ties in marginal score break toward the earlier
// relevance rank. lambda 1 degenerates to pure relevance ranking, lambda 0 to
// pure diversity. The output preserves selection order, and selection stops
// early when candidates are exhausted.
func Select(query []float64, candidates []domain.ScoredChunk, k int, lambda float64) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k %d must be positive", domain.ErrInvalidConfiguration, k)
	}
	if lambda < 0 || lambda > 1 {
		return nil, fmt.Errorf("%w: lambda %v must be in [0, 1]", domain.ErrInvalidConfiguration, lambda)
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	relevance := make([]float64, len(candidates))
	for i, c := range candidates {
		relevance[i] = vectorstore.Cosine(query, c.Chunk.Vector)
	}

	selected := make([]domain.ScoredChunk, 0, k)
	picked := make([]bool, len(candidates))
	for len(selected) < k {
		bestIdx := -1
		bestScore := 0.0
		for i, c := range candidates {
			if picked[i] {
				continue
			}
			// Zero when nothing is selected yet, otherwise the max
			// similarity to any already-selected chunk.
			redundancy := 0.0
			for j, s := range selected {
				sim := vectorstore.Cosine(c.Chunk.Vector, s.Chunk.Vector)
				if j == 0 || sim > redundancy {
					redundancy = sim
				}
			}
			score := lambda*relevance[i] - (1-lambda)*redundancy
			// Strict comparison keeps the earlier (more relevant) candidate on ties.
			if bestIdx == -1 || score > bestScore {
				bestIdx = i
				bestScore = score
			}
		}
		picked[bestIdx] = true
		selected = append(selected, candidates[bestIdx])
	}
	return selected, nil
}
