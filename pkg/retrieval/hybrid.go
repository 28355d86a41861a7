package retrieval

import (
	"sort"

	"github.com/agenticmemory/amem/pkg/graphstore"
	"github.com/agenticmemory/amem/pkg/index"
)

// rrfK is the Reciprocal Rank Fusion constant (spec.md §4.6).
const rrfK = 60.0

// HybridWeights controls how much each side's RRF contribution counts.
// Spec defaults: text 0.6, vector 0.4.
type HybridWeights struct {
	Text   float64
	Vector float64
}

// DefaultWeights returns the spec's default fusion weights.
func DefaultWeights() HybridWeights {
	return HybridWeights{Text: 0.6, Vector: 0.4}
}

// HybridHit is a fused result from both the term and vector search paths.
type HybridHit struct {
	NodeID uint64
	Score  float64
}

// HybridSearch fuses BM25 and cosine vector search via Reciprocal Rank
// Fusion: each side contributes weight/(k+rank) per matching node, ranks
// are 1-based within each side's own top 4*k candidates. Ties break by
// newer created_at.
func HybridSearch(store *graphstore.Store, terms *index.Term, query string, queryEmbedding []float32, k int, weights HybridWeights) ([]HybridHit, error) {
	fetch := 4 * k
	if fetch < 1 {
		fetch = 1
	}

	textHits := terms.Search(query, fetch)

	var vectorHits []VectorHit
	if len(queryEmbedding) > 0 {
		var err error
		vectorHits, err = VectorSearch(store, queryEmbedding, fetch)
		if err != nil {
			return nil, err
		}
	}

	scores := make(map[uint64]float64)
	for rank, h := range textHits {
		scores[h.NodeID] += weights.Text / (rrfK + float64(rank+1))
	}
	for rank, h := range vectorHits {
		scores[h.NodeID] += weights.Vector / (rrfK + float64(rank+1))
	}

	hits := make([]HybridHit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, HybridHit{NodeID: id, Score: score})
	}

	createdAt := make(map[uint64]int64, len(hits))
	for _, h := range hits {
		if n, err := store.Peek(h.NodeID); err == nil {
			createdAt[h.NodeID] = n.CreatedAt
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return createdAt[hits[i].NodeID] > createdAt[hits[j].NodeID]
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}
