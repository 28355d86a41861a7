// Package retrieval implements the BM25, vector, and hybrid search paths
// plus grounding verdicts (spec.md §4.6).
package retrieval

import (
	"math"
	"sort"

	"github.com/agenticmemory/amem/pkg/errs"
	"github.com/agenticmemory/amem/pkg/graphstore"
)

// CosineSimilarity returns the cosine similarity of a and b, in [-1, 1].
// Embeddings persisted by this store are not guaranteed normalized, unlike
// the teacher's, so this always does the full norm computation rather than
// assuming unit vectors.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, errs.New(errs.KindDimensionMismatch, "embedding lengths %d and %d differ", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// VectorHit is a single cosine-similarity match.
type VectorHit struct {
	NodeID uint64
	Score  float64
}

// VectorSearch scores every live node carrying an embedding against query
// and returns the top-k by cosine similarity, descending. Fails
// DimensionMismatch if query's length does not match the store's declared
// embedding dimension.
func VectorSearch(store *graphstore.Store, query []float32, k int) ([]VectorHit, error) {
	dim := store.Dimension()
	if dim > 0 && len(query) != dim {
		return nil, errs.New(errs.KindDimensionMismatch, "query embedding length %d does not match store dimension %d", len(query), dim)
	}

	var hits []VectorHit
	for _, n := range store.AllNodes() {
		if len(n.Embedding) == 0 {
			continue
		}
		sim, err := CosineSimilarity(query, n.Embedding)
		if err != nil {
			return nil, err
		}
		hits = append(hits, VectorHit{NodeID: n.ID, Score: sim})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].NodeID < hits[j].NodeID
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}
