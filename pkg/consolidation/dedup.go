// Package consolidation implements the maintenance passes that keep a
// long-lived graph usable: deduplication, contradiction linking, inference
// promotion, and compaction (spec.md §4.8).
package consolidation

import (
	"github.com/agenticmemory/amem/pkg/graphstore"
	"github.com/agenticmemory/amem/pkg/index"
	"github.com/agenticmemory/amem/pkg/retrieval"
)

// DedupThreshold is the spec's similarity cutoff: a pair counts as a
// duplicate only when both cosine and BM25 agree at or above this value.
const DedupThreshold = 0.90

// DedupPair is one detected duplicate: the older node to keep and the
// newer one to fold in.
type DedupPair struct {
	KeptID       uint64
	SupersededID uint64
	CosineScore  float64
	BM25Score    float64
}

// Deduplicate scans all live nodes carrying an embedding and reports pairs
// whose cosine similarity AND BM25 overlap both clear DedupThreshold. The
// older node (by created_at) is kept; the newer one is the candidate to
// fold in via Supersedes (spec.md §4.8: "older keeps id"). Deduplicate
// does not mutate the store; call Apply to act on the report.
func Deduplicate(store *graphstore.Store, terms *index.Term) ([]DedupPair, error) {
	nodes := store.AllNodes()
	var pairs []DedupPair

	for i := 0; i < len(nodes); i++ {
		a := nodes[i]
		if len(a.Embedding) == 0 {
			continue
		}
		for j := i + 1; j < len(nodes); j++ {
			b := nodes[j]
			if len(b.Embedding) == 0 || len(a.Embedding) != len(b.Embedding) {
				continue
			}

			cosine, err := retrieval.CosineSimilarity(a.Embedding, b.Embedding)
			if err != nil || cosine < DedupThreshold {
				continue
			}

			bm25 := bm25Overlap(terms, a.ID, a.Content, b.ID)
			if bm25 < DedupThreshold {
				continue
			}

			older, newer := a, b
			if newer.CreatedAt < older.CreatedAt {
				older, newer = newer, older
			}
			pairs = append(pairs, DedupPair{
				KeptID:       older.ID,
				SupersededID: newer.ID,
				CosineScore:  cosine,
				BM25Score:    bm25,
			})
		}
	}
	return pairs, nil
}

// bm25Overlap queries aContent against terms and compares b's BM25 score
// to a's own self-match score. A near-duplicate of a scores close to a's
// self-match, giving a result close to 1.0 regardless of corpus size.
func bm25Overlap(terms *index.Term, aID uint64, aContent string, bID uint64) float64 {
	hits := terms.Search(aContent, 0)
	var selfScore, otherScore float64
	for _, h := range hits {
		switch h.NodeID {
		case aID:
			selfScore = h.Score
		case bID:
			otherScore = h.Score
		}
	}
	if selfScore <= 0 {
		return 0
	}
	return otherScore / selfScore
}

// Apply supersedes every newer node in pairs with the corresponding kept
// node via a direct Supersedes edge.
func Apply(store *graphstore.Store, pairs []DedupPair) error {
	for _, p := range pairs {
		if _, err := store.Link(p.KeptID, p.SupersededID, graphstore.Supersedes, 1.0); err != nil {
			return err
		}
	}
	return nil
}
