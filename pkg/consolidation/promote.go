package consolidation

import (
	"github.com/agenticmemory/amem/pkg/graphstore"
)

// PromotionMinAge is the minimum age an Inference must reach before it is
// eligible for promotion to Fact.
const PromotionMinAge = 7 * 24 * 60 * 60 * 1000000 // 7 days, in microseconds

// PromotionMinConfidence is the minimum confidence an Inference must carry
// to be promoted.
const PromotionMinConfidence = 0.8

// PromotionCandidate is an Inference node old and confident enough to
// become a Fact.
type PromotionCandidate struct {
	NodeID     uint64
	Content    string
	Confidence float64
}

// PromotionCandidates returns every live Inference node at least
// PromotionMinAge old with confidence at or above PromotionMinConfidence
// (spec.md §4.8).
func PromotionCandidates(store *graphstore.Store, now int64) []PromotionCandidate {
	var out []PromotionCandidate
	for _, n := range store.AllNodes() {
		if n.EventType != graphstore.Inference {
			continue
		}
		if now-n.CreatedAt < PromotionMinAge {
			continue
		}
		if n.Confidence < PromotionMinConfidence {
			continue
		}
		out = append(out, PromotionCandidate{NodeID: n.ID, Content: n.Content, Confidence: n.Confidence})
	}
	return out
}

// Promote append-and-supersedes: it adds a new Fact node carrying the same
// content and confidence, links it to the original Inference via
// Supersedes, and returns the new node's id. The original inference
// remains in the graph (tombstoned only by an explicit Delete, never by
// promotion), preserving the audit trail rather than rewriting the node in
// place (spec.md Open Question (a): promotion is audit-preserving).
func Promote(store *graphstore.Store, candidate PromotionCandidate) (uint64, error) {
	old, err := store.Peek(candidate.NodeID)
	if err != nil {
		return 0, err
	}
	newID, err := store.Add(graphstore.Fact, candidate.Content, old.SessionID, candidate.Confidence, old.Embedding, old.Tags)
	if err != nil {
		return 0, err
	}
	if _, err := store.Link(newID, candidate.NodeID, graphstore.Supersedes, 1.0); err != nil {
		return 0, err
	}
	return newID, nil
}
