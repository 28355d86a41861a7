package retrieval

import (
	"github.com/agenticmemory/amem/pkg/graphstore"
	"github.com/agenticmemory/amem/pkg/index"
	"github.com/agenticmemory/amem/pkg/query"
)

// Verdict classifies how well a claim is supported by existing memory
// (spec.md §4.6).
type Verdict string

const (
	Grounded   Verdict = "grounded"
	Partial    Verdict = "partial"
	Ungrounded Verdict = "ungrounded"
)

// DefaultGroundingThreshold is the minimum hybrid score a claim's best
// match must clear to count as supporting evidence.
const DefaultGroundingThreshold = 0.3

// GroundingReport is the result of checking a claim against the store.
type GroundingReport struct {
	Verdict        Verdict
	BestMatch      uint64
	BestScore      float64
	Contradictions []uint64
}

// CheckGrounding searches for evidence supporting claim and reports
// whether it is grounded, partially grounded, or ungrounded. A claim with
// a hybrid match at or above threshold is Grounded; a weaker but nonzero
// match is Partial; no match is Ungrounded. Contradictions lists nodes
// reachable from the best match within two hops via a Contradicts edge.
func CheckGrounding(store *graphstore.Store, terms *index.Term, claim string, claimEmbedding []float32, threshold float64) (GroundingReport, error) {
	if threshold <= 0 {
		threshold = DefaultGroundingThreshold
	}

	hits, err := HybridSearch(store, terms, claim, claimEmbedding, 5, DefaultWeights())
	if err != nil {
		return GroundingReport{}, err
	}
	if len(hits) == 0 {
		return GroundingReport{Verdict: Ungrounded}, nil
	}

	best := hits[0]
	report := GroundingReport{BestMatch: best.NodeID, BestScore: best.Score}
	switch {
	case best.Score >= threshold:
		report.Verdict = Grounded
	case best.Score > 0:
		report.Verdict = Partial
	default:
		report.Verdict = Ungrounded
	}

	contradictionTypes := map[graphstore.EdgeType]bool{graphstore.Contradicts: true}
	for _, v := range query.BFS(store, best.NodeID, query.TraversalOptions{Direction: query.Both, EdgeTypes: contradictionTypes, MaxDepth: 2}) {
		report.Contradictions = append(report.Contradictions, v.NodeID)
	}
	return report, nil
}
