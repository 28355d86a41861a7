package correction

import (
	"sort"

	"github.com/agenticmemory/amem/pkg/graphstore"
)

// AnalogyHit is a node judged structurally similar to the query node.
type AnalogyHit struct {
	NodeID  uint64
	Jaccard float64
}

// Analogy finds the topK nodes whose outgoing edge-type multiset is most
// similar to nodeID's, by Jaccard similarity (spec.md §4.7). Two nodes
// that both "caused_by + supports + supports" something play the same
// structural role even if their content is unrelated.
func Analogy(store *graphstore.Store, nodeID uint64, topK int) []AnalogyHit {
	target := edgeTypeMultiset(store, nodeID)
	if len(target) == 0 {
		return nil
	}

	var hits []AnalogyHit
	for _, n := range store.AllNodes() {
		if n.ID == nodeID {
			continue
		}
		candidate := edgeTypeMultiset(store, n.ID)
		if len(candidate) == 0 {
			continue
		}
		j := jaccard(target, candidate)
		if j > 0 {
			hits = append(hits, AnalogyHit{NodeID: n.ID, Jaccard: j})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Jaccard != hits[j].Jaccard {
			return hits[i].Jaccard > hits[j].Jaccard
		}
		return hits[i].NodeID < hits[j].NodeID
	})
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// edgeTypeMultiset returns nodeID's outgoing edge types as counts, the
// multiset Analogy compares with Jaccard similarity.
func edgeTypeMultiset(store *graphstore.Store, nodeID uint64) map[graphstore.EdgeType]int {
	out := store.OutEdges(nodeID, nil)
	if len(out) == 0 {
		return nil
	}
	counts := make(map[graphstore.EdgeType]int, len(out))
	for _, e := range out {
		counts[e.EdgeType]++
	}
	return counts
}

// jaccard computes |intersection|/|union| over two edge-type multisets,
// treating each (type, count) pair as contributing min/max counts to the
// intersection/union.
func jaccard(a, b map[graphstore.EdgeType]int) float64 {
	var intersection, union int
	seen := make(map[graphstore.EdgeType]bool)
	for t, ca := range a {
		seen[t] = true
		cb := b[t]
		intersection += minInt(ca, cb)
		union += maxInt(ca, cb)
	}
	for t, cb := range b {
		if seen[t] {
			continue
		}
		union += cb
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
