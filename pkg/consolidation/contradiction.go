package consolidation

import (
	"github.com/agenticmemory/amem/pkg/graphstore"
	"github.com/agenticmemory/amem/pkg/index"
)

// ContradictionTopicThreshold is the minimum BM25 overlap two Decision
// nodes must share to be considered "about the same topic" and therefore
// eligible for a Contradicts link.
const ContradictionTopicThreshold = 0.5

// ContradictionPair is two decisions judged to address the same topic
// without already being linked.
type ContradictionPair struct {
	AID, BID uint64
	Overlap  float64
}

// LinkContradictions finds pairs of live Decision nodes whose BM25 overlap
// clears ContradictionTopicThreshold and that are not already connected by
// a Contradicts or Supersedes edge, reporting them as candidates (spec.md
// §4.8). It does not itself write edges; call ApplyContradictions to do so.
func LinkContradictions(store *graphstore.Store, terms *index.Term) []ContradictionPair {
	decisions := nodesOfType(store, graphstore.Decision)
	var pairs []ContradictionPair

	for i := 0; i < len(decisions); i++ {
		a := decisions[i]
		for j := i + 1; j < len(decisions); j++ {
			b := decisions[j]
			if alreadyLinked(store, a.ID, b.ID) {
				continue
			}
			overlap := bm25Overlap(terms, a.ID, a.Content, b.ID)
			if overlap < ContradictionTopicThreshold {
				continue
			}
			pairs = append(pairs, ContradictionPair{AID: a.ID, BID: b.ID, Overlap: overlap})
		}
	}
	return pairs
}

func nodesOfType(store *graphstore.Store, t graphstore.EventType) []*graphstore.Node {
	var out []*graphstore.Node
	for _, n := range store.AllNodes() {
		if n.EventType == t {
			out = append(out, n)
		}
	}
	return out
}

func alreadyLinked(store *graphstore.Store, a, b uint64) bool {
	types := map[graphstore.EdgeType]bool{graphstore.Contradicts: true, graphstore.Supersedes: true}
	for _, e := range store.OutEdges(a, types) {
		if e.TargetID == b {
			return true
		}
	}
	for _, e := range store.InEdges(a, types) {
		if e.SourceID == b {
			return true
		}
	}
	return false
}

// ApplyContradictions writes a Contradicts edge for every reported pair.
func ApplyContradictions(store *graphstore.Store, pairs []ContradictionPair) error {
	for _, p := range pairs {
		if _, err := store.Link(p.AID, p.BID, graphstore.Contradicts, p.Overlap); err != nil {
			return err
		}
	}
	return nil
}
