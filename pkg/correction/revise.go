package correction

import "github.com/agenticmemory/amem/pkg/graphstore"

// RevisionImpact describes one node whose confidence would be affected by
// retracting another.
type RevisionImpact struct {
	NodeID        uint64
	OldConfidence float64
	NewConfidence float64
}

// supportEdgeTypes are the edge types through which a retraction
// propagates: a node that was derived from, caused by, or supported by
// the retracted node loses confidence in proportion to that edge's
// weight.
var supportEdgeTypes = map[graphstore.EdgeType]bool{
	graphstore.CausedBy:    true,
	graphstore.DerivedFrom: true,
	graphstore.Supports:    true,
}

// Revise simulates retracting nodeID to newConfidence and cascades the
// effect to everything that depends on it: each dependent's confidence is
// multiplied by (1 - weight*(1-newConfidence/oldConfidence)), recursively,
// stopping once a dependent's computed confidence falls at or above
// threshold (it's considered unaffected past that point). Revise does not
// mutate the store; it returns the simulated impact so a caller can decide
// whether to apply it via repeated Correct calls.
func Revise(store *graphstore.Store, nodeID uint64, threshold, newConfidence float64) ([]RevisionImpact, error) {
	root, err := store.Peek(nodeID)
	if err != nil {
		return nil, err
	}
	if root.Confidence <= 0 {
		return nil, nil
	}

	var impacts []RevisionImpact
	visited := map[uint64]bool{nodeID: true}
	queue := []struct {
		id         uint64
		confidence float64
	}{{nodeID, newConfidence}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		parent, err := store.Peek(cur.id)
		if err != nil || parent.Confidence <= 0 {
			continue
		}
		dropRatio := 1 - cur.confidence/parent.Confidence

		for _, e := range store.InEdges(cur.id, supportEdgeTypes) {
			if visited[e.SourceID] {
				continue
			}
			dependent, err := store.Peek(e.SourceID)
			if err != nil {
				continue
			}
			newConf := dependent.Confidence * (1 - e.Weight*dropRatio)
			if newConf < 0 {
				newConf = 0
			}
			visited[e.SourceID] = true
			if newConf < threshold {
				impacts = append(impacts, RevisionImpact{
					NodeID:        e.SourceID,
					OldConfidence: dependent.Confidence,
					NewConfidence: newConf,
				})
				queue = append(queue, struct {
					id         uint64
					confidence float64
				}{e.SourceID, newConf})
			}
		}
	}
	return impacts, nil
}
