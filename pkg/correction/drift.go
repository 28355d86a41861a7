package correction

import (
	"sort"

	"github.com/agenticmemory/amem/pkg/graphstore"
	"github.com/agenticmemory/amem/pkg/index"
)

// DriftStep is one point in a topic's content evolution over time.
type DriftStep struct {
	NodeID    uint64
	Content   string
	CreatedAt int64
}

// Drift returns nodes matching topic by BM25, ordered oldest-to-newest, up
// to limit entries (spec.md §4.7: "time-ordered content evolution").
// Useful for watching how a belief about topic changed across corrections.
func Drift(store *graphstore.Store, terms *index.Term, topic string, limit int) []DriftStep {
	matchLimit := limit
	if matchLimit <= 0 || matchLimit > 1000 {
		matchLimit = 1000
	}
	hits := terms.Search(topic, matchLimit)

	steps := make([]DriftStep, 0, len(hits))
	for _, h := range hits {
		n, err := store.Peek(h.NodeID)
		if err != nil {
			continue
		}
		steps = append(steps, DriftStep{NodeID: n.ID, Content: n.Content, CreatedAt: n.CreatedAt})
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].CreatedAt < steps[j].CreatedAt })
	if limit > 0 && len(steps) > limit {
		steps = steps[:limit]
	}
	return steps
}
