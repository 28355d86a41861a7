package consolidation

import (
	"github.com/agenticmemory/amem/pkg/decay"
	"github.com/agenticmemory/amem/pkg/graphstore"
)

// CompactionCandidates returns live node ids whose decay score falls below
// keepAbove AND that have zero incoming edges of any type: nodes nobody
// depends on that have also faded past relevance (spec.md §4.8).
func CompactionCandidates(store *graphstore.Store, now int64, params decay.Params, keepAbove float64) []uint64 {
	var out []uint64
	for _, n := range store.AllNodes() {
		if len(store.InEdges(n.ID, nil)) > 0 {
			continue
		}
		if decay.Score(n, now, params) >= keepAbove {
			continue
		}
		out = append(out, n.ID)
	}
	return out
}

// Compact purges every candidate node from the live graph store. The
// caller is responsible for having already written a record of the
// removal to the immortal log before calling this, since Purge does not
// retain any trace in graphstore itself.
func Compact(store *graphstore.Store, candidates []uint64) {
	for _, id := range candidates {
		store.Purge(id)
	}
}
