package correction

import (
	"sort"

	"github.com/agenticmemory/amem/pkg/graphstore"
)

// Gap is a node ranked by how dangerous its failure would be: many
// dependents with weak support are the riskiest single points of failure.
type Gap struct {
	NodeID           uint64
	DependentCount   int
	AvgSupportWeight float64
	Danger           float64
}

// Gaps ranks every live node that has at least one incoming CausedBy,
// DerivedFrom or Supports edge by danger = dependent_count * (1 -
// avg_support_weight), descending (spec.md §4.7); nodes without such
// dependents are not listed. A node with many
// dependents that each support it weakly ranks above one with few,
// strongly-supported dependents.
func Gaps(store *graphstore.Store) []Gap {
	var out []Gap
	for _, n := range store.AllNodes() {
		in := store.InEdges(n.ID, supportEdgeTypes)
		if len(in) == 0 {
			continue
		}
		var totalWeight float64
		for _, e := range in {
			totalWeight += e.Weight
		}
		avg := totalWeight / float64(len(in))
		out = append(out, Gap{
			NodeID:           n.ID,
			DependentCount:   len(in),
			AvgSupportWeight: avg,
			Danger:           float64(len(in)) * (1 - avg),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Danger != out[j].Danger {
			return out[i].Danger > out[j].Danger
		}
		return out[i].NodeID < out[j].NodeID
	})
	return out
}
