// Package query implements the read-only graph operations layered over
// graphstore and index: pattern queries, traversal, shortest path,
// centrality, and causal impact (spec.md §4.5).
package query

import (
	"sort"

	"github.com/agenticmemory/amem/pkg/graphstore"
)

// Pattern filters the live node set. A zero-value field means "don't
// filter on this dimension".
type Pattern struct {
	EventType     graphstore.EventType
	SessionID     uint64
	HasSessionID  bool
	MinConfidence float64
	Tags          []string // node must carry every listed tag
	Limit         int      // 0 = unlimited
}

func (p Pattern) matches(n *graphstore.Node) bool {
	if p.EventType != "" && n.EventType != p.EventType {
		return false
	}
	if p.HasSessionID && n.SessionID != p.SessionID {
		return false
	}
	if n.Confidence < p.MinConfidence {
		return false
	}
	for _, tag := range p.Tags {
		if !hasTag(n.Tags, tag) {
			return false
		}
	}
	return true
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}

// Run filters nodes by pattern, sorts by created_at descending (newest
// first), and applies the pattern's limit.
func Run(store *graphstore.Store, p Pattern) []*graphstore.Node {
	all := store.AllNodes()
	out := make([]*graphstore.Node, 0, len(all))
	for _, n := range all {
		if p.matches(n) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	if p.Limit > 0 && len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out
}
