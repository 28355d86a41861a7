package query

import "github.com/agenticmemory/amem/pkg/graphstore"

// Direction controls which adjacency a traversal follows.
type Direction int

const (
	Forward Direction = iota
	Backward
	Both
)

const (
	defaultMaxDepth   = 5
	defaultMaxResults = 50
)

// TraversalOptions configures BFS/DFS (spec.md §4.5).
type TraversalOptions struct {
	Direction     Direction
	EdgeTypes     map[graphstore.EdgeType]bool // nil/empty = all types
	MaxDepth      int                          // 0 = use defaultMaxDepth
	MaxResults    int                          // 0 = use defaultMaxResults
	MinConfidence float64                      // nodes below this are pruned
}

func (o *TraversalOptions) normalize() {
	if o.MaxDepth <= 0 {
		o.MaxDepth = defaultMaxDepth
	}
	if o.MaxResults <= 0 {
		o.MaxResults = defaultMaxResults
	}
}

// Visited is one node reached by a traversal, at the depth it was first
// reached.
type Visited struct {
	NodeID uint64
	Depth  int
}

func neighbors(store *graphstore.Store, nodeID uint64, dir Direction, edgeTypes map[graphstore.EdgeType]bool) []uint64 {
	var out []uint64
	if dir == Forward || dir == Both {
		for _, e := range store.OutEdges(nodeID, edgeTypes) {
			out = append(out, e.TargetID)
		}
	}
	if dir == Backward || dir == Both {
		for _, e := range store.InEdges(nodeID, edgeTypes) {
			out = append(out, e.SourceID)
		}
	}
	return out
}

// BFS traverses breadth-first from start, respecting MaxDepth, MaxResults,
// EdgeTypes, and MinConfidence. start itself is not included in the result.
func BFS(store *graphstore.Store, start uint64, opts TraversalOptions) []Visited {
	opts.normalize()

	visited := map[uint64]bool{start: true}
	queue := []Visited{{NodeID: start, Depth: 0}}
	var result []Visited

	for len(queue) > 0 && len(result) < opts.MaxResults {
		cur := queue[0]
		queue = queue[1:]
		if cur.Depth >= opts.MaxDepth {
			continue
		}
		for _, nb := range neighbors(store, cur.NodeID, opts.Direction, opts.EdgeTypes) {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			node, err := store.Peek(nb)
			if err != nil || node.Confidence < opts.MinConfidence {
				continue
			}
			v := Visited{NodeID: nb, Depth: cur.Depth + 1}
			result = append(result, v)
			if len(result) >= opts.MaxResults {
				break
			}
			queue = append(queue, v)
		}
	}
	return result
}

// DFS traverses depth-first from start, respecting the same options as BFS.
func DFS(store *graphstore.Store, start uint64, opts TraversalOptions) []Visited {
	opts.normalize()

	visited := map[uint64]bool{start: true}
	var result []Visited

	var walk func(nodeID uint64, depth int)
	walk = func(nodeID uint64, depth int) {
		if depth >= opts.MaxDepth || len(result) >= opts.MaxResults {
			return
		}
		for _, nb := range neighbors(store, nodeID, opts.Direction, opts.EdgeTypes) {
			if len(result) >= opts.MaxResults {
				return
			}
			if visited[nb] {
				continue
			}
			visited[nb] = true
			node, err := store.Peek(nb)
			if err != nil || node.Confidence < opts.MinConfidence {
				continue
			}
			result = append(result, Visited{NodeID: nb, Depth: depth + 1})
			walk(nb, depth+1)
		}
	}
	walk(start, 0)
	return result
}
