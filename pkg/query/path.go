package query

import "github.com/agenticmemory/amem/pkg/graphstore"

// ShortestPath finds a minimum-hop path from start to goal using uniform
// cost BFS, optionally restricted to edgeTypes. Returns nil if no path
// exists within maxDepth hops (0 = unbounded).
func ShortestPath(store *graphstore.Store, start, goal uint64, edgeTypes map[graphstore.EdgeType]bool, maxDepth int) []uint64 {
	if start == goal {
		return []uint64{start}
	}

	parent := map[uint64]uint64{start: start}
	queue := []struct {
		id    uint64
		depth int
	}{{start, 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if maxDepth > 0 && cur.depth >= maxDepth {
			continue
		}
		for _, nb := range neighbors(store, cur.id, Both, edgeTypes) {
			if _, seen := parent[nb]; seen {
				continue
			}
			parent[nb] = cur.id
			if nb == goal {
				return reconstructPath(parent, start, goal)
			}
			queue = append(queue, struct {
				id    uint64
				depth int
			}{nb, cur.depth + 1})
		}
	}
	return nil
}

func reconstructPath(parent map[uint64]uint64, start, goal uint64) []uint64 {
	path := []uint64{goal}
	cur := goal
	for cur != start {
		cur = parent[cur]
		path = append(path, cur)
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
