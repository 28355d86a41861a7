package query

import "github.com/agenticmemory/amem/pkg/graphstore"

const (
	pageRankDamping  = 0.85
	pageRankTol      = 1e-6
	pageRankMaxIters = 100
)

// PageRank computes PageRank over the full live graph, treating every edge
// as an undirected link for the transition matrix (spec.md §4.5). Returns
// a score per node id, normalized to sum to 1.
func PageRank(store *graphstore.Store) map[uint64]float64 {
	nodes := store.AllNodes()
	n := len(nodes)
	if n == 0 {
		return nil
	}

	ids := make([]uint64, n)
	index := make(map[uint64]int, n)
	for i, node := range nodes {
		ids[i] = node.ID
		index[node.ID] = i
	}

	adj := make([][]int, n)
	for i, id := range ids {
		for _, nb := range neighbors(store, id, Both, nil) {
			if j, ok := index[nb]; ok {
				adj[i] = append(adj[i], j)
			}
		}
	}

	rank := make([]float64, n)
	for i := range rank {
		rank[i] = 1.0 / float64(n)
	}

	for iter := 0; iter < pageRankMaxIters; iter++ {
		next := make([]float64, n)
		danglingSum := 0.0
		for i, out := range adj {
			if len(out) == 0 {
				danglingSum += rank[i]
			}
		}
		base := (1 - pageRankDamping) / float64(n)
		dangling := pageRankDamping * danglingSum / float64(n)
		for i := range next {
			next[i] = base + dangling
		}
		for i, out := range adj {
			if len(out) == 0 {
				continue
			}
			share := pageRankDamping * rank[i] / float64(len(out))
			for _, j := range out {
				next[j] += share
			}
		}

		delta := 0.0
		for i := range rank {
			d := next[i] - rank[i]
			if d < 0 {
				d = -d
			}
			delta += d
		}
		rank = next
		if delta < pageRankTol {
			break
		}
	}

	out := make(map[uint64]float64, n)
	for i, id := range ids {
		out[id] = rank[i]
	}
	return out
}

// Degree returns, per node id, the count of edges touching it in either
// direction.
func Degree(store *graphstore.Store) map[uint64]int {
	nodes := store.AllNodes()
	out := make(map[uint64]int, len(nodes))
	for _, n := range nodes {
		out[n.ID] = len(store.OutEdges(n.ID, nil)) + len(store.InEdges(n.ID, nil))
	}
	return out
}

// Betweenness computes node betweenness centrality via Brandes' algorithm
// over the graph treated as undirected and unweighted.
func Betweenness(store *graphstore.Store) map[uint64]float64 {
	nodes := store.AllNodes()
	n := len(nodes)
	if n == 0 {
		return nil
	}

	ids := make([]uint64, n)
	index := make(map[uint64]int, n)
	for i, node := range nodes {
		ids[i] = node.ID
		index[node.ID] = i
	}
	adj := make([][]int, n)
	for i, id := range ids {
		for _, nb := range neighbors(store, id, Both, nil) {
			if j, ok := index[nb]; ok {
				adj[i] = append(adj[i], j)
			}
		}
	}

	centrality := make([]float64, n)
	for s := 0; s < n; s++ {
		stack := make([]int, 0, n)
		pred := make([][]int, n)
		sigma := make([]float64, n)
		dist := make([]int, n)
		for i := range dist {
			dist[i] = -1
		}
		sigma[s] = 1
		dist[s] = 0
		queue := []int{s}

		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for _, w := range adj[v] {
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					pred[w] = append(pred[w], v)
				}
			}
		}

		delta := make([]float64, n)
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range pred[w] {
				delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
			}
			if w != s {
				centrality[w] += delta[w]
			}
		}
	}

	// undirected graph: each shortest path counted from both endpoints
	for i := range centrality {
		centrality[i] /= 2
	}

	out := make(map[uint64]float64, n)
	for i, id := range ids {
		out[id] = centrality[i]
	}
	return out
}
