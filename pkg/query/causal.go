package query

import "github.com/agenticmemory/amem/pkg/graphstore"

// causalEdgeTypes are the edge types that express "this followed from
// that": a node impacts everything that names it as a cause, derivation,
// or support.
var causalEdgeTypes = map[graphstore.EdgeType]bool{
	graphstore.CausedBy:    true,
	graphstore.DerivedFrom: true,
	graphstore.Supports:    true,
}

// Impact is a node reached by following causal edges backward from their
// target to their source, annotated with how many hops away it is.
type Impact struct {
	NodeID uint64
	Depth  int
}

// CausalImpact returns every node downstream of nodeID: nodes that cite
// nodeID (directly or transitively) via CausedBy/DerivedFrom/Supports
// edges. Traversal direction is Backward because those edge types point
// from effect to cause, so "what does this node impact" means "who points
// at me".
func CausalImpact(store *graphstore.Store, nodeID uint64, maxDepth int) []Impact {
	opts := TraversalOptions{
		Direction:  Backward,
		EdgeTypes:  causalEdgeTypes,
		MaxDepth:   maxDepth,
		MaxResults: 1 << 20,
	}
	visited := BFS(store, nodeID, opts)
	out := make([]Impact, len(visited))
	for i, v := range visited {
		out[i] = Impact{NodeID: v.NodeID, Depth: v.Depth}
	}
	return out
}
