// Package correction implements belief revision over the graph: supersede
// chains, counterfactual retraction, gap/danger ranking, analogy, and
// drift (spec.md §4.7).
package correction

import (
	"github.com/agenticmemory/amem/pkg/errs"
	"github.com/agenticmemory/amem/pkg/graphstore"
)

// Correct creates a new node holding newContent and links it to oldID via
// a Supersedes edge (new -> old), returning the new node's id. The store's
// own cycle check rejects a correction that would loop back to an
// ancestor.
func Correct(store *graphstore.Store, oldID uint64, newContent string, confidence float64) (uint64, error) {
	old, err := store.Peek(oldID)
	if err != nil {
		return 0, err
	}
	newID, err := store.Add(graphstore.Correction, newContent, old.SessionID, confidence, nil, old.Tags)
	if err != nil {
		return 0, err
	}
	if _, err := store.Link(newID, oldID, graphstore.Supersedes, 1.0); err != nil {
		return 0, err
	}
	return newID, nil
}

// Resolve follows the chain of nodes that supersede id (Supersedes edges
// point from the newer node to the one it replaces) forward to the
// terminal, currently-believed version. Fails InvariantViolation if the
// chain does not terminate, which would indicate a cycle the store's
// write-time check should have prevented.
func Resolve(store *graphstore.Store, id uint64) (uint64, error) {
	cur := id
	seen := map[uint64]bool{cur: true}
	for {
		in := store.InEdges(cur, map[graphstore.EdgeType]bool{graphstore.Supersedes: true})
		if len(in) == 0 {
			return cur, nil
		}
		next := in[0].SourceID
		if seen[next] {
			return 0, errs.New(errs.KindInvariantViolation, "supersedes cycle detected resolving node %d", id)
		}
		seen[next] = true
		cur = next
	}
}

// IsTerminal reports whether id has no incoming Supersedes edge, i.e.
// nothing has replaced it and it is the current belief in its chain.
func IsTerminal(store *graphstore.Store, id uint64) bool {
	return len(store.InEdges(id, map[graphstore.EdgeType]bool{graphstore.Supersedes: true})) == 0
}
