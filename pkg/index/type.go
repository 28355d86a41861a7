package index

import "github.com/agenticmemory/amem/pkg/graphstore"

// Type indexes nodes by their CognitiveEvent type.
type Type struct {
	byType map[graphstore.EventType]map[uint64]bool
}

// NewType returns an empty type index.
func NewType() *Type {
	return &Type{byType: make(map[graphstore.EventType]map[uint64]bool)}
}

// Add records nodeID under eventType.
func (idx *Type) Add(nodeID uint64, eventType graphstore.EventType) {
	set, ok := idx.byType[eventType]
	if !ok {
		set = make(map[uint64]bool)
		idx.byType[eventType] = set
	}
	set[nodeID] = true
}

// Remove drops nodeID from eventType's set.
func (idx *Type) Remove(nodeID uint64, eventType graphstore.EventType) {
	if set, ok := idx.byType[eventType]; ok {
		delete(set, nodeID)
	}
}

// Lookup returns every node id recorded under eventType.
func (idx *Type) Lookup(eventType graphstore.EventType) []uint64 {
	set, ok := idx.byType[eventType]
	if !ok {
		return nil
	}
	out := make([]uint64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// Reset clears the index.
func (idx *Type) Reset() {
	idx.byType = make(map[graphstore.EventType]map[uint64]bool)
}
