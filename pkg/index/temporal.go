// Package index maintains the five secondary indexes that sit beside the
// graph store's node/edge tables: temporal, term (BM25), type, session, and
// entity. Every index is kept in lockstep with Add/Link/Delete so queries
// never need to fall back to a full table scan.
package index

import "sort"

// Temporal indexes nodes by created_at, supporting range scans without
// touching the graph store.
type Temporal struct {
	entries []temporalEntry
}

type temporalEntry struct {
	createdAt int64
	nodeID    uint64
}

// NewTemporal returns an empty temporal index.
func NewTemporal() *Temporal {
	return &Temporal{}
}

// Add records a node's creation time, inserting it in createdAt order, so
// entries may be added in any order. Entries with equal createdAt keep
// their insertion order (ascending id for live Add calls and rebuilds).
func (t *Temporal) Add(nodeID uint64, createdAt int64) {
	i := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].createdAt > createdAt })
	t.entries = append(t.entries, temporalEntry{})
	copy(t.entries[i+1:], t.entries[i:])
	t.entries[i] = temporalEntry{createdAt: createdAt, nodeID: nodeID}
}

// Remove drops nodeID's entry, if present.
func (t *Temporal) Remove(nodeID uint64) {
	for i, e := range t.entries {
		if e.nodeID == nodeID {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return
		}
	}
}

// Range returns node ids with createdAt in [from, to], oldest first.
func (t *Temporal) Range(from, to int64) []uint64 {
	lo := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].createdAt >= from })
	var out []uint64
	for i := lo; i < len(t.entries) && t.entries[i].createdAt <= to; i++ {
		out = append(out, t.entries[i].nodeID)
	}
	return out
}

// Since returns node ids created at or after from, oldest first.
func (t *Temporal) Since(from int64) []uint64 {
	return t.Range(from, 1<<63-1)
}

// Reset clears the index.
func (t *Temporal) Reset() {
	t.entries = t.entries[:0]
}
