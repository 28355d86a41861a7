package index

import "github.com/agenticmemory/amem/pkg/graphstore"

// Set bundles the five secondary indexes and keeps them synchronized with
// the graph store's mutations (spec.md §4.3: indexes update synchronously
// on add/link/delete, never lazily).
type Set struct {
	Temporal *Temporal
	Term     *Term
	Type     *Type
	Session  *Session
	Entity   *Entity

	content map[uint64]string // retained so Remove can re-derive term/entity sets
}

// NewSet returns five empty indexes.
func NewSet() *Set {
	return &Set{
		Temporal: NewTemporal(),
		Term:     NewTerm(),
		Type:     NewType(),
		Session:  NewSession(),
		Entity:   NewEntity(),
		content:  make(map[uint64]string),
	}
}

// OnAdd records a newly added node across all five indexes.
func (s *Set) OnAdd(n *graphstore.Node) {
	s.Temporal.Add(n.ID, n.CreatedAt)
	s.Term.Add(n.ID, n.Content)
	s.Type.Add(n.ID, n.EventType)
	s.Session.Add(n.ID, n.SessionID)
	s.Entity.Add(n.ID, n.Content)
	s.content[n.ID] = n.Content
}

// OnDelete removes a tombstoned node from every index. eventType and
// sessionID must match the values the node was added with.
func (s *Set) OnDelete(id uint64, eventType graphstore.EventType, sessionID uint64) {
	s.Temporal.Remove(id)
	s.Term.Remove(id)
	s.Type.Remove(id, eventType)
	s.Session.Remove(id, sessionID)
	if content, ok := s.content[id]; ok {
		s.Entity.Remove(id, content)
		delete(s.content, id)
	}
}

// Reset clears every index. Used before Rebuild.
func (s *Set) Reset() {
	s.Temporal.Reset()
	s.Term.Reset()
	s.Type.Reset()
	s.Session.Reset()
	s.Entity.Reset()
	s.content = make(map[uint64]string)
}

// Rebuild discards all index state and repopulates it from the graph
// store's current live nodes, in ascending id (hence ascending created_at
// for any single-writer history) order.
func Rebuild(store *graphstore.Store) *Set {
	s := NewSet()
	for _, n := range store.AllNodes() {
		s.OnAdd(n)
	}
	return s
}
