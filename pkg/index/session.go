package index

// Session indexes nodes by the session that produced them.
type Session struct {
	bySession map[uint64]map[uint64]bool
}

// NewSession returns an empty session index.
func NewSession() *Session {
	return &Session{bySession: make(map[uint64]map[uint64]bool)}
}

// Add records nodeID under sessionID.
func (idx *Session) Add(nodeID, sessionID uint64) {
	set, ok := idx.bySession[sessionID]
	if !ok {
		set = make(map[uint64]bool)
		idx.bySession[sessionID] = set
	}
	set[nodeID] = true
}

// Remove drops nodeID from sessionID's set.
func (idx *Session) Remove(nodeID, sessionID uint64) {
	if set, ok := idx.bySession[sessionID]; ok {
		delete(set, nodeID)
	}
}

// Lookup returns every node id recorded under sessionID.
func (idx *Session) Lookup(sessionID uint64) []uint64 {
	set, ok := idx.bySession[sessionID]
	if !ok {
		return nil
	}
	out := make([]uint64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// Sessions returns every distinct session id seen so far.
func (idx *Session) Sessions() []uint64 {
	out := make([]uint64, 0, len(idx.bySession))
	for id := range idx.bySession {
		out = append(out, id)
	}
	return out
}

// Reset clears the index.
func (idx *Session) Reset() {
	idx.bySession = make(map[uint64]map[uint64]bool)
}
