package graphstore

import (
	"sort"
	"sync"

	"github.com/agenticmemory/amem/pkg/errs"
)

// Store owns the node and edge tables exclusively (spec.md §3 Ownership).
// It is safe for concurrent use: writers take the exclusive lock, readers
// the shared one, matching the single-writer/multi-reader model in §5.
type Store struct {
	mu sync.RWMutex

	dimension int // embedding dimension declared at file creation; 0 = no embeddings

	nextID   uint64
	nodes    map[uint64]*Node
	nodeByID []uint64 // insertion order, strictly increasing ids

	nextEdgeID uint64
	edges      map[uint64]*Edge

	// adjacency: nodeID -> edge ids where it is the source / target
	outEdges map[uint64][]uint64
	inEdges  map[uint64][]uint64
}

// New creates an empty Store. dimension is the embedding width declared at
// file creation; pass 0 for a store that carries no embeddings.
func New(dimension int) *Store {
	return &Store{
		dimension: dimension,
		nextID:    1,
		nodes:     make(map[uint64]*Node),
		edges:     make(map[uint64]*Edge),
		outEdges:  make(map[uint64][]uint64),
		inEdges:   make(map[uint64][]uint64),
	}
}

// Dimension returns the file-declared embedding dimension (0 if none).
func (s *Store) Dimension() int {
	return s.dimension
}

// NextNodeID returns the id that will be assigned to the next Add call.
// The codec persists this explicitly so a node id is never reassigned even
// if the node that held it was later deleted and dropped from the live
// table.
func (s *Store) NextNodeID() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID
}

// NextEdgeID returns the id that will be assigned to the next Link call.
func (s *Store) NextEdgeID() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextEdgeID
}

// Add appends a node and returns its freshly allocated id (spec.md §4.2).
func (s *Store) Add(eventType EventType, content string, sessionID uint64, confidence float64, embedding []float32, tags []string) (uint64, error) {
	if !ValidEventType(eventType) {
		return 0, errs.New(errs.KindInvalidArgument, "unknown event type %q", eventType)
	}
	if content == "" {
		return 0, errs.New(errs.KindInvalidArgument, "content must not be empty")
	}
	if confidence < 0.0 || confidence > 1.0 {
		return 0, errs.New(errs.KindInvalidArgument, "confidence %f out of range [0,1]", confidence)
	}
	if embedding != nil {
		if s.dimension == 0 {
			return 0, errs.New(errs.KindInvalidArgument, "file declares no embedding dimension but embedding was supplied")
		}
		if len(embedding) != s.dimension {
			return 0, errs.New(errs.KindInvalidArgument, "embedding length %d does not match file dimension %d", len(embedding), s.dimension)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	node := &Node{
		ID:         id,
		EventType:  eventType,
		Content:    content,
		Confidence: confidence,
		SessionID:  sessionID,
		CreatedAt:  NowMicros(),
		DecayScore: confidence,
	}
	if embedding != nil {
		node.Embedding = append([]float32(nil), embedding...)
	}
	if tags != nil {
		node.Tags = append([]string(nil), tags...)
	}

	s.nodes[id] = node
	s.nodeByID = append(s.nodeByID, id)
	return id, nil
}

// Link creates an edge between two existing nodes (spec.md §4.2). It fails
// InvariantViolation if the new edge would close a cycle among Supersedes
// edges (spec.md invariant 2).
func (s *Store) Link(sourceID, targetID uint64, edgeType EdgeType, weight float64) (uint64, error) {
	if !ValidEdgeType(edgeType) {
		return 0, errs.New(errs.KindInvalidArgument, "unknown edge type %q", edgeType)
	}
	if weight < 0.0 || weight > 1.0 {
		return 0, errs.New(errs.KindInvalidArgument, "weight %f out of range [0,1]", weight)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[sourceID]; !ok {
		return 0, errs.New(errs.KindNotFound, "source node %d not found", sourceID)
	}
	if _, ok := s.nodes[targetID]; !ok {
		return 0, errs.New(errs.KindNotFound, "target node %d not found", targetID)
	}

	if edgeType == Supersedes {
		if s.wouldCreateSupersedesCycle(sourceID, targetID) {
			return 0, errs.New(errs.KindInvariantViolation, "supersedes edge %d -> %d would create a cycle", sourceID, targetID)
		}
	}

	id := s.nextEdgeID
	s.nextEdgeID++

	edge := &Edge{
		ID:        id,
		SourceID:  sourceID,
		TargetID:  targetID,
		EdgeType:  edgeType,
		Weight:    weight,
		CreatedAt: NowMicros(),
	}
	s.edges[id] = edge
	s.outEdges[sourceID] = append(s.outEdges[sourceID], id)
	s.inEdges[targetID] = append(s.inEdges[targetID], id)
	return id, nil
}

// wouldCreateSupersedesCycle reports whether adding a Supersedes edge
// source->target would create a cycle, by checking whether target can
// already reach source through existing Supersedes edges. Must be called
// with s.mu held.
func (s *Store) wouldCreateSupersedesCycle(source, target uint64) bool {
	if source == target {
		return true
	}
	visited := map[uint64]bool{target: true}
	queue := []uint64{target}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, eid := range s.outEdges[cur] {
			e := s.edges[eid]
			if e.EdgeType != Supersedes {
				continue
			}
			if e.TargetID == source {
				return true
			}
			if !visited[e.TargetID] {
				visited[e.TargetID] = true
				queue = append(queue, e.TargetID)
			}
		}
	}
	return false
}

// Get returns a copy of the node, incrementing its access_count and setting
// last_accessed (spec.md §4.2). Fails NotFound if the node is absent or
// tombstoned.
func (s *Store) Get(id uint64) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok || node.Tombstoned {
		return nil, errs.New(errs.KindNotFound, "node %d not found", id)
	}
	node.AccessCount++
	now := NowMicros()
	node.LastAccessed = &now
	return node.Clone(), nil
}

// Peek returns a copy of the node without recording an access. Used by
// components that need to read state without affecting decay/eviction
// scoring (e.g. index rebuilds, validation).
func (s *Store) Peek(id uint64) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.nodes[id]
	if !ok || node.Tombstoned {
		return nil, errs.New(errs.KindNotFound, "node %d not found", id)
	}
	return node.Clone(), nil
}

// Delete appends a tombstone; the node persists in the immortal log for
// audit but is no longer visible through Get/Peek or range scans.
func (s *Store) Delete(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.nodes[id]
	if !ok || node.Tombstoned {
		return errs.New(errs.KindNotFound, "node %d not found", id)
	}
	node.Tombstoned = true
	now := NowMicros()
	node.TombstonedAt = &now
	return nil
}

// Purge permanently removes a node and its incident edges from the live
// tables. Used only by compaction (spec.md §4.8); the immortal log retains
// the original record regardless.
func (s *Store) Purge(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.nodes, id)
	for _, eid := range append(append([]uint64{}, s.outEdges[id]...), s.inEdges[id]...) {
		e, ok := s.edges[eid]
		if !ok {
			continue
		}
		delete(s.edges, eid)
		s.removeFromAdjacency(e)
	}
	delete(s.outEdges, id)
	delete(s.inEdges, id)
}

func (s *Store) removeFromAdjacency(e *Edge) {
	s.outEdges[e.SourceID] = removeID(s.outEdges[e.SourceID], e.ID)
	s.inEdges[e.TargetID] = removeID(s.inEdges[e.TargetID], e.ID)
}

func removeID(ids []uint64, target uint64) []uint64 {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// NodeExists reports whether id names a live (non-tombstoned) node.
func (s *Store) NodeExists(id uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	return ok && !n.Tombstoned
}

// NodeCount returns the number of live (non-tombstoned) nodes.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, node := range s.nodes {
		if !node.Tombstoned {
			n++
		}
	}
	return n
}

// EdgeCount returns the number of edges.
func (s *Store) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

// AllNodes returns copies of every live node, sorted by id ascending. Used
// by index rebuilds and the codec's save path.
func (s *Store) AllNodes() []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uint64, 0, len(s.nodes))
	for id, n := range s.nodes {
		if !n.Tombstoned {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.nodes[id].Clone())
	}
	return out
}

// AllEdges returns copies of every edge, sorted by id ascending.
func (s *Store) AllEdges() []*Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uint64, 0, len(s.edges))
	for id := range s.edges {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*Edge, 0, len(ids))
	for _, id := range ids {
		e := *s.edges[id]
		out = append(out, &e)
	}
	return out
}

// OutEdges returns copies of the edges for which nodeID is the source,
// optionally restricted to a set of edge types (nil/empty = all types).
func (s *Store) OutEdges(nodeID uint64, types map[EdgeType]bool) []*Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Edge
	for _, eid := range s.outEdges[nodeID] {
		e := s.edges[eid]
		if e == nil {
			continue
		}
		if len(types) > 0 && !types[e.EdgeType] {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out
}

// InEdges returns copies of the edges for which nodeID is the target,
// optionally restricted to a set of edge types.
func (s *Store) InEdges(nodeID uint64, types map[EdgeType]bool) []*Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Edge
	for _, eid := range s.inEdges[nodeID] {
		e := s.edges[eid]
		if e == nil {
			continue
		}
		if len(types) > 0 && !types[e.EdgeType] {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out
}

// LoadSnapshot rebuilds the in-memory tables from a previously persisted
// node/edge set (used by the codec on open). Ids are trusted verbatim; the
// caller (codec) is responsible for having validated the file.
func (s *Store) LoadSnapshot(nodes []*Node, edges []*Edge, nextNodeID, nextEdgeID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[uint64]*Node, len(nodes))
	s.nodeByID = s.nodeByID[:0]
	for _, n := range nodes {
		cp := n.Clone()
		s.nodes[cp.ID] = cp
		s.nodeByID = append(s.nodeByID, cp.ID)
	}

	s.edges = make(map[uint64]*Edge, len(edges))
	s.outEdges = make(map[uint64][]uint64)
	s.inEdges = make(map[uint64][]uint64)
	for _, e := range edges {
		cp := *e
		s.edges[cp.ID] = &cp
		s.outEdges[cp.SourceID] = append(s.outEdges[cp.SourceID], cp.ID)
		s.inEdges[cp.TargetID] = append(s.inEdges[cp.TargetID], cp.ID)
	}

	s.nextID = nextNodeID
	s.nextEdgeID = nextEdgeID
}
