package codec

import "github.com/agenticmemory/amem/pkg/graphstore"

// nodeRecord is the MessagePack wire shape for a persisted Node. Field order
// is fixed by struct tag, not by Go field order, so adding a field never
// reshuffles existing ones on disk.
type nodeRecord struct {
	ID           uint64    `msgpack:"id"`
	EventType    string    `msgpack:"event_type"`
	Content      string    `msgpack:"content"`
	Confidence   float64   `msgpack:"confidence"`
	SessionID    uint64    `msgpack:"session_id"`
	CreatedAt    int64     `msgpack:"created_at"`
	AccessCount  uint64    `msgpack:"access_count"`
	LastAccessed *int64    `msgpack:"last_accessed,omitempty"`
	DecayScore   float64   `msgpack:"decay_score"`
	Embedding    []float32 `msgpack:"embedding,omitempty"`
	Tags         []string  `msgpack:"tags,omitempty"`
}

func toNodeRecord(n *graphstore.Node) nodeRecord {
	return nodeRecord{
		ID:           n.ID,
		EventType:    string(n.EventType),
		Content:      n.Content,
		Confidence:   n.Confidence,
		SessionID:    n.SessionID,
		CreatedAt:    n.CreatedAt,
		AccessCount:  n.AccessCount,
		LastAccessed: n.LastAccessed,
		DecayScore:   n.DecayScore,
		Embedding:    n.Embedding,
		Tags:         n.Tags,
	}
}

func (r nodeRecord) toNode() *graphstore.Node {
	return &graphstore.Node{
		ID:           r.ID,
		EventType:    graphstore.EventType(r.EventType),
		Content:      r.Content,
		Confidence:   r.Confidence,
		SessionID:    r.SessionID,
		CreatedAt:    r.CreatedAt,
		AccessCount:  r.AccessCount,
		LastAccessed: r.LastAccessed,
		DecayScore:   r.DecayScore,
		Embedding:    r.Embedding,
		Tags:         r.Tags,
	}
}

// edgeRecord is the MessagePack wire shape for a persisted Edge.
type edgeRecord struct {
	ID        uint64  `msgpack:"id"`
	SourceID  uint64  `msgpack:"source_id"`
	TargetID  uint64  `msgpack:"target_id"`
	EdgeType  string  `msgpack:"edge_type"`
	Weight    float64 `msgpack:"weight"`
	CreatedAt int64   `msgpack:"created_at"`
}

func toEdgeRecord(e *graphstore.Edge) edgeRecord {
	return edgeRecord{
		ID:        e.ID,
		SourceID:  e.SourceID,
		TargetID:  e.TargetID,
		EdgeType:  string(e.EdgeType),
		Weight:    e.Weight,
		CreatedAt: e.CreatedAt,
	}
}

func (r edgeRecord) toEdge() *graphstore.Edge {
	return &graphstore.Edge{
		ID:        r.ID,
		SourceID:  r.SourceID,
		TargetID:  r.TargetID,
		EdgeType:  graphstore.EdgeType(r.EdgeType),
		Weight:    r.Weight,
		CreatedAt: r.CreatedAt,
	}
}
