// Package graphstore holds the in-memory node/edge tables that back an
// AgenticMemory handle: id allocation, adjacency, and the small set of
// mutations (add, link, get, delete) every other component reads through.
package graphstore

import "time"

// EventType classifies a CognitiveEvent.
type EventType string

const (
	Fact       EventType = "fact"
	Decision   EventType = "decision"
	Inference  EventType = "inference"
	Correction EventType = "correction"
	Skill      EventType = "skill"
	Episode    EventType = "episode"
)

// ValidEventType reports whether t is one of the six closed event types.
func ValidEventType(t EventType) bool {
	switch t {
	case Fact, Decision, Inference, Correction, Skill, Episode:
		return true
	}
	return false
}

// EdgeType classifies the semantic relationship an Edge carries.
type EdgeType string

const (
	CausedBy     EdgeType = "caused_by"
	DerivedFrom  EdgeType = "derived_from"
	Supports     EdgeType = "supports"
	Contradicts  EdgeType = "contradicts"
	Supersedes   EdgeType = "supersedes"
	RelatedTo    EdgeType = "related_to"
	PartOf       EdgeType = "part_of"
	TemporalNext EdgeType = "temporal_next"
)

// ValidEdgeType reports whether t is one of the eight closed edge types.
func ValidEdgeType(t EdgeType) bool {
	switch t {
	case CausedBy, DerivedFrom, Supports, Contradicts, Supersedes, RelatedTo, PartOf, TemporalNext:
		return true
	}
	return false
}

// Node is a single cognitive event: a fact, decision, inference, correction,
// skill, or episode. Node.ID is assigned by Store.Add and never reused.
type Node struct {
	ID             uint64
	EventType      EventType
	Content        string
	Confidence     float64
	SessionID      uint64
	CreatedAt      int64 // microseconds since Unix epoch
	AccessCount    uint64
	LastAccessed   *int64 // microseconds since Unix epoch, nil until first access
	DecayScore     float64
	Embedding      []float32 // nil if the file carries no embeddings, or this node has none
	Tags           []string
	Tombstoned     bool
	TombstonedAt   *int64
}

// Clone returns a deep copy of n, safe to hand to a caller outside the lock.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := *n
	if n.LastAccessed != nil {
		v := *n.LastAccessed
		cp.LastAccessed = &v
	}
	if n.TombstonedAt != nil {
		v := *n.TombstonedAt
		cp.TombstonedAt = &v
	}
	if n.Embedding != nil {
		cp.Embedding = append([]float32(nil), n.Embedding...)
	}
	if n.Tags != nil {
		cp.Tags = append([]string(nil), n.Tags...)
	}
	return &cp
}

// Edge is a directed, typed relationship between two nodes.
type Edge struct {
	ID        uint64
	SourceID  uint64
	TargetID  uint64
	EdgeType  EdgeType
	Weight    float64
	CreatedAt int64 // microseconds since Unix epoch
}

// NowMicros returns the current time as microseconds since the Unix epoch,
// the unit every timestamp in the store is kept in (spec.md §3).
func NowMicros() int64 {
	return time.Now().UnixMicro()
}
