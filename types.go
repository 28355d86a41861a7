// Package amem is a knowledge graph memory system for AI agents: a
// single-writer/multi-reader graph store with BM25 and vector retrieval,
// confidence decay, belief revision, consolidation, and a tamper-evident
// immortal log (see SPEC_FULL.md).
package amem

import (
	"github.com/agenticmemory/amem/pkg/consolidation"
	"github.com/agenticmemory/amem/pkg/correction"
	"github.com/agenticmemory/amem/pkg/decay"
	"github.com/agenticmemory/amem/pkg/graphstore"
	"github.com/agenticmemory/amem/pkg/query"
	"github.com/agenticmemory/amem/pkg/retrieval"
)

// Type re-exports for caller convenience, so importers of this package
// never need to reach into pkg/graphstore or its siblings directly.

// Node is re-exported from graphstore.
type Node = graphstore.Node

// Edge is re-exported from graphstore.
type Edge = graphstore.Edge

// EventType is re-exported from graphstore.
type EventType = graphstore.EventType

// EdgeType is re-exported from graphstore.
type EdgeType = graphstore.EdgeType

// EventType constants re-exported from graphstore.
const (
	Fact       = graphstore.Fact
	Decision   = graphstore.Decision
	Inference  = graphstore.Inference
	Correction = graphstore.Correction
	Skill      = graphstore.Skill
	Episode    = graphstore.Episode
)

// EdgeType constants re-exported from graphstore.
const (
	CausedBy     = graphstore.CausedBy
	DerivedFrom  = graphstore.DerivedFrom
	Supports     = graphstore.Supports
	Contradicts  = graphstore.Contradicts
	Supersedes   = graphstore.Supersedes
	RelatedTo    = graphstore.RelatedTo
	PartOf       = graphstore.PartOf
	TemporalNext = graphstore.TemporalNext
)

// Direction is re-exported from query, for Traverse callers.
type Direction = query.Direction

const (
	Forward  = query.Forward
	Backward = query.Backward
	Both     = query.Both
)

// TraversalOptions is re-exported from query.
type TraversalOptions = query.TraversalOptions

// Visited is re-exported from query.
type Visited = query.Visited

// Pattern is re-exported from query.
type Pattern = query.Pattern

// DecayParams is re-exported from decay.
type DecayParams = decay.Params

// HybridWeights is re-exported from retrieval.
type HybridWeights = retrieval.HybridWeights

// HybridHit is re-exported from retrieval.
type HybridHit = retrieval.HybridHit

// GroundingReport is re-exported from retrieval.
type GroundingReport = retrieval.GroundingReport

// GroundingVerdict is re-exported from retrieval.
type GroundingVerdict = retrieval.Verdict

// RevisionImpact is re-exported from correction.
type RevisionImpact = correction.RevisionImpact

// Gap is re-exported from correction.
type Gap = correction.Gap

// AnalogyHit is re-exported from correction.
type AnalogyHit = correction.AnalogyHit

// DriftStep is re-exported from correction.
type DriftStep = correction.DriftStep

// DedupPair is re-exported from consolidation.
type DedupPair = consolidation.DedupPair

// ContradictionPair is re-exported from consolidation.
type ContradictionPair = consolidation.ContradictionPair

// PromotionCandidate is re-exported from consolidation.
type PromotionCandidate = consolidation.PromotionCandidate

// Stats summarizes the current size and health of a Handle's store.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	NextNodeID  uint64
	NextEdgeID  uint64
	LogSequence uint64
}
