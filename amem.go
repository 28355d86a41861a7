package amem

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/agenticmemory/amem/pkg/codec"
	"github.com/agenticmemory/amem/pkg/consolidation"
	"github.com/agenticmemory/amem/pkg/correction"
	"github.com/agenticmemory/amem/pkg/decay"
	"github.com/agenticmemory/amem/pkg/errs"
	"github.com/agenticmemory/amem/pkg/graphstore"
	"github.com/agenticmemory/amem/pkg/immortal"
	"github.com/agenticmemory/amem/pkg/index"
	"github.com/agenticmemory/amem/pkg/metrics"
	"github.com/agenticmemory/amem/pkg/query"
	"github.com/agenticmemory/amem/pkg/retrieval"
	"github.com/agenticmemory/amem/pkg/trace"
)

// RetrievalConfig tunes the BM25/RRF knobs the retrieval engine uses.
type RetrievalConfig struct {
	// RRFK is filled with 60 by ApplyDefaults. SearchHybrid and
	// CheckGrounding do not read it; retrieval always fuses with its own
	// fixed constant of 60.
	RRFK float64
	// WText and WVec are the hybrid fusion weights (default 0.6 / 0.4).
	WText, WVec float64
	// GroundingThreshold is the minimum best-match score counted as
	// "grounded" (default 0.3).
	GroundingThreshold float64
}

// Config configures a Handle, mirroring the teacher's gognee.Config shape:
// a flat struct of tunables with documented defaults applied by
// ApplyDefaults.
type Config struct {
	// Path is the .amem file this Handle persists to. Empty means an
	// ephemeral in-memory store with no backing file.
	Path string

	// EmbeddingDimension is the fixed vector width D declared for new
	// stores. Ignored when opening an existing file (the file's own
	// dimension wins).
	EmbeddingDimension int

	// Retrieval tunes BM25/RRF/grounding knobs.
	Retrieval RetrievalConfig

	// Decay tunes the confidence decay constants (λt, α, β).
	Decay decay.Params

	// ImmortalLogDir is the directory the hash-chained WAL lives in.
	// Empty disables the immortal log entirely.
	ImmortalLogDir string

	// WALSegmentSize is filled with immortal.DefaultSegmentSize (64MiB) by
	// ApplyDefaults. Open does not pass it to the immortal log, which
	// always rotates segments at immortal.DefaultSegmentSize.
	WALSegmentSize int64

	// UseMmap opens the backing file with a read-only mmap instead of a
	// buffered read on Open (ignored for a fresh store).
	UseMmap bool

	// Metrics is an optional collector; defaults to metrics.NewNoopCollector().
	Metrics metrics.Collector

	// GhostWriter is an optional trace.Exporter notified of every
	// immortal log append.
	GhostWriter trace.Exporter

	// Logger defaults to slog.Default() when nil.
	Logger *slog.Logger
}

// ApplyDefaults fills in zero-valued fields with their documented
// defaults, mirroring search.ApplyDefaults in the teacher.
func (c *Config) ApplyDefaults() {
	if c.Retrieval.RRFK == 0 {
		c.Retrieval.RRFK = 60.0
	}
	if c.Retrieval.WText == 0 && c.Retrieval.WVec == 0 {
		w := retrieval.DefaultWeights()
		c.Retrieval.WText, c.Retrieval.WVec = w.Text, w.Vector
	}
	if c.Retrieval.GroundingThreshold == 0 {
		c.Retrieval.GroundingThreshold = retrieval.DefaultGroundingThreshold
	}
	if (decay.Params{}) == c.Decay {
		c.Decay = decay.Defaults()
	}
	if c.WALSegmentSize == 0 {
		c.WALSegmentSize = immortal.DefaultSegmentSize
	}
	if c.Metrics == nil {
		c.Metrics = metrics.NewNoopCollector()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Handle is the open, live state of one AgenticMemory store: the graph
// store, its derived indexes, the immortal log, and the file lock
// guarding single-writer access.
type Handle struct {
	config  Config
	store   *graphstore.Store
	indexes *index.Set
	log     *immortal.Log
	lock    *storeLock
	logger  *slog.Logger
}

// Open creates a fresh store (if cfg.Path does not exist or is empty) or
// opens an existing one, acquiring the single-writer lock and rebuilding
// the in-memory indexes.
func Open(cfg Config) (*Handle, error) {
	cfg.ApplyDefaults()

	var lock *storeLock
	if cfg.Path != "" {
		l, err := acquireLock(cfg.Path)
		if err != nil {
			return nil, err
		}
		lock = l
	}

	store, loadedFromDisk, err := openStore(cfg)
	if err != nil {
		if lock != nil {
			_ = lock.release()
		}
		return nil, err
	}

	var log *immortal.Log
	if cfg.ImmortalLogDir != "" {
		l, err := immortal.Open(cfg.ImmortalLogDir)
		if err != nil {
			if lock != nil {
				_ = lock.release()
			}
			return nil, errs.Wrap(errs.KindIO, err, "open immortal log at %s", cfg.ImmortalLogDir)
		}
		if cfg.GhostWriter != nil {
			l = l.WithGhostWriter(cfg.GhostWriter)
		}
		log = l
	}

	h := &Handle{
		config:  cfg,
		store:   store,
		indexes: index.Rebuild(store),
		log:     log,
		lock:    lock,
		logger:  cfg.Logger,
	}
	if loadedFromDisk {
		h.logger.Info("amem: opened store", "path", cfg.Path, "nodes", store.NodeCount(), "edges", store.EdgeCount())
	} else {
		h.logger.Info("amem: created store", "path", cfg.Path, "dimension", cfg.EmbeddingDimension)
	}
	return h, nil
}

func openStore(cfg Config) (*graphstore.Store, bool, error) {
	if cfg.Path == "" {
		return graphstore.New(cfg.EmbeddingDimension), false, nil
	}
	if _, err := os.Stat(cfg.Path); err != nil {
		if os.IsNotExist(err) {
			return graphstore.New(cfg.EmbeddingDimension), false, nil
		}
		return nil, false, errs.Wrap(errs.KindIO, err, "stat %s", cfg.Path)
	}
	var (
		store *graphstore.Store
		err   error
	)
	if cfg.UseMmap {
		store, err = codec.LoadMmap(cfg.Path)
	} else {
		store, err = codec.Load(cfg.Path)
	}
	if err != nil {
		return nil, false, err
	}
	return store, true, nil
}

// Save atomically persists the store to cfg.Path. A no-op (returning nil)
// when the Handle was opened with an empty Path.
func (h *Handle) Save() error {
	if h.config.Path == "" {
		return nil
	}
	if err := codec.Save(h.config.Path, h.store); err != nil {
		return err
	}
	if h.log != nil {
		if err := h.log.Checkpoint(); err != nil {
			return err
		}
	}
	h.logger.Info("amem: saved store", "path", h.config.Path, "nodes", h.store.NodeCount())
	return nil
}

// Close releases the single-writer lock and the immortal log. It does not
// implicitly Save; callers that want durability must call Save first.
func (h *Handle) Close() error {
	var firstErr error
	if h.log != nil {
		if err := h.log.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if h.lock != nil {
		if err := h.lock.release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Stats reports current store size and log position.
func (h *Handle) Stats() Stats {
	s := Stats{
		NodeCount:  h.store.NodeCount(),
		EdgeCount:  h.store.EdgeCount(),
		NextNodeID: h.store.NextNodeID(),
		NextEdgeID: h.store.NextEdgeID(),
	}
	if h.log != nil {
		s.LogSequence = h.log.NextSequence()
	}
	return s
}

// --- C2 Graph Store operations ---

// Add creates a new cognitive event node, updates the derived indexes,
// and appends an immortal log entry for the write.
func (h *Handle) Add(ctx context.Context, eventType EventType, content string, sessionID uint64, confidence float64, embedding []float32, tags []string) (uint64, error) {
	start := time.Now()
	id, err := h.store.Add(eventType, content, sessionID, confidence, embedding, tags)
	if err != nil {
		h.config.Metrics.RecordError(ctx, "add", string(errs.Classify(err)))
		return 0, err
	}
	n, _ := h.store.Peek(id)
	h.indexes.OnAdd(n)
	if h.log != nil {
		_, _ = h.log.Append(ctx, immortal.OpAdd, map[string]any{"id": id, "event_type": eventType, "session_id": sessionID})
	}
	h.config.Metrics.RecordOperation(ctx, "add", "success", time.Since(start).Milliseconds())
	return id, nil
}

// Link creates a directed, typed edge between two existing nodes.
func (h *Handle) Link(ctx context.Context, sourceID, targetID uint64, edgeType EdgeType, weight float64) (uint64, error) {
	id, err := h.store.Link(sourceID, targetID, edgeType, weight)
	if err != nil {
		h.config.Metrics.RecordError(ctx, "link", string(errs.Classify(err)))
		return 0, err
	}
	if h.log != nil {
		_, _ = h.log.Append(ctx, immortal.OpLink, map[string]any{"id": id, "source": sourceID, "target": targetID, "edge_type": edgeType})
	}
	return id, nil
}

// Get returns a node by id, bumping its access stats.
func (h *Handle) Get(id uint64) (*Node, error) {
	return h.store.Get(id)
}

// Delete tombstones a node without reusing its id.
func (h *Handle) Delete(ctx context.Context, id uint64) error {
	// Peek before deleting: once tombstoned, Peek/Get no longer return the
	// node, and index.OnDelete needs its event_type/session_id to find it.
	n, err := h.store.Peek(id)
	if err != nil {
		return err
	}
	if err := h.store.Delete(id); err != nil {
		return err
	}
	h.indexes.OnDelete(id, n.EventType, n.SessionID)
	if h.log != nil {
		_, _ = h.log.Append(ctx, immortal.OpDelete, map[string]any{"id": id})
	}
	return nil
}

// --- C5 Query Engine operations ---

// Query runs a pattern filter over live nodes.
func (h *Handle) Query(p Pattern) []*Node { return query.Run(h.store, p) }

// Traverse runs a breadth-first walk from start.
func (h *Handle) Traverse(start uint64, opts TraversalOptions) []Visited {
	return query.BFS(h.store, start, opts)
}

// ShortestPath finds the minimal-hop path between two nodes.
func (h *Handle) ShortestPath(start, goal uint64, edgeTypes map[EdgeType]bool, maxDepth int) []uint64 {
	return query.ShortestPath(h.store, start, goal, edgeTypes, maxDepth)
}

// PageRank scores every node's structural importance.
func (h *Handle) PageRank() map[uint64]float64 { return query.PageRank(h.store) }

// CausalImpact finds nodes whose causal chain depends on nodeID.
func (h *Handle) CausalImpact(nodeID uint64, maxDepth int) []query.Impact {
	return query.CausalImpact(h.store, nodeID, maxDepth)
}

// --- C6 Retrieval Engine operations ---

// SearchText runs BM25 search over the term index.
func (h *Handle) SearchText(q string, k int) []index.ScoredHit {
	return h.indexes.Term.Search(q, k)
}

// SearchVector runs cosine similarity search over node embeddings.
func (h *Handle) SearchVector(query []float32, k int) ([]retrieval.VectorHit, error) {
	return retrieval.VectorSearch(h.store, query, k)
}

// SearchHybrid fuses BM25 and vector search via reciprocal rank fusion.
func (h *Handle) SearchHybrid(q string, queryEmbedding []float32, k int) ([]HybridHit, error) {
	w := HybridWeights{Text: h.config.Retrieval.WText, Vector: h.config.Retrieval.WVec}
	return retrieval.HybridSearch(h.store, h.indexes.Term, q, queryEmbedding, k, w)
}

// CheckGrounding verifies a claim against the store's existing knowledge.
func (h *Handle) CheckGrounding(claim string, claimEmbedding []float32) (GroundingReport, error) {
	return retrieval.CheckGrounding(h.store, h.indexes.Term, claim, claimEmbedding, h.config.Retrieval.GroundingThreshold)
}

// --- C7 Correction & Resolution operations ---

// Correct supersedes oldID with a new node carrying revised content.
func (h *Handle) Correct(ctx context.Context, oldID uint64, newContent string, confidence float64) (uint64, error) {
	newID, err := correction.Correct(h.store, oldID, newContent, confidence)
	if err != nil {
		return 0, err
	}
	if n, err := h.store.Peek(newID); err == nil {
		h.indexes.OnAdd(n)
	}
	if h.log != nil {
		_, _ = h.log.Append(ctx, immortal.OpCorrect, map[string]any{"old": oldID, "new": newID})
	}
	return newID, nil
}

// Resolve follows a supersedes chain to its terminal node.
func (h *Handle) Resolve(id uint64) (uint64, error) { return correction.Resolve(h.store, id) }

// Revise propagates a confidence change to causal dependents.
func (h *Handle) Revise(nodeID uint64, threshold, newConfidence float64) ([]RevisionImpact, error) {
	return correction.Revise(h.store, nodeID, threshold, newConfidence)
}

// Gaps ranks nodes by how dangerous their weak support structure is.
func (h *Handle) Gaps() []Gap { return correction.Gaps(h.store) }

// Analogy finds structurally similar nodes by outgoing edge-type overlap.
func (h *Handle) Analogy(nodeID uint64, topK int) []AnalogyHit {
	return correction.Analogy(h.store, nodeID, topK)
}

// Drift orders a topic's matching nodes oldest-to-newest to show belief
// evolution over time.
func (h *Handle) Drift(topic string, limit int) []DriftStep {
	return correction.Drift(h.store, h.indexes.Term, topic, limit)
}

// --- C8 Consolidation operations ---

// Deduplicate finds near-identical node pairs; ApplyDedup must be called
// separately to write the Supersedes edges.
func (h *Handle) Deduplicate() ([]DedupPair, error) {
	return consolidation.Deduplicate(h.store, h.indexes.Term)
}

// ApplyDedup writes Supersedes edges for the given pairs.
func (h *Handle) ApplyDedup(pairs []DedupPair) error {
	return consolidation.Apply(h.store, pairs)
}

// LinkContradictions finds same-topic Decision pairs not yet linked.
func (h *Handle) LinkContradictions() []ContradictionPair {
	return consolidation.LinkContradictions(h.store, h.indexes.Term)
}

// ApplyContradictions writes Contradicts edges for the given pairs.
func (h *Handle) ApplyContradictions(pairs []ContradictionPair) error {
	return consolidation.ApplyContradictions(h.store, pairs)
}

// PromotionCandidates finds Inferences old and confident enough to
// promote to Fact.
func (h *Handle) PromotionCandidates() []PromotionCandidate {
	return consolidation.PromotionCandidates(h.store, graphstore.NowMicros())
}

// Promote appends a Fact superseding the given Inference.
func (h *Handle) Promote(ctx context.Context, candidate PromotionCandidate) (uint64, error) {
	newID, err := consolidation.Promote(h.store, candidate)
	if err != nil {
		return 0, err
	}
	if n, err := h.store.Peek(newID); err == nil {
		h.indexes.OnAdd(n)
	}
	if h.log != nil {
		_, _ = h.log.Append(ctx, immortal.OpConsolidate, map[string]any{"promoted": candidate.NodeID, "new": newID})
	}
	return newID, nil
}

// Compact purges decayed, unreferenced nodes from the live store.
func (h *Handle) Compact(ctx context.Context, keepAbove float64) []uint64 {
	candidates := consolidation.CompactionCandidates(h.store, graphstore.NowMicros(), h.config.Decay, keepAbove)
	if h.log != nil {
		_, _ = h.log.Append(ctx, immortal.OpCompact, map[string]any{"purged": candidates})
	}
	for _, id := range candidates {
		if n, err := h.store.Peek(id); err == nil {
			h.indexes.OnDelete(id, n.EventType, n.SessionID)
		}
	}
	consolidation.Compact(h.store, candidates)
	return candidates
}
