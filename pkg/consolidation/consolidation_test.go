package consolidation

import (
	"testing"

	"github.com/agenticmemory/amem/pkg/decay"
	"github.com/agenticmemory/amem/pkg/graphstore"
	"github.com/agenticmemory/amem/pkg/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeduplicateFindsNearIdenticalPair(t *testing.T) {
	s := graphstore.New(3)
	terms := index.NewTerm()
	a, _ := s.Add(graphstore.Fact, "the build pipeline is green", 1, 0.9, []float32{1, 0, 0}, nil)
	terms.Add(a, "the build pipeline is green")
	b, _ := s.Add(graphstore.Fact, "the build pipeline is green", 1, 0.9, []float32{1, 0, 0}, nil)
	terms.Add(b, "the build pipeline is green")

	pairs, err := Deduplicate(s, terms)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, a, pairs[0].KeptID)
	assert.Equal(t, b, pairs[0].SupersededID)
}

func TestDeduplicateSkipsDissimilarNodes(t *testing.T) {
	s := graphstore.New(2)
	terms := index.NewTerm()
	a, _ := s.Add(graphstore.Fact, "the weather is sunny today", 1, 0.9, []float32{1, 0}, nil)
	terms.Add(a, "the weather is sunny today")
	b, _ := s.Add(graphstore.Fact, "quarterly revenue increased", 1, 0.9, []float32{0, 1}, nil)
	terms.Add(b, "quarterly revenue increased")

	pairs, err := Deduplicate(s, terms)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestApplyLinksSupersedesFromKeptToSuperseded(t *testing.T) {
	s := graphstore.New(0)
	a, _ := s.Add(graphstore.Fact, "x", 1, 0.9, nil, nil)
	b, _ := s.Add(graphstore.Fact, "x", 1, 0.9, nil, nil)

	err := Apply(s, []DedupPair{{KeptID: a, SupersededID: b}})
	require.NoError(t, err)

	out := s.OutEdges(a, map[graphstore.EdgeType]bool{graphstore.Supersedes: true})
	require.Len(t, out, 1)
	assert.Equal(t, b, out[0].TargetID)
}

func TestLinkContradictionsFindsOpposingDecisions(t *testing.T) {
	s := graphstore.New(0)
	terms := index.NewTerm()
	a, _ := s.Add(graphstore.Decision, "use postgres for the primary datastore", 1, 0.9, nil, nil)
	terms.Add(a, "use postgres for the primary datastore")
	b, _ := s.Add(graphstore.Decision, "use mysql for the primary datastore", 1, 0.9, nil, nil)
	terms.Add(b, "use mysql for the primary datastore")

	pairs := LinkContradictions(s, terms)
	require.NotEmpty(t, pairs)
	require.NoError(t, ApplyContradictions(s, pairs))

	in := s.InEdges(b, map[graphstore.EdgeType]bool{graphstore.Contradicts: true})
	assert.NotEmpty(t, in)
}

func TestPromotionCandidatesRequireAgeAndConfidence(t *testing.T) {
	s := graphstore.New(0)
	confident, _ := s.Add(graphstore.Inference, "confident", 1, 0.9, nil, nil)
	weak, _ := s.Add(graphstore.Inference, "weak", 1, 0.5, nil, nil)

	confidentNode, err := s.Peek(confident)
	require.NoError(t, err)
	now := confidentNode.CreatedAt + PromotionMinAge*2

	candidates := PromotionCandidates(s, now)
	var ids []uint64
	for _, c := range candidates {
		ids = append(ids, c.NodeID)
	}
	assert.Contains(t, ids, confident)
	assert.NotContains(t, ids, weak)

	assert.Empty(t, PromotionCandidates(s, confidentNode.CreatedAt))
}

func TestPromoteCreatesFactAndSupersedes(t *testing.T) {
	s := graphstore.New(0)
	inf, _ := s.Add(graphstore.Inference, "likely caused by network partition", 1, 0.85, nil, nil)

	newID, err := Promote(s, PromotionCandidate{NodeID: inf, Content: "likely caused by network partition", Confidence: 0.85})
	require.NoError(t, err)

	n, err := s.Peek(newID)
	require.NoError(t, err)
	assert.Equal(t, graphstore.Fact, n.EventType)

	in := s.InEdges(inf, map[graphstore.EdgeType]bool{graphstore.Supersedes: true})
	require.Len(t, in, 1)
	assert.Equal(t, newID, in[0].SourceID)
}

func TestCompactionCandidatesSkipNodesWithIncomingEdges(t *testing.T) {
	s := graphstore.New(0)
	isolated, _ := s.Add(graphstore.Fact, "isolated", 1, 0.01, nil, nil)
	depended, _ := s.Add(graphstore.Fact, "depended", 1, 0.01, nil, nil)
	dependent, _ := s.Add(graphstore.Fact, "dependent", 1, 0.9, nil, nil)
	_, err := s.Link(dependent, depended, graphstore.RelatedTo, 1.0)
	require.NoError(t, err)

	now := int64(0)
	candidates := CompactionCandidates(s, now, decay.Defaults(), 0.5)
	assert.Contains(t, candidates, isolated)
	assert.NotContains(t, candidates, depended)
}
