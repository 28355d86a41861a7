package retrieval

import (
	"testing"

	"github.com/agenticmemory/amem/pkg/errs"
	"github.com/agenticmemory/amem/pkg/graphstore"
	"github.com/agenticmemory/amem/pkg/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorSearchRanksBySimilarity(t *testing.T) {
	s := graphstore.New(2)
	a, _ := s.Add(graphstore.Fact, "a", 1, 0.9, []float32{1, 0}, nil)
	b, _ := s.Add(graphstore.Fact, "b", 1, 0.9, []float32{0, 1}, nil)

	hits, err := VectorSearch(s, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, a, hits[0].NodeID)
	assert.Equal(t, b, hits[1].NodeID)
}

func TestVectorSearchDimensionMismatch(t *testing.T) {
	s := graphstore.New(3)
	_, err := VectorSearch(s, []float32{1, 0}, 10)
	require.Error(t, err)
	assert.Equal(t, errs.KindDimensionMismatch, errs.KindOf(err))
}

func TestHybridSearchFusesBothSides(t *testing.T) {
	s := graphstore.New(2)
	a, _ := s.Add(graphstore.Fact, "the deployment failed", 1, 0.9, []float32{1, 0}, nil)
	_, _ = s.Add(graphstore.Fact, "unrelated content about cooking", 1, 0.9, []float32{0, 1}, nil)

	terms := index.NewTerm()
	terms.Add(a, "the deployment failed")

	hits, err := HybridSearch(s, terms, "deployment failed", []float32{1, 0}, 5, DefaultWeights())
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, a, hits[0].NodeID)
}

func TestCheckGroundingUngroundedWhenNoMatch(t *testing.T) {
	s := graphstore.New(0)
	terms := index.NewTerm()
	report, err := CheckGrounding(s, terms, "anything", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, Ungrounded, report.Verdict)
}

func TestCheckGroundingFindsContradiction(t *testing.T) {
	s := graphstore.New(0)
	a, _ := s.Add(graphstore.Decision, "use postgres for storage", 1, 0.9, nil, nil)
	b, _ := s.Add(graphstore.Decision, "use sqlite for storage", 1, 0.9, nil, nil)
	_, err := s.Link(a, b, graphstore.Contradicts, 1.0)
	require.NoError(t, err)

	terms := index.NewTerm()
	terms.Add(a, "use postgres for storage")
	terms.Add(b, "use sqlite for storage")

	report, err := CheckGrounding(s, terms, "postgres for storage", nil, 0.01)
	require.NoError(t, err)
	assert.Equal(t, a, report.BestMatch)
	assert.Contains(t, report.Contradictions, b)
}
