package correction

import (
	"testing"

	"github.com/agenticmemory/amem/pkg/errs"
	"github.com/agenticmemory/amem/pkg/graphstore"
	"github.com/agenticmemory/amem/pkg/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrectThenResolveReturnsNewID(t *testing.T) {
	s := graphstore.New(0)
	old, err := s.Add(graphstore.Fact, "v1", 1, 0.8, nil, nil)
	require.NoError(t, err)

	newID, err := Correct(s, old, "v2", 0.9)
	require.NoError(t, err)
	assert.NotEqual(t, old, newID)

	resolved, err := Resolve(s, old)
	require.NoError(t, err)
	assert.Equal(t, newID, resolved)

	assert.True(t, IsTerminal(s, newID))
	assert.False(t, IsTerminal(s, old))
}

func TestResolveChainFollowsMultipleCorrections(t *testing.T) {
	s := graphstore.New(0)
	v1, _ := s.Add(graphstore.Fact, "v1", 1, 0.8, nil, nil)
	v2, err := Correct(s, v1, "v2", 0.85)
	require.NoError(t, err)
	v3, err := Correct(s, v2, "v3", 0.9)
	require.NoError(t, err)

	resolved, err := Resolve(s, v1)
	require.NoError(t, err)
	assert.Equal(t, v3, resolved)
}

func TestCorrectRejectsCycle(t *testing.T) {
	s := graphstore.New(0)
	a, _ := s.Add(graphstore.Fact, "a", 1, 0.8, nil, nil)
	b, err := Correct(s, a, "b", 0.9)
	require.NoError(t, err)

	_, err = s.Link(a, b, graphstore.Supersedes, 1.0)
	require.Error(t, err)
	assert.Equal(t, errs.KindInvariantViolation, errs.KindOf(err))
}

func TestReviseCascadesToDependents(t *testing.T) {
	s := graphstore.New(0)
	root, _ := s.Add(graphstore.Fact, "root", 1, 0.9, nil, nil)
	dependent, _ := s.Add(graphstore.Inference, "dependent", 1, 0.9, nil, nil)
	_, err := s.Link(dependent, root, graphstore.DerivedFrom, 1.0)
	require.NoError(t, err)

	impacts, err := Revise(s, root, 0.95, 0.1)
	require.NoError(t, err)
	require.Len(t, impacts, 1)
	assert.Equal(t, dependent, impacts[0].NodeID)
	assert.Less(t, impacts[0].NewConfidence, impacts[0].OldConfidence)
}

func TestGapsRanksWeaklySupportedHighest(t *testing.T) {
	s := graphstore.New(0)
	weak, _ := s.Add(graphstore.Fact, "weak", 1, 0.9, nil, nil)
	strong, _ := s.Add(graphstore.Fact, "strong", 1, 0.9, nil, nil)
	for i := 0; i < 3; i++ {
		dep, _ := s.Add(graphstore.Inference, "d", 1, 0.9, nil, nil)
		_, err := s.Link(dep, weak, graphstore.Supports, 0.1)
		require.NoError(t, err)
	}
	dep, _ := s.Add(graphstore.Inference, "d2", 1, 0.9, nil, nil)
	_, err := s.Link(dep, strong, graphstore.Supports, 0.95)
	require.NoError(t, err)

	gaps := Gaps(s)
	require.NotEmpty(t, gaps)
	assert.Equal(t, weak, gaps[0].NodeID)
}

func TestAnalogyFindsStructurallySimilarNode(t *testing.T) {
	s := graphstore.New(0)
	a, _ := s.Add(graphstore.Decision, "a", 1, 0.9, nil, nil)
	b, _ := s.Add(graphstore.Decision, "b", 1, 0.9, nil, nil)
	c, _ := s.Add(graphstore.Fact, "c", 1, 0.9, nil, nil)
	d1, _ := s.Add(graphstore.Fact, "d1", 1, 0.9, nil, nil)
	d2, _ := s.Add(graphstore.Fact, "d2", 1, 0.9, nil, nil)
	unrelated, _ := s.Add(graphstore.Fact, "u", 1, 0.9, nil, nil)

	_, _ = s.Link(a, d1, graphstore.Supports, 1.0)
	_, _ = s.Link(a, d2, graphstore.CausedBy, 1.0)
	_, _ = s.Link(b, d1, graphstore.Supports, 1.0)
	_, _ = s.Link(b, d2, graphstore.CausedBy, 1.0)
	_, _ = s.Link(c, unrelated, graphstore.RelatedTo, 1.0)

	hits := Analogy(s, a, 5)
	require.NotEmpty(t, hits)
	assert.Equal(t, b, hits[0].NodeID)
	assert.InDelta(t, 1.0, hits[0].Jaccard, 1e-9)
}

func TestDriftOrdersOldestFirst(t *testing.T) {
	s := graphstore.New(0)
	terms := index.NewTerm()
	v1, _ := s.Add(graphstore.Fact, "the deploy target is staging", 1, 0.9, nil, nil)
	terms.Add(v1, "the deploy target is staging")
	v2, _ := s.Add(graphstore.Correction, "the deploy target is production", 1, 0.9, nil, nil)
	terms.Add(v2, "the deploy target is production")

	steps := Drift(s, terms, "deploy target", 0)
	require.Len(t, steps, 2)
	assert.Equal(t, v1, steps[0].NodeID)
	assert.Equal(t, v2, steps[1].NodeID)
}
