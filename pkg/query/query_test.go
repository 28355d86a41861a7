package query

import (
	"testing"

	"github.com/agenticmemory/amem/pkg/graphstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildChain(t *testing.T) (*graphstore.Store, []uint64) {
	t.Helper()
	s := graphstore.New(0)
	ids := make([]uint64, 4)
	for i := range ids {
		id, err := s.Add(graphstore.Fact, "n", 1, 0.9, nil, nil)
		require.NoError(t, err)
		ids[i] = id
	}
	_, err := s.Link(ids[1], ids[0], graphstore.CausedBy, 1.0)
	require.NoError(t, err)
	_, err = s.Link(ids[2], ids[1], graphstore.CausedBy, 1.0)
	require.NoError(t, err)
	_, err = s.Link(ids[3], ids[0], graphstore.RelatedTo, 1.0)
	require.NoError(t, err)
	return s, ids
}

func TestPatternFiltersByTypeAndConfidence(t *testing.T) {
	s := graphstore.New(0)
	_, _ = s.Add(graphstore.Fact, "a", 1, 0.9, nil, nil)
	_, _ = s.Add(graphstore.Decision, "b", 1, 0.9, nil, nil)
	_, _ = s.Add(graphstore.Fact, "c", 1, 0.1, nil, nil)

	got := Run(s, Pattern{EventType: graphstore.Fact, MinConfidence: 0.5})
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Content)
}

func TestBFSRespectsMaxDepth(t *testing.T) {
	s, ids := buildChain(t)
	got := BFS(s, ids[2], TraversalOptions{Direction: Forward, MaxDepth: 1})
	require.Len(t, got, 1)
	assert.Equal(t, ids[1], got[0].NodeID)
}

func TestBFSFollowsEdgeTypeFilter(t *testing.T) {
	s, ids := buildChain(t)
	got := BFS(s, ids[3], TraversalOptions{Direction: Forward, EdgeTypes: map[graphstore.EdgeType]bool{graphstore.CausedBy: true}})
	assert.Empty(t, got)
}

func TestShortestPathFindsMinimalHops(t *testing.T) {
	s, ids := buildChain(t)
	path := ShortestPath(s, ids[2], ids[0], nil, 0)
	assert.Equal(t, []uint64{ids[2], ids[1], ids[0]}, path)
}

func TestShortestPathNoPath(t *testing.T) {
	s := graphstore.New(0)
	a, _ := s.Add(graphstore.Fact, "a", 1, 0.9, nil, nil)
	b, _ := s.Add(graphstore.Fact, "b", 1, 0.9, nil, nil)
	assert.Nil(t, ShortestPath(s, a, b, nil, 0))
}

func TestDegreeCountsBothDirections(t *testing.T) {
	s, ids := buildChain(t)
	deg := Degree(s)
	assert.Equal(t, 2, deg[ids[0]]) // caused_by from ids[1], related_to from ids[3]
	assert.Equal(t, 2, deg[ids[1]]) // caused_by to ids[0], caused_by from ids[2]
}

func TestPageRankSumsToOne(t *testing.T) {
	s, _ := buildChain(t)
	ranks := PageRank(s)
	sum := 0.0
	for _, r := range ranks {
		sum += r
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestCausalImpactFollowsCauseChain(t *testing.T) {
	s, ids := buildChain(t)
	impact := CausalImpact(s, ids[0], 0)
	var got []uint64
	for _, i := range impact {
		got = append(got, i.NodeID)
	}
	assert.ElementsMatch(t, []uint64{ids[1], ids[2]}, got)
}
