package graphstore

import (
	"errors"
	"testing"

	"github.com/agenticmemory/amem/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAssignsMonotonicIDs(t *testing.T) {
	s := New(0)
	id1, err := s.Add(Fact, "first", 1, 0.9, nil, nil)
	require.NoError(t, err)
	id2, err := s.Add(Fact, "second", 1, 0.9, nil, nil)
	require.NoError(t, err)
	assert.Less(t, id1, id2)
}

func TestAddRejectsUnknownEventType(t *testing.T) {
	s := New(0)
	_, err := s.Add(EventType("bogus"), "x", 1, 0.9, nil, nil)
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidArgument, errs.KindOf(err))
}

func TestAddRejectsDimensionMismatch(t *testing.T) {
	s := New(4)
	_, err := s.Add(Fact, "x", 1, 0.9, []float32{1, 2}, nil)
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidArgument, errs.KindOf(err))
}

func TestLinkRejectsMissingEndpoints(t *testing.T) {
	s := New(0)
	id, err := s.Add(Fact, "x", 1, 0.9, nil, nil)
	require.NoError(t, err)
	_, err = s.Link(id, 999, RelatedTo, 0.5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestLinkRejectsSupersedesCycle(t *testing.T) {
	s := New(0)
	a, _ := s.Add(Fact, "a", 1, 0.9, nil, nil)
	b, _ := s.Add(Fact, "b", 1, 0.9, nil, nil)
	c, _ := s.Add(Fact, "c", 1, 0.9, nil, nil)

	_, err := s.Link(a, b, Supersedes, 1.0)
	require.NoError(t, err)
	_, err = s.Link(b, c, Supersedes, 1.0)
	require.NoError(t, err)

	_, err = s.Link(c, a, Supersedes, 1.0)
	require.Error(t, err)
	assert.Equal(t, errs.KindInvariantViolation, errs.KindOf(err))
}

func TestLinkAllowsSelfUnrelatedCycleOfDifferentType(t *testing.T) {
	s := New(0)
	a, _ := s.Add(Fact, "a", 1, 0.9, nil, nil)
	b, _ := s.Add(Fact, "b", 1, 0.9, nil, nil)
	_, err := s.Link(a, b, RelatedTo, 1.0)
	require.NoError(t, err)
	_, err = s.Link(b, a, RelatedTo, 1.0)
	require.NoError(t, err)
}

func TestGetIncrementsAccessCount(t *testing.T) {
	s := New(0)
	id, _ := s.Add(Fact, "x", 1, 0.9, nil, nil)
	n, err := s.Get(id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n.AccessCount)
	assert.NotNil(t, n.LastAccessed)

	n2, err := s.Get(id)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n2.AccessCount)
}

func TestDeleteThenGetIsNotFound(t *testing.T) {
	s := New(0)
	id, _ := s.Add(Fact, "x", 1, 0.9, nil, nil)
	require.NoError(t, s.Delete(id))

	_, err := s.Get(id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	// id is never reused
	next, err := s.Add(Fact, "y", 1, 0.9, nil, nil)
	require.NoError(t, err)
	assert.Greater(t, next, id)
}

func TestDeleteTwiceFails(t *testing.T) {
	s := New(0)
	id, _ := s.Add(Fact, "x", 1, 0.9, nil, nil)
	require.NoError(t, s.Delete(id))
	err := s.Delete(id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestAllNodesExcludesTombstoned(t *testing.T) {
	s := New(0)
	a, _ := s.Add(Fact, "a", 1, 0.9, nil, nil)
	_, _ = s.Add(Fact, "b", 1, 0.9, nil, nil)
	require.NoError(t, s.Delete(a))

	nodes := s.AllNodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, "b", nodes[0].Content)
}

func TestLoadSnapshotRoundTrip(t *testing.T) {
	s := New(0)
	a, _ := s.Add(Fact, "a", 1, 0.9, nil, nil)
	b, _ := s.Add(Fact, "b", 1, 0.8, nil, nil)
	_, _ = s.Link(a, b, RelatedTo, 0.5)

	nodes := s.AllNodes()
	edges := s.AllEdges()

	s2 := New(0)
	s2.LoadSnapshot(nodes, edges, 3, 1)
	assert.Equal(t, 2, s2.NodeCount())
	assert.Equal(t, 1, s2.EdgeCount())

	next, err := s2.Add(Fact, "c", 1, 0.7, nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, next)
}
