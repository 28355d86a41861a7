package index

import (
	"testing"

	"github.com/agenticmemory/amem/pkg/graphstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermSearchRanksExactMatchHigher(t *testing.T) {
	term := NewTerm()
	term.Add(1, "the deployment pipeline failed on the staging cluster")
	term.Add(2, "coffee is good in the morning")

	hits := term.Search("deployment pipeline", 10)
	require.NotEmpty(t, hits)
	assert.Equal(t, uint64(1), hits[0].NodeID)
}

func TestTermRemoveDropsFromPostings(t *testing.T) {
	term := NewTerm()
	term.Add(1, "rollback the release")
	term.Remove(1)
	hits := term.Search("release", 10)
	assert.Empty(t, hits)
}

func TestTemporalRangeIsOrdered(t *testing.T) {
	temp := NewTemporal()
	temp.Add(3, 300)
	temp.Add(1, 100)
	temp.Add(2, 200)

	got := temp.Range(100, 250)
	assert.Equal(t, []uint64{1, 2}, got)
}

func TestExtractEntitiesFindsPathsAndIdentifiers(t *testing.T) {
	entities := ExtractEntities("fixed the bug in pkg/graphstore/store.go by renaming nodeByID")
	assert.Contains(t, entities, "pkg/graphstore/store.go")
	assert.Contains(t, entities, "nodeByID")
}

func TestSetOnAddOnDeleteRoundTrip(t *testing.T) {
	s := NewSet()
	n := &graphstore.Node{ID: 1, EventType: graphstore.Fact, Content: "deploy service-x to prod", SessionID: 7, CreatedAt: 100}
	s.OnAdd(n)

	assert.Equal(t, []uint64{1}, s.Type.Lookup(graphstore.Fact))
	assert.Equal(t, []uint64{1}, s.Session.Lookup(7))

	s.OnDelete(1, graphstore.Fact, 7)
	assert.Empty(t, s.Type.Lookup(graphstore.Fact))
	assert.Empty(t, s.Session.Lookup(7))
	assert.Empty(t, s.Term.Search("deploy", 10))
}

func TestRebuildFromStore(t *testing.T) {
	store := graphstore.New(0)
	id1, _ := store.Add(graphstore.Fact, "network outage in us-east", 1, 0.9, nil, nil)
	id2, _ := store.Add(graphstore.Decision, "failover to us-west", 1, 0.9, nil, nil)

	set := Rebuild(store)
	hits := set.Term.Search("outage", 10)
	require.Len(t, hits, 1)
	assert.Equal(t, id1, hits[0].NodeID)
	assert.ElementsMatch(t, []uint64{id1, id2}, append(set.Type.Lookup(graphstore.Fact), set.Type.Lookup(graphstore.Decision)...))
}
