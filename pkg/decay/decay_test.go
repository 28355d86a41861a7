package decay

import (
	"testing"

	"github.com/agenticmemory/amem/pkg/graphstore"
	"github.com/stretchr/testify/assert"
)

func TestScoreDecaysWithAge(t *testing.T) {
	p := Defaults()
	now := int64(30) * int64(microsPerDay)

	fresh := &graphstore.Node{Confidence: 0.9, CreatedAt: now}
	old := &graphstore.Node{Confidence: 0.9, CreatedAt: 0}

	assert.Greater(t, Score(fresh, now, p), Score(old, now, p))
}

func TestScoreIncreasesWithAccessCount(t *testing.T) {
	p := Defaults()
	now := int64(0)
	base := &graphstore.Node{Confidence: 0.5, CreatedAt: 0, AccessCount: 0}
	accessed := &graphstore.Node{Confidence: 0.5, CreatedAt: 0, AccessCount: 50}

	assert.Greater(t, Score(accessed, now, p), Score(base, now, p))
}

func TestScoreClampedToUnitInterval(t *testing.T) {
	p := Defaults()
	n := &graphstore.Node{Confidence: 1.0, CreatedAt: 0, AccessCount: 1000000}
	s := Score(n, 0, p)
	assert.LessOrEqual(t, s, 1.0)
	assert.GreaterOrEqual(t, s, 0.0)
}

func TestEvictionCandidatesSortedAscending(t *testing.T) {
	p := Defaults()
	now := int64(100) * int64(microsPerDay)
	nodes := []*graphstore.Node{
		{ID: 1, Confidence: 0.9, CreatedAt: now},
		{ID: 2, Confidence: 0.05, CreatedAt: 0},
		{ID: 3, Confidence: 0.1, CreatedAt: 0},
	}
	candidates := EvictionCandidates(nodes, now, p, 0.5)
	if assert.Len(t, candidates, 2) {
		assert.LessOrEqual(t, candidates[0].Score, candidates[1].Score)
	}
}
