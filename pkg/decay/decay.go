// Package decay computes the exponential decay score that drives
// consolidation and eviction (spec.md §4.4).
package decay

import (
	"math"
	"sort"

	"github.com/agenticmemory/amem/pkg/graphstore"
)

// Params holds the decay formula's tunable coefficients. The zero value is
// not usable; start from Defaults().
type Params struct {
	// LambdaT is the per-day exponential age decay rate.
	LambdaT float64
	// Alpha weights the access-count reinforcement term.
	Alpha float64
	// Beta weights the staleness-since-last-access penalty.
	Beta float64
}

// Defaults returns the spec's default coefficients: lambda_t=0.01,
// alpha=0.1, beta=0.02.
func Defaults() Params {
	return Params{LambdaT: 0.01, Alpha: 0.1, Beta: 0.02}
}

const microsPerDay = 1000000.0 * 60 * 60 * 24

// Score computes decay(node, now) per spec.md §4.4:
//
//	confidence * exp(-lambda_t * age_days) * (1 + alpha*log(1+access_count)) * (1 - beta*staleness_days)
//
// clamped to [0, 1]. now is microseconds since the Unix epoch.
func Score(n *graphstore.Node, now int64, p Params) float64 {
	ageDays := float64(now-n.CreatedAt) / microsPerDay
	if ageDays < 0 {
		ageDays = 0
	}

	lastAccessed := n.CreatedAt
	if n.LastAccessed != nil {
		lastAccessed = *n.LastAccessed
	}
	stalenessDays := float64(now-lastAccessed) / microsPerDay
	if stalenessDays < 0 {
		stalenessDays = 0
	}

	score := n.Confidence *
		math.Exp(-p.LambdaT*ageDays) *
		(1 + p.Alpha*math.Log(1+float64(n.AccessCount))) *
		(1 - p.Beta*stalenessDays)

	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Candidate pairs a node id with its freshly computed decay score.
type Candidate struct {
	NodeID uint64
	Score  float64
}

// EvictionCandidates scores every node in nodes and returns those scoring
// strictly below threshold, ascending by score (most decayed first).
func EvictionCandidates(nodes []*graphstore.Node, now int64, p Params, threshold float64) []Candidate {
	var out []Candidate
	for _, n := range nodes {
		s := Score(n, now, p)
		if s < threshold {
			out = append(out, Candidate{NodeID: n.ID, Score: s})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	return out
}
