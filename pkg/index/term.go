package index

import (
	"math"
	"sort"
	"strings"

	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/english"
	"github.com/clipperhouse/uax29/v2/words"
)

// BM25 defaults (spec.md §4.3).
const (
	defaultK1 = 1.2
	defaultB  = 0.75
)

type posting struct {
	nodeID   uint64
	termFreq int
}

// Term is an inverted index over stemmed word tokens with BM25 scoring.
type Term struct {
	k1, b float64

	postings map[string][]posting // term -> postings, nodeID ascending
	docLen   map[uint64]int       // nodeID -> token count
	totalLen int64
	docCount int
}

// NewTerm returns an empty term index using the spec's default BM25
// parameters.
func NewTerm() *Term {
	return &Term{
		k1:       defaultK1,
		b:        defaultB,
		postings: make(map[string][]posting),
		docLen:   make(map[uint64]int),
	}
}

// Tokenize segments content into word tokens (uax29 word boundaries),
// lowercases, drops non-letter tokens, and stems with the English Snowball
// algorithm. This is the single tokenization path shared by indexing and
// querying so the same string always produces the same terms.
func Tokenize(content string) []string {
	var terms []string
	seg := words.NewSegmenter([]byte(content))
	for seg.Next() {
		tok := seg.Value()
		if !isWordlike(tok) {
			continue
		}
		lower := strings.ToLower(string(tok))
		terms = append(terms, stem(lower))
	}
	return terms
}

func isWordlike(tok []byte) bool {
	hasLetter := false
	for _, r := range string(tok) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			// digits are fine inside an identifier-like token
		default:
			if r > 127 {
				hasLetter = true
				continue
			}
			return false
		}
	}
	return hasLetter
}

func stem(word string) string {
	env := snowballstem.NewEnv(word)
	english.Stem(env)
	return env.Current()
}

// Add indexes a node's content under nodeID.
func (t *Term) Add(nodeID uint64, content string) {
	terms := Tokenize(content)
	if len(terms) == 0 {
		return
	}
	counts := make(map[string]int, len(terms))
	for _, term := range terms {
		counts[term]++
	}
	for term, freq := range counts {
		t.postings[term] = append(t.postings[term], posting{nodeID: nodeID, termFreq: freq})
	}
	t.docLen[nodeID] = len(terms)
	t.totalLen += int64(len(terms))
	t.docCount++
}

// Remove drops nodeID from every posting list it appears in.
func (t *Term) Remove(nodeID uint64) {
	length, ok := t.docLen[nodeID]
	if !ok {
		return
	}
	for term, list := range t.postings {
		for i, p := range list {
			if p.nodeID == nodeID {
				t.postings[term] = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(t.postings[term]) == 0 {
			delete(t.postings, term)
		}
	}
	delete(t.docLen, nodeID)
	t.totalLen -= int64(length)
	t.docCount--
}

// avgDocLen returns the mean token count across indexed documents.
func (t *Term) avgDocLen() float64 {
	if t.docCount == 0 {
		return 0
	}
	return float64(t.totalLen) / float64(t.docCount)
}

// idf returns the BM25 inverse document frequency for a term with df
// matching documents out of docCount total.
func (t *Term) idf(df int) float64 {
	n := float64(t.docCount)
	return math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))
}

// ScoredHit is a single BM25 match.
type ScoredHit struct {
	NodeID uint64
	Score  float64
}

// Search returns the top-k nodes by BM25 score against query, highest
// first. Ties break by lower node id for determinism.
func (t *Term) Search(query string, k int) []ScoredHit {
	queryTerms := Tokenize(query)
	if len(queryTerms) == 0 || t.docCount == 0 {
		return nil
	}
	avgLen := t.avgDocLen()

	scores := make(map[uint64]float64)
	seen := make(map[string]bool)
	for _, qt := range queryTerms {
		if seen[qt] {
			continue
		}
		seen[qt] = true
		list := t.postings[qt]
		if len(list) == 0 {
			continue
		}
		idf := t.idf(len(list))
		for _, p := range list {
			dl := float64(t.docLen[p.nodeID])
			tf := float64(p.termFreq)
			denom := tf + t.k1*(1-t.b+t.b*dl/avgLen)
			scores[p.nodeID] += idf * (tf * (t.k1 + 1)) / denom
		}
	}

	hits := make([]ScoredHit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, ScoredHit{NodeID: id, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].NodeID < hits[j].NodeID
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// Reset clears the index.
func (t *Term) Reset() {
	t.postings = make(map[string][]posting)
	t.docLen = make(map[uint64]int)
	t.totalLen = 0
	t.docCount = 0
}
