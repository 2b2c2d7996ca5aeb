// Package bm25 implements the Okapi BM25 ranking function for lexical
// relevance scoring over a fixed in-memory corpus.
//
// The IDF uses the non-negative form ln((N-df+0.5)/(df+0.5)+1), which avoids
// negative contributions from terms present in most of the corpus. Scoring
// is pure and in-memory; any failure is an input error.
package bm25

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Default parameter values.
const (
	// DefaultK1 controls term-frequency saturation.
	DefaultK1 = 1.5

	// DefaultB controls document-length normalization.
	DefaultB = 0.75
)

// Doc is one (id, text) pair in the scoring corpus.
type Doc struct {
	ID   string
	Text string
}

// DocScore is a scored document. Scores are non-negative.
type DocScore struct {
	ID    string
	Score float64
}

// Scorer scores documents against a query with BM25. The zero value is not
// usable; construct with NewScorer.
type Scorer struct {
	k1 float64
	b  float64
}

// NewScorer creates a Scorer. Non-positive parameters fall back to the
// defaults.
func NewScorer(k1, b float64) *Scorer {
	if k1 <= 0 {
		k1 = DefaultK1
	}
	if b <= 0 {
		b = DefaultB
	}
	return &Scorer{k1: k1, b: b}
}

// Tokenize lowercases text, strips punctuation to whitespace, and splits on
// whitespace. This coarse lexical step is distinct from the sub-word codec
// used for chunk sizing.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, text)
	return strings.Fields(mapped)
}

// Score ranks docs against query, descending by BM25 score.
//
// An empty query (no tokens after tokenization) scores every document 0.
// An empty corpus yields an empty ranking. The sort is stable so documents
// with equal scores keep corpus order, which keeps rankings deterministic.
func (s *Scorer) Score(query string, docs []Doc) []DocScore {
	if len(docs) == 0 {
		return []DocScore{}
	}

	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		scores := make([]DocScore, len(docs))
		for i, doc := range docs {
			scores[i] = DocScore{ID: doc.ID, Score: 0}
		}
		return scores
	}

	docTokens := make([][]string, len(docs))
	totalLength := 0
	for i, doc := range docs {
		docTokens[i] = Tokenize(doc.Text)
		totalLength += len(docTokens[i])
	}
	avgLength := float64(totalLength) / float64(len(docs))

	// Document frequency per query term.
	df := make(map[string]int, len(queryTokens))
	for _, tokens := range docTokens {
		seen := make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			seen[t] = struct{}{}
		}
		for _, qt := range queryTokens {
			if _, ok := seen[qt]; ok {
				df[qt]++
			}
		}
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(queryTokens))
	for _, qt := range queryTokens {
		d := float64(df[qt])
		idf[qt] = math.Log((n-d+0.5)/(d+0.5) + 1)
	}

	scores := make([]DocScore, len(docs))
	for i, doc := range docs {
		tf := make(map[string]int, len(docTokens[i]))
		for _, t := range docTokens[i] {
			tf[t]++
		}

		docLength := float64(len(docTokens[i]))
		var score float64
		for _, qt := range queryTokens {
			freq := float64(tf[qt])
			if freq == 0 {
				continue
			}
			norm := freq + s.k1*(1-s.b+s.b*docLength/avgLength)
			score += idf[qt] * freq * (s.k1 + 1) / norm
		}

		scores[i] = DocScore{ID: doc.ID, Score: score}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}
