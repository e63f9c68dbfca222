package corpus

import (
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// stopwords are high-frequency terms that carry no retrieval signal.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "how": true,
	"in": true, "is": true, "it": true, "of": true, "on": true, "or": true,
	"that": true, "the": true, "to": true, "what": true, "where": true,
	"which": true, "with": true,
}

// Hit is one retrieval result.
type Hit struct {
	Document *Document
	Score    float64
}

// Index is a lexical tf-idf index over corpus documents. Reads are safe for
// concurrent use; Add calls must not race with Search.
type Index struct {
	mu       sync.RWMutex
	docs     []*Document
	postings map[string]map[int]int // term -> doc ordinal -> term frequency
	lengths  []float64              // doc ordinal -> token count
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		postings: make(map[string]map[int]int),
	}
}

// Add indexes the given documents. Title terms count double; a question
// matching a title is a stronger signal than one matching body prose.
func (ix *Index) Add(docs ...*Document) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, doc := range docs {
		ord := len(ix.docs)
		ix.docs = append(ix.docs, doc)

		terms := tokenize(doc.Body)
		titleTerms := tokenize(doc.Title)
		terms = append(terms, titleTerms...)
		terms = append(terms, titleTerms...)

		for _, term := range terms {
			bucket, ok := ix.postings[term]
			if !ok {
				bucket = make(map[int]int)
				ix.postings[term] = bucket
			}
			bucket[ord]++
		}
		ix.lengths = append(ix.lengths, float64(len(terms)))
	}
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Search returns up to k documents ranked by tf-idf overlap with the
// query. Documents sharing no terms with the query are never returned.
func (ix *Index) Search(query string, k int) []Hit {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if k <= 0 || len(ix.docs) == 0 {
		return nil
	}

	scores := make(map[int]float64)
	n := float64(len(ix.docs))
	for _, term := range dedupe(tokenize(query)) {
		bucket, ok := ix.postings[term]
		if !ok {
			continue
		}
		idf := math.Log(1 + n/float64(len(bucket)))
		for ord, tf := range bucket {
			scores[ord] += float64(tf) * idf
		}
	}
	if len(scores) == 0 {
		return nil
	}

	hits := make([]Hit, 0, len(scores))
	for ord, score := range scores {
		// length normalization keeps long pages from dominating
		norm := math.Sqrt(ix.lengths[ord])
		if norm == 0 {
			norm = 1
		}
		hits = append(hits, Hit{Document: ix.docs[ord], Score: score / norm})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Document.ID < hits[j].Document.ID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// tokenize lowercases and splits on non-alphanumeric runs, dropping
// stopwords and single characters.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := fields[:0]
	for _, f := range fields {
		if len(f) < 2 || stopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

func dedupe(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
