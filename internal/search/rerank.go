package search

import (
	"sort"
	"strings"
	"unicode"
)

// LexicalReranker reorders citations by keyword overlap with the query,
// breaking ties on the original vector score. A cheap recall aid when the
// embedding model misses exact terms.
type LexicalReranker struct{}

// NewLexicalReranker creates the keyword-overlap reranker.
func NewLexicalReranker() *LexicalReranker {
	return &LexicalReranker{}
}

// Rerank reorders citations in place by combined lexical and vector score.
func (r *LexicalReranker) Rerank(query string, citations []Citation) []Citation {
	terms := tokenize(query)
	if len(terms) == 0 || len(citations) < 2 {
		return citations
	}

	type scored struct {
		citation Citation
		lexical  float64
	}
	entries := make([]scored, len(citations))
	for i, c := range citations {
		entries[i] = scored{citation: c, lexical: overlap(terms, tokenize(c.Content))}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		si := entries[i].lexical + float64(entries[i].citation.RelevanceScore)
		sj := entries[j].lexical + float64(entries[j].citation.RelevanceScore)
		return si > sj
	})

	out := make([]Citation, len(entries))
	for i, e := range entries {
		out[i] = e.citation
	}
	return out
}

// tokenize lowercases and splits text into word tokens, dropping short
// stop-ish words.
func tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		if len(word) > 2 {
			tokens[word] = true
		}
	}
	return tokens
}

// overlap returns the fraction of query terms present in the document.
func overlap(query, doc map[string]bool) float64 {
	if len(query) == 0 {
		return 0
	}
	matched := 0
	for term := range query {
		if doc[term] {
			matched++
		}
	}
	return float64(matched) / float64(len(query))
}

var _ Reranker = (*LexicalReranker)(nil)
