// Package lexical implements the whitespace-term text search engine used
// by the fusion layer's structured/lexical scoring path.
package lexical

import (
	"sort"
	"strings"
)

// Document is one ingested text record.
type Document struct {
	ID       string
	Body     string
	Metadata map[string]string
}

// Hit is one scored query result. Snippet is nil when no window could be
// computed (should not happen for a non-zero score, since a match implies
// a position).
type Hit struct {
	ID      string
	Score   float32
	Snippet *string
}

// Engine is an in-memory whitespace-term text search index: scoring is a
// pure scan over the ingested documents, no external full-text backend.
type Engine struct {
	docs []Document
}

// NewEngine returns an empty Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Ingest appends a document. metadata may be nil.
func (e *Engine) Ingest(id, body string, metadata map[string]string) {
	e.docs = append(e.docs, Document{ID: id, Body: body, Metadata: metadata})
}

// MetadataFilter restricts Query to documents whose metadata[Key] == Value.
type MetadataFilter struct {
	Key   string
	Value string
}

// Query scores every ingested document (optionally restricted by filter)
// against the whitespace terms of query, drops zero-score documents, and
// returns the top limit hits sorted by (score desc, id asc).
func (e *Engine) Query(query string, filter *MetadataFilter, limit int) []Hit {
	terms := strings.Fields(asciiLower(query))

	var scored []Hit
	for _, doc := range e.docs {
		if filter != nil && doc.Metadata[filter.Key] != filter.Value {
			continue
		}

		lower := asciiLower(doc.Body)
		var score float32
		for _, term := range terms {
			if term == "" {
				continue
			}
			at := 0
			for {
				pos := strings.Index(lower[at:], term)
				if pos < 0 {
					break
				}
				score++
				at += pos + len(term)
			}
		}
		if score == 0 {
			continue
		}

		var snippet *string
		for _, term := range terms {
			if term == "" {
				continue
			}
			if idx := strings.Index(lower, term); idx >= 0 {
				s := snippetWindow(doc.Body, idx, 24)
				snippet = &s
				break
			}
		}

		scored = append(scored, Hit{ID: doc.ID, Score: score, Snippet: snippet})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})
	if limit >= 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// asciiLower lowercases only ASCII letters, preserving byte length and
// offsets so positions found in the lowercased copy stay valid against the
// original string.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// snippetWindow returns the ±radius-byte window of text around idx,
// clamped to the string's bounds.
func snippetWindow(text string, idx, radius int) string {
	start := idx - radius
	if start < 0 {
		start = 0
	}
	end := idx + radius
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}
