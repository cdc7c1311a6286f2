// Package fusion implements query classification, structured/semantic/
// temporal score fusion, and the RAG context builder that packs chunks
// into a token budget.
package fusion

import "strings"

// QueryMode is the result of classifying a query string.
type QueryMode int

const (
	// Semantic queries are routed through the vector/lexical search path
	// with no structured-score boost.
	Semantic QueryMode = iota
	// Constraint queries (containing ':' or '=') get their structured
	// score boosted during fusion, favoring exact field matches.
	Constraint
)

// ClassifyQuery returns Constraint for any query containing ':' or '=',
// else Semantic.
func ClassifyQuery(query string) QueryMode {
	if strings.Contains(query, ":") || strings.Contains(query, "=") {
		return Constraint
	}
	return Semantic
}
