// Package retrieval provides the research retrieval contract and backends.
// Failures are a distinct error channel; they are never embedded in the
// result rows.
package retrieval

import "context"

// Result is one retrieval record.
type Result struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
	Source  string `json:"source"`
}

// Searcher retrieves ordered result records for a query.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}
