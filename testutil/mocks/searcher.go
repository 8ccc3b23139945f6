package mocks

import (
	"context"
	"sync"

	"github.com/Eeman1113/Hivemind/retrieval"
)

// SearchCall records a single retrieval invocation.
type SearchCall struct {
	Query      string
	MaxResults int
}

// Searcher is a mock implementation of retrieval.Searcher.
type Searcher struct {
	mu sync.Mutex

	results []retrieval.Result
	err     error
	calls   []SearchCall
}

// NewSearcher creates a mock searcher with a small fixed result set.
func NewSearcher() *Searcher {
	return &Searcher{
		results: []retrieval.Result{
			{Title: "Mock Paper", Summary: "Mock summary.", URL: "http://example.org/mock", Source: "arXiv"},
		},
	}
}

// WithResults sets the results returned by Search.
func (m *Searcher) WithResults(results ...retrieval.Result) *Searcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = results
	return m
}

// WithError makes every call fail with err.
func (m *Searcher) WithError(err error) *Searcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Search implements retrieval.Searcher.
func (m *Searcher) Search(ctx context.Context, query string, maxResults int) ([]retrieval.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SearchCall{Query: query, MaxResults: maxResults})
	if m.err != nil {
		return nil, m.err
	}
	if maxResults > 0 && maxResults < len(m.results) {
		return append([]retrieval.Result{}, m.results[:maxResults]...), nil
	}
	return append([]retrieval.Result{}, m.results...), nil
}

// Calls returns a copy of all recorded invocations.
func (m *Searcher) Calls() []SearchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SearchCall{}, m.calls...)
}
