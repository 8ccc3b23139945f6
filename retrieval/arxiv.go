package retrieval

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultArxivBaseURL = "http://export.arxiv.org/api/query"

// ArxivClient searches the arXiv Atom API for academic papers.
type ArxivClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// ArxivOption configures an ArxivClient.
type ArxivOption func(*ArxivClient)

// WithBaseURL overrides the arXiv API endpoint (used in tests).
func WithBaseURL(u string) ArxivOption {
	return func(c *ArxivClient) { c.baseURL = u }
}

// WithHTTPTimeout sets the HTTP client timeout.
func WithHTTPTimeout(d time.Duration) ArxivOption {
	return func(c *ArxivClient) { c.client.Timeout = d }
}

// NewArxivClient creates an arXiv searcher.
func NewArxivClient(logger *zap.Logger, opts ...ArxivOption) *ArxivClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &ArxivClient{
		baseURL: defaultArxivBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger.With(zap.String("component", "arxiv_client")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// atomFeed mirrors the subset of the arXiv Atom response we consume.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string     `xml:"title"`
	Summary string     `xml:"summary"`
	ID      string     `xml:"id"`
	Links   []atomLink `xml:"link"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

// Search implements Searcher against the arXiv export API.
func (c *ArxivClient) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("arxiv: empty query")
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprintf("%d", maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("arxiv: failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arxiv: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv: search failed with status %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("arxiv: failed to parse feed: %w", err)
	}

	results := make([]Result, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		link := e.ID
		for _, l := range e.Links {
			if l.Rel == "alternate" && l.Href != "" {
				link = l.Href
				break
			}
		}
		results = append(results, Result{
			Title:   strings.TrimSpace(e.Title),
			Summary: strings.TrimSpace(e.Summary),
			URL:     link,
			Source:  "arXiv",
		})
	}

	c.logger.Debug("arxiv search completed",
		zap.String("query", query),
		zap.Int("results", len(results)),
		zap.Duration("latency", time.Since(start)),
	)

	return results, nil
}
