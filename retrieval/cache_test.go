package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSearcher struct {
	calls   int
	results []Result
	err     error
}

func (s *countingSearcher) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCachedSearcher_ReadThrough(t *testing.T) {
	_, client := newTestRedis(t)
	inner := &countingSearcher{results: []Result{
		{Title: "Paper A", Summary: "summary", URL: "http://example.org/a", Source: "arXiv"},
	}}
	cs := NewCachedSearcher(inner, client, time.Minute, nil)

	first, err := cs.Search(context.Background(), "transformers", 5)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, inner.calls)

	second, err := cs.Search(context.Background(), "transformers", 5)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls, "second lookup should be served from cache")
}

func TestCachedSearcher_DistinctKeys(t *testing.T) {
	_, client := newTestRedis(t)
	inner := &countingSearcher{results: []Result{{Title: "Paper"}}}
	cs := NewCachedSearcher(inner, client, time.Minute, nil)

	_, err := cs.Search(context.Background(), "transformers", 5)
	require.NoError(t, err)
	_, err = cs.Search(context.Background(), "transformers", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "different result limits must not share a key")
}

func TestCachedSearcher_Expiry(t *testing.T) {
	mr, client := newTestRedis(t)
	inner := &countingSearcher{results: []Result{{Title: "Paper"}}}
	cs := NewCachedSearcher(inner, client, time.Minute, nil)

	_, err := cs.Search(context.Background(), "q", 5)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	_, err = cs.Search(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedSearcher_BackendErrorNotCached(t *testing.T) {
	_, client := newTestRedis(t)
	inner := &countingSearcher{err: errors.New("backend down")}
	cs := NewCachedSearcher(inner, client, time.Minute, nil)

	_, err := cs.Search(context.Background(), "q", 5)
	require.Error(t, err)

	inner.err = nil
	inner.results = []Result{{Title: "Paper"}}
	results, err := cs.Search(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedSearcher_CacheDownDegradesToBackend(t *testing.T) {
	mr, client := newTestRedis(t)
	inner := &countingSearcher{results: []Result{{Title: "Paper"}}}
	cs := NewCachedSearcher(inner, client, time.Minute, nil)
	mr.Close()

	results, err := cs.Search(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, inner.calls)
}
