package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedSearcher wraps a Searcher with a Redis read-through cache keyed on
// the normalized query and result limit. Cache failures degrade to a direct
// backend search; they never fail the request.
type CachedSearcher struct {
	inner  Searcher
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSearcher wraps inner with a Redis cache.
func NewCachedSearcher(inner Searcher, client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *CachedSearcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedSearcher{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "retrieval_cache")),
	}
}

func cacheKey(query string, maxResults int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", query, maxResults)))
	return fmt.Sprintf("hivemind:retrieval:%x", sum)
}

// Search implements Searcher.
func (c *CachedSearcher) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	key := cacheKey(query, maxResults)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cached []Result
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			c.logger.Debug("cache hit", zap.String("query", query))
			return cached, nil
		}
		// Corrupt entry; fall through and refresh it.
		c.logger.Warn("discarding corrupt cache entry", zap.String("key", key))
	} else if err != redis.Nil {
		c.logger.Warn("cache read failed", zap.Error(err))
	}

	results, err := c.inner.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	if raw, jsonErr := json.Marshal(results); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, raw, c.ttl).Err(); setErr != nil {
			c.logger.Warn("cache write failed", zap.Error(setErr))
		}
	}
	return results, nil
}
