package googlebooks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/redis.v5"
)

const cacheKeyPrefix = "googlebooks:volumes:"

// Searcher is implemented by Client and CachedClient.
type Searcher interface {
	Search(ctx context.Context, query string) (*VolumesResponse, error)
}

// CachedClient keeps successful search responses in Redis. Any cache failure
// falls through to the wrapped searcher.
type CachedClient struct {
	next  Searcher
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedClient(next Searcher, client *redis.Client, ttl time.Duration) *CachedClient {
	return &CachedClient{next: next, redis: client, ttl: ttl}
}

func (c *CachedClient) Search(ctx context.Context, query string) (*VolumesResponse, error) {
	key := cacheKey(query)

	raw, err := c.redis.Get(key).Bytes()
	switch {
	case err == nil:
		var res VolumesResponse
		if jsonErr := json.Unmarshal(raw, &res); jsonErr == nil {
			return &res, nil
		}
		log.Warn().Str("key", key).Msg("Discarding unreadable cached volumes response")
	case err != redis.Nil:
		log.Warn().Err(err).Str("key", key).Msg("Catalog cache read failed")
	}

	res, err := c.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(res); err == nil {
		if err := c.redis.Set(key, raw, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Catalog cache write failed")
		}
	}
	return res, nil
}

// cacheKey uses the query exactly as it is sent to the catalog.
func cacheKey(query string) string {
	return cacheKeyPrefix + query
}
