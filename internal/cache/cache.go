// Package cache layers a Redis TTL cache over the market data provider
// so repeated analysis passes within the TTL window reuse snapshots
// instead of hitting the upstream API.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/coinsight/coinsight/internal/config"
	"github.com/coinsight/coinsight/internal/domain"
	"github.com/coinsight/coinsight/internal/provider"
)

const keyPrefix = "coinsight"

// HitObserver is notified on cache lookups so callers can track the hit
// rate without the cache importing the telemetry package.
type HitObserver func(kind string, hit bool)

// CachingProvider wraps a MarketDataProvider with a Redis read-through
// cache for the heavy endpoints. Redis failures degrade to the upstream:
// a broken cache never breaks an analysis.
type CachingProvider struct {
	upstream provider.MarketDataProvider
	client   *redis.Client
	ttl      time.Duration
	log      zerolog.Logger
	observer HitObserver
}

// New connects to Redis and wraps upstream. Connection failure returns
// an error so the caller can decide to run uncached.
func New(cfg config.RedisConfig, upstream provider.MarketDataProvider, log zerolog.Logger) (*CachingProvider, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewWithClient(rdb, upstream, cfg.TTL, log), nil
}

// NewWithClient wraps an existing Redis client, used by tests.
func NewWithClient(client *redis.Client, upstream provider.MarketDataProvider, ttl time.Duration, log zerolog.Logger) *CachingProvider {
	if ttl == 0 {
		ttl = time.Minute
	}
	return &CachingProvider{
		upstream: upstream,
		client:   client,
		ttl:      ttl,
		log:      log.With().Str("component", "cache").Logger(),
	}
}

// SetHitObserver installs a lookup hook, used for cache metrics.
func (c *CachingProvider) SetHitObserver(obs HitObserver) {
	c.observer = obs
}

// Close releases the Redis connection.
func (c *CachingProvider) Close() error {
	return c.client.Close()
}

// CoinDetails serves from cache when fresh, otherwise fetches and stores.
func (c *CachingProvider) CoinDetails(ctx context.Context, symbol string, tf domain.Timeframe) (*domain.CoinDetails, error) {
	key := fmt.Sprintf("%s:coin:%s:%s", keyPrefix, symbol, tf)
	return readThrough(ctx, c, "coin_details", key, func(ctx context.Context) (*domain.CoinDetails, error) {
		return c.upstream.CoinDetails(ctx, symbol, tf)
	})
}

// Holders serves from cache when fresh, otherwise fetches and stores.
func (c *CachingProvider) Holders(ctx context.Context, symbol string) (*domain.HoldersSnapshot, error) {
	key := fmt.Sprintf("%s:holders:%s", keyPrefix, symbol)
	return readThrough(ctx, c, "holders", key, func(ctx context.Context) (*domain.HoldersSnapshot, error) {
		return c.upstream.Holders(ctx, symbol)
	})
}

// PeerRanks caches the shared ranking snapshot under a single key.
func (c *CachingProvider) PeerRanks(ctx context.Context) ([]domain.PeerRank, error) {
	key := keyPrefix + ":ranks"
	return readThrough(ctx, c, "peer_ranks", key, func(ctx context.Context) ([]domain.PeerRank, error) {
		return c.upstream.PeerRanks(ctx)
	})
}

// MarketSentiment is cheap and volatile, passed through uncached.
func (c *CachingProvider) MarketSentiment(ctx context.Context) (*float64, error) {
	return c.upstream.MarketSentiment(ctx)
}

// Enrichment is passed through uncached: intel payloads change between
// scans and staleness would silently skew the enriched strategy.
func (c *CachingProvider) Enrichment(ctx context.Context, symbol string) (*domain.Enrichment, error) {
	return c.upstream.Enrichment(ctx, symbol)
}

func readThrough[T any](ctx context.Context, c *CachingProvider, kind, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	raw, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var out T
		if uerr := json.Unmarshal([]byte(raw), &out); uerr == nil {
			c.observe(kind, true)
			return out, nil
		}
		// Corrupt entry, drop it and refetch.
		c.client.Del(ctx, key)
	case err != redis.Nil:
		c.log.Warn().Err(err).Str("key", key).Msg("cache read failed, falling through")
	}
	c.observe(kind, false)

	out, err := fetch(ctx)
	if err != nil {
		return zero, err
	}

	if buf, merr := json.Marshal(out); merr == nil {
		if serr := c.client.Set(ctx, key, buf, c.ttl).Err(); serr != nil {
			c.log.Warn().Err(serr).Str("key", key).Msg("cache write failed")
		}
	}
	return out, nil
}

func (c *CachingProvider) observe(kind string, hit bool) {
	if c.observer != nil {
		c.observer(kind, hit)
	}
}
