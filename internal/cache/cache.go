// Package cache keeps per-gift contribution summaries in Redis so gift
// listings do not re-sum every contribution on each request. Entries are
// retired whenever the underlying contributions or price change.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Kerhoff/ListeDeNoel/internal/ledger"
)

const (
	summaryKeyPrefix    = "ledger:summary:"
	generationKeyPrefix = "ledger:summary:gen:"
)

// SummaryCache stores ledger summaries per gift.
//
// Every gift has a generation that Invalidate bumps. Summaries are stored
// under the generation observed by Get before the contributions were read,
// so a summary computed from data older than an invalidation lands under a
// stale generation and is never served.
type SummaryCache interface {
	// Get returns the cached summary of the current generation, whether it
	// was present, and the generation to pass to Set.
	Get(ctx context.Context, giftID int64) (*ledger.Summary, int64, bool, error)
	Set(ctx context.Context, giftID, generation int64, summary ledger.Summary) error
	Invalidate(ctx context.Context, giftIDs ...int64) error
}

// NewRedisClient connects to the Redis instance at url and pings it.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}

	return client, nil
}

type redisSummaryCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisSummaryCache creates a summary cache backed by client.
func NewRedisSummaryCache(client redis.Cmdable, ttl time.Duration) SummaryCache {
	return &redisSummaryCache{client: client, ttl: ttl}
}

func summaryKey(giftID, generation int64) string {
	return fmt.Sprintf("%s%d:%d", summaryKeyPrefix, giftID, generation)
}

func generationKey(giftID int64) string {
	return fmt.Sprintf("%s%d", generationKeyPrefix, giftID)
}

func (c *redisSummaryCache) Get(ctx context.Context, giftID int64) (*ledger.Summary, int64, bool, error) {
	generation, err := c.client.Get(ctx, generationKey(giftID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, fmt.Errorf("failed to get summary generation: %w", err)
	}

	data, err := c.client.Get(ctx, summaryKey(giftID, generation)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, generation, false, nil
		}
		return nil, generation, false, fmt.Errorf("failed to get cached summary: %w", err)
	}

	var summary ledger.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, generation, false, fmt.Errorf("failed to decode cached summary: %w", err)
	}

	return &summary, generation, true, nil
}

func (c *redisSummaryCache) Set(ctx context.Context, giftID, generation int64, summary ledger.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	if err := c.client.Set(ctx, summaryKey(giftID, generation), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache summary: %w", err)
	}

	return nil
}

// Invalidate bumps the generation of every gift. Summaries of older
// generations expire on their own.
func (c *redisSummaryCache) Invalidate(ctx context.Context, giftIDs ...int64) error {
	for _, id := range giftIDs {
		if err := c.client.Incr(ctx, generationKey(id)).Err(); err != nil {
			return fmt.Errorf("failed to invalidate summary of gift %d: %w", id, err)
		}
	}
	return nil
}

type noopSummaryCache struct{}

// NewNoopSummaryCache returns a cache that stores nothing. It is used when no
// Redis URL is configured.
func NewNoopSummaryCache() SummaryCache {
	return noopSummaryCache{}
}

func (noopSummaryCache) Get(context.Context, int64) (*ledger.Summary, int64, bool, error) {
	return nil, 0, false, nil
}

func (noopSummaryCache) Set(context.Context, int64, int64, ledger.Summary) error {
	return nil
}

func (noopSummaryCache) Invalidate(context.Context, ...int64) error {
	return nil
}
