package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"quiz-console/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// DefaultCatalogKey holds the cached catalog document.
const DefaultCatalogKey = "quiz:catalog"

// CatalogLoader fetches the catalog from its source of truth (JSON file, Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) ([]domain.QuizTopic, error)
}

// CatalogCache keeps the whole catalog as one JSON string in Redis and falls back
// to the wrapped loader on a miss, so several consoles share one source read:
//
//	SET quiz:catalog [{"Title":...,"Questions":[...]}] EX <ttl>
type CatalogCache struct {
	client *redis.Client
	loader CatalogLoader
	key    string
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	logger *slog.Logger
}

func NewCatalogCache(client *redis.Client, loader CatalogLoader, key string, ttl time.Duration, logger *slog.Logger) *CatalogCache {
	if key == "" {
		key = DefaultCatalogKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogCache{
		client: client,
		loader: loader,
		key:    key,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger,
	}
}

func (c *CatalogCache) LoadCatalog(ctx context.Context) ([]domain.QuizTopic, error) {
	if topics, ok := c.cached(ctx); ok {
		return topics, nil
	}

	result, err, _ := c.sf.Do(c.key, func() (interface{}, error) {
		// Re-check cache in case another caller filled it.
		if topics, ok := c.cached(ctx); ok {
			return topics, nil
		}

		topics, err := c.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(topics)
		if err != nil {
			return nil, fmt.Errorf("marshal catalog: %w", err)
		}
		if err := c.client.Set(ctx, c.key, payload, c.ttlWithJitter()).Err(); err != nil {
			// a cache that cannot be written still serves the loaded catalog
			c.logger.Warn("catalog cache write failed", "key", c.key, "err", err)
		}
		return topics, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuizTopic), nil
}

// Invalidate drops the cached document; the next load goes to the source.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}

func (c *CatalogCache) cached(ctx context.Context) ([]domain.QuizTopic, bool) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("catalog cache read failed", "key", c.key, "err", err)
		}
		return nil, false
	}
	var topics []domain.QuizTopic
	if err := json.Unmarshal(raw, &topics); err != nil {
		c.logger.Warn("discarding malformed cached catalog", "key", c.key, "err", err)
		return nil, false
	}
	return topics, true
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
