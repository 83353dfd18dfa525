package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecraft-workspace/internal/models"
	"github.com/noah-isme/codecraft-workspace/internal/workspace"
)

const (
	problemCachePrefix = "codecraft:problems:v2"
	anonymousScope     = "anon"
)

// ProblemCache is a read-through Redis cache in front of a problem source. Problems do not change
// while they are being worked on, so entries are only evicted by TTL. Entries are partitioned by
// credential scope: a problem the platform served for one token is never returned to another.
type ProblemCache struct {
	source workspace.ProblemSource
	cache  *redis.Client
	scope  string
	ttl    time.Duration
	logger zerolog.Logger
}

// CacheScope derives the cache partition of a platform session token.
func CacheScope(token string) string {
	if token == "" {
		return anonymousScope
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:12])
}

// NewProblemCache wraps source for the given credential scope. A nil cache disables caching.
func NewProblemCache(source workspace.ProblemSource, cache *redis.Client, scope string, ttl time.Duration, logger zerolog.Logger) *ProblemCache {
	if scope == "" {
		scope = anonymousScope
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ProblemCache{
		source: source,
		cache:  cache,
		scope:  scope,
		ttl:    ttl,
		logger: logger.With().Str("component", "problem_cache").Logger(),
	}
}

// ProblemByID returns the cached problem or fetches and stores it.
func (c *ProblemCache) ProblemByID(ctx context.Context, id string) (models.Problem, error) {
	key := fmt.Sprintf("%s:%s:%s", problemCachePrefix, c.scope, id)

	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, key).Result(); err == nil && cached != "" {
			var problem models.Problem
			if err := json.Unmarshal([]byte(cached), &problem); err == nil {
				return problem, nil
			}
			c.logger.Warn().Str("problem_id", id).Msg("discarding undecodable cached problem")
		} else if err != nil && err != redis.Nil {
			c.logger.Warn().Err(err).Str("problem_id", id).Msg("failed to read problem cache")
		}
	}

	problem, err := c.source.ProblemByID(ctx, id)
	if err != nil {
		return models.Problem{}, err
	}

	if c.cache != nil {
		if payload, err := json.Marshal(problem); err == nil {
			if err := c.cache.Set(ctx, key, payload, c.ttl).Err(); err != nil {
				c.logger.Warn().Err(err).Msg("failed to write problem cache")
			}
		}
	}

	return problem, nil
}
