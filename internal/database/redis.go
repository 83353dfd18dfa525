package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisDialTimeout = 5 * time.Second

// ConnectRedis dials the Redis server backing the problem cache, the catalog cache and the
// workspace event channel. An empty URL disables all three and yields a nil client.
func ConnectRedis(ctx context.Context, url string, logger zerolog.Logger) (*redis.Client, error) {
	log := logger.With().Str("component", "redis").Logger()
	if url == "" {
		log.Warn().Msg("redis disabled, problem cache and redis events are off")
		return nil, nil
	}

	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()

	client := redis.NewClient(options)
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to connect to redis at %s: %w", options.Addr, err)
	}

	log.Info().Str("addr", options.Addr).Int("db", options.DB).Msg("redis connected")
	return client, nil
}
