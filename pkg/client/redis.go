package client

import (
	"context"
	"time"

	"bizbranches/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// NewRedis returns nil when addr is empty or the server is unreachable;
// callers treat a nil client as "cache disabled".
func NewRedis(log *logger.Logger, addr string) *redis.Client {
	if addr == "" {
		return nil
	}

	c := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unavailable, response cache disabled", "addr", addr, "error", err)
		return nil
	}

	log.Info("Connected to Redis", "addr", addr)
	return c
}
