package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenCache remembers which user a token key belongs to.
type TokenCache interface {
	GetUserID(ctx context.Context, key string) (string, bool, error)
	SetUserID(ctx context.Context, key, userID string) error
}

const tokenCachePrefix = "auth:token:"

type redisTokenCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTokenCache returns a Redis-backed cache, or a no-op cache when rdb is nil.
func NewTokenCache(rdb *redis.Client, ttl time.Duration) TokenCache {
	if rdb == nil {
		return noopTokenCache{}
	}
	return &redisTokenCache{rdb: rdb, ttl: ttl}
}

// Keys are hashed so raw bearer tokens never sit in Redis.
func cacheKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return tokenCachePrefix + hex.EncodeToString(sum[:])
}

func (c *redisTokenCache) GetUserID(ctx context.Context, key string) (string, bool, error) {
	userID, err := c.rdb.Get(ctx, cacheKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redisTokenCache.GetUserID: %w", err)
	}
	return userID, true, nil
}

func (c *redisTokenCache) SetUserID(ctx context.Context, key, userID string) error {
	if err := c.rdb.Set(ctx, cacheKey(key), userID, c.ttl).Err(); err != nil {
		return fmt.Errorf("redisTokenCache.SetUserID: %w", err)
	}
	return nil
}

type noopTokenCache struct{}

func (noopTokenCache) GetUserID(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (noopTokenCache) SetUserID(context.Context, string, string) error {
	return nil
}
