package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/custodia/pkg/dto"
	"github.com/redis/go-redis/v9"
)

// RedisCache is a Redis-backed listing cache for multi-instance
// deployments, where an in-process map would go stale per instance.
type RedisCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisCache creates a Redis listing cache from a connection URL.
func NewRedisCache(url, prefix string, logger *slog.Logger) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisCache{client: redis.NewClient(opt), prefix: prefix, logger: logger}, nil
}

func (r *RedisCache) key(key string) string {
	return r.prefix + key
}

// Get returns the cached listing, or ok=false on a miss.
func (r *RedisCache) Get(ctx context.Context, key string) ([]dto.AccountRead, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var accounts []dto.AccountRead
	if err := json.Unmarshal([]byte(val), &accounts); err != nil {
		r.logger.Error("listing cache unmarshal error", "key", key, "error", err)
		return nil, false, err
	}
	return accounts, true, nil
}

// Set stores a listing under key with ttl as the Redis expiry.
func (r *RedisCache) Set(ctx context.Context, key string, accounts []dto.AccountRead, ttl time.Duration) error {
	data, err := json.Marshal(accounts)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(key), data, ttl).Err()
}

// InvalidateUser scans for the user's listing keys and deletes them.
func (r *RedisCache) InvalidateUser(ctx context.Context, email string) error {
	pattern := r.key("accounts:" + email + ":*")
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}
