package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string, out any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	DeleteMatching(ctx context.Context, pattern string) (int, error)
}

// RedisCache stores JSON values with a jittered TTL so entries written together
// do not all expire together.
type RedisCache struct {
	client    *redis.Client
	baseTTL   time.Duration
	maxJitter time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client:    client,
		baseTTL:   ttl,
		maxJitter: time.Minute,
	}
}

func (r *RedisCache) Get(ctx context.Context, key string, out any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}

	ttl := r.baseTTL
	if r.maxJitter > 0 {
		ttl += time.Duration(rand.Int63n(int64(r.maxJitter)))
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// DeleteMatching removes every key matching the glob pattern.
func (r *RedisCache) DeleteMatching(ctx context.Context, pattern string) (int, error) {
	deleted := 0
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("redis delete failed: %w", err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("redis scan failed: %w", err)
	}
	return deleted, nil
}

func productsKey(username, category string) string {
	if category == "" {
		category = "all"
	}
	return fmt.Sprintf("catalog:%s:products:%s", username, category)
}

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// userProductsPattern matches every cached product listing of one user.
func userProductsPattern(username string) string {
	return fmt.Sprintf("catalog:%s:products:*", globEscaper.Replace(username))
}

// allProductsPattern matches every user's cached product listings.
const allProductsPattern = "catalog:*:products:*"

func categoriesKey() string {
	return "catalog:categories"
}
