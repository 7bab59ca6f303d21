// cache — кэш реестра отозванных токенов в Redis.
// Источник истины — PostgreSQL; кэш хранит только положительные ответы
// ("jti отозван") с TTL, равным остаточному сроку жизни токена.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationCache — минимальный контракт кэша отозванных JTI.
type RevocationCache interface {
	// IsRevoked возвращает true, если JTI помечен как отозванный.
	// false означает промах кэша, а не «токен активен».
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// MarkRevoked помечает JTI отозванным на ttl.
	MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой, используется "auth:revoked:".
func NewRedisCache(ctx context.Context, redisURL, prefix string) (RevocationCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return New(rdb, prefix), nil
}

// New оборачивает готовый клиент Redis.
func New(rdb redis.UniversalClient, prefix string) RevocationCache {
	if prefix == "" {
		prefix = "auth:revoked:"
	}

	return &redisCache{rdb: rdb, prefix: prefix}
}

func (c *redisCache) key(jti string) string { return c.prefix + jti }

func (c *redisCache) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := c.rdb.Get(ctx, c.key(jti)).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, redis.Nil) {
		return false, nil
	}

	return false, err
}

func (c *redisCache) MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error {
	// Токен уже истёк: хранить нечего, Verify отклонит его и так.
	if ttl <= 0 {
		return nil
	}

	return c.rdb.Set(ctx, c.key(jti), "1", ttl).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }
