package token

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRevocationCache keeps revoked refresh token ids in Redis so the
// rotation path can reject them without a database round trip. Entries
// expire together with the token they shadow.
type RedisRevocationCache struct {
	client *redis.Client
}

// NewRedisRevocationCache creates a Redis-backed revocation cache.
func NewRedisRevocationCache(client *redis.Client) *RedisRevocationCache {
	return &RedisRevocationCache{client: client}
}

func revocationKey(id string) string {
	return fmt.Sprintf("revoked:refresh:%s", id)
}

// MarkRevoked records the id as revoked until the token's own expiry.
func (c *RedisRevocationCache) MarkRevoked(ctx context.Context, id string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		// Token already expired, nothing to shadow.
		return nil
	}

	if err := c.client.Set(ctx, revocationKey(id), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark refresh token revoked: %w", err)
	}
	return nil
}

// IsRevoked reports whether the id has been revoked.
func (c *RedisRevocationCache) IsRevoked(ctx context.Context, id string) (bool, error) {
	exists, err := c.client.Exists(ctx, revocationKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revocation cache: %w", err)
	}
	return exists > 0, nil
}
