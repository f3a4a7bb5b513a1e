package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DenylistRepository records revoked token IDs in Redis. Entries carry the
// token's own remaining TTL, so the denylist never outlives the tokens it
// blocks and needs no sweeping.
type DenylistRepository struct {
	client *redis.Client
}

func NewDenylistRepository(client *redis.Client) *DenylistRepository {
	return &DenylistRepository{client: client}
}

func denyKey(jti string) string {
	return "denylist:jti:" + jti
}

// Deny marks a token id as revoked until it would have expired anyway.
func (r *DenylistRepository) Deny(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, denyKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("deny token: %w", err)
	}
	return nil
}

// IsDenied reports whether a token id has been revoked.
func (r *DenylistRepository) IsDenied(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, denyKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check denylist: %w", err)
	}
	return n > 0, nil
}
