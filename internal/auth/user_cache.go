package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/callbook-service/internal/domain"
)

const userCachePrefix = "session:user:"

// UserCache is a read-through cache of session credentials kept in Redis.
// Users are immutable, so entries only expire by TTL.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUserCache returns nil when client is nil or ttl is not positive, which
// disables caching.
func NewUserCache(client *redis.Client, ttl time.Duration) *UserCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &UserCache{client: client, ttl: ttl}
}

// Get returns cached credentials. A miss yields (nil, nil).
func (c *UserCache) Get(ctx context.Context, userID string) (*domain.Credentials, error) {
	raw, err := c.client.Get(ctx, userCachePrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var creds domain.Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// Set stores credentials for the configured TTL.
func (c *UserCache) Set(ctx context.Context, creds domain.Credentials) error {
	raw, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, userCachePrefix+creds.ID, raw, c.ttl).Err()
}
