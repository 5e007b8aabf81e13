package authz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const claimCacheTTL = 15 * time.Minute

// ClaimCache keeps each user's resolved claim set in Redis so the auth
// middleware does not rebuild it from the database on every request. A nil
// client disables caching; all methods are no-ops then.
type ClaimCache struct {
	client *redis.Client
	prefix string
}

func NewClaimCache(client *redis.Client, appName string) *ClaimCache {
	return &ClaimCache{client: client, prefix: appName}
}

func (c *ClaimCache) key(userID int64) string {
	return fmt.Sprintf("%s:claims:%d", c.prefix, userID)
}

// Get returns the cached claim set and whether a cache entry existed.
func (c *ClaimCache) Get(ctx context.Context, userID int64) ([]string, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}

	val, err := c.client.Get(ctx, c.key(userID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if val == "" {
		return []string{}, true, nil
	}
	return strings.Split(val, ","), true, nil
}

func (c *ClaimCache) Set(ctx context.Context, userID int64, claims []string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, c.key(userID), strings.Join(claims, ","), claimCacheTTL).Err()
}

// Invalidate drops the cached claim set after any role or claim mutation for
// the user.
func (c *ClaimCache) Invalidate(ctx context.Context, userID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.key(userID)).Err()
}
