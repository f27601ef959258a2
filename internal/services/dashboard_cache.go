package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/infratrack/engine/internal/analytics"
	appErr "github.com/infratrack/engine/pkg/errors"
)

// DashboardCache stores computed dashboard snapshots in redis, one entry per
// user. Entries are written as whole JSON values (plain SET), so concurrent
// invalidation and reads on the same key resolve last-writer-wins with no
// partial entry ever visible. Invalidating one user's entry never touches
// another's.
type DashboardCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDashboardCache(rdb *redis.Client, ttl time.Duration) *DashboardCache {
	return &DashboardCache{rdb: rdb, ttl: ttl}
}

func cacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("dashboard:%s", userID)
}

// Get returns the cached snapshot for a user, reporting whether a usable
// entry existed. Decode failures count as a miss.
func (c *DashboardCache) Get(ctx context.Context, userID uuid.UUID) (*analytics.KPISnapshot, bool) {
	raw, err := c.rdb.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var snap analytics.KPISnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, false
	}
	return &snap, true
}

// Set stores the snapshot under the user's key with the configured TTL.
func (c *DashboardCache) Set(ctx context.Context, userID uuid.UUID, snap *analytics.KPISnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "encode dashboard snapshot failed")
	}
	if err := c.rdb.Set(ctx, cacheKey(userID), raw, c.ttl).Err(); err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "dashboard cache set failed")
	}
	return nil
}

// Invalidate drops the user's cached entry on demand.
func (c *DashboardCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if err := c.rdb.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "dashboard cache invalidate failed")
	}
	return nil
}
