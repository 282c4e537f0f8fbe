package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// guardTTL outlives the day it guards so a late retry still sees the key.
const guardTTL = 36 * time.Hour

type setNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// DailyGuard lets a scheduled job fire at most once per calendar day across
// every running instance.
// Key format: <job>:notified:<YYYY-MM-DD>
type DailyGuard struct {
	client setNXer
}

// NewDailyGuard creates a DailyGuard wrapping the given Redis client.
func NewDailyGuard(client *redis.Client) *DailyGuard {
	return &DailyGuard{client: client}
}

// Acquire reports whether this caller is the first for job on date.
func (g *DailyGuard) Acquire(ctx context.Context, job string, date time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ok, err := g.client.SetNX(ctx, g.key(job, date), time.Now().UTC().Format(time.RFC3339), guardTTL).Result()
	if err != nil {
		return false, fmt.Errorf("daily guard: %w", err)
	}
	return ok, nil
}

func (g *DailyGuard) key(job string, date time.Time) string {
	return fmt.Sprintf("%s:notified:%s", job, date.Format(time.DateOnly))
}
