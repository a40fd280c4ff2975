package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CheckpointStore records the start time of the last successful indexing pass.
// The incremental pass uses it to select the delta of products updated since.
type CheckpointStore interface {
	// LastRun returns the recorded checkpoint. ok is false when no pass has
	// completed yet.
	LastRun(ctx context.Context) (t time.Time, ok bool, err error)

	// SetLastRun records the checkpoint.
	SetLastRun(ctx context.Context, t time.Time) error
}

// redisCheckpointKey is where the checkpoint lives in Redis.
const redisCheckpointKey = "catalogue:index:last_run"

// RedisCheckpoint persists the checkpoint in Redis so incremental runs survive
// process restarts.
type RedisCheckpoint struct {
	client *redis.Client
}

// NewRedisCheckpoint creates a Redis-backed checkpoint store.
func NewRedisCheckpoint(client *redis.Client) *RedisCheckpoint {
	return &RedisCheckpoint{client: client}
}

// LastRun reads the checkpoint from Redis.
func (c *RedisCheckpoint) LastRun(ctx context.Context) (time.Time, bool, error) {
	raw, err := c.client.Get(ctx, redisCheckpointKey).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get index checkpoint: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse index checkpoint %q: %w", raw, err)
	}
	return t, true, nil
}

// SetLastRun writes the checkpoint to Redis.
func (c *RedisCheckpoint) SetLastRun(ctx context.Context, t time.Time) error {
	if err := c.client.Set(ctx, redisCheckpointKey, t.UTC().Format(time.RFC3339Nano), 0).Err(); err != nil {
		return fmt.Errorf("set index checkpoint: %w", err)
	}
	return nil
}

// MemoryCheckpoint keeps the checkpoint in memory. Used in tests and when no
// Redis is configured; incremental state is lost on restart, which only costs
// one full rebuild.
type MemoryCheckpoint struct {
	mu  sync.Mutex
	t   time.Time
	set bool
}

// NewMemoryCheckpoint creates an in-memory checkpoint store.
func NewMemoryCheckpoint() *MemoryCheckpoint {
	return &MemoryCheckpoint{}
}

// LastRun returns the recorded checkpoint.
func (c *MemoryCheckpoint) LastRun(_ context.Context) (time.Time, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t, c.set, nil
}

// SetLastRun records the checkpoint.
func (c *MemoryCheckpoint) SetLastRun(_ context.Context, t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
	c.set = true
	return nil
}
