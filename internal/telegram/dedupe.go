package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	platformredis "davomat/internal/platform/redis"
)

// Deduper filters update IDs that were already processed. Telegram redelivers
// updates after webhook timeouts, and the attendance upsert is idempotent
// anyway, but replies are not: a redelivered submission would confirm twice.
type Deduper interface {
	// Seen marks the update ID and reports whether it was already marked.
	Seen(ctx context.Context, updateID int) (bool, error)
}

const dedupeTTL = 10 * time.Minute

// RedisDeduper tracks update IDs in redis so deduplication survives restarts
// and covers multi-instance webhook deployments.
type RedisDeduper struct {
	client *platformredis.Client
}

func NewRedisDeduper(client *platformredis.Client) *RedisDeduper {
	return &RedisDeduper{client: client}
}

func (d *RedisDeduper) Seen(ctx context.Context, updateID int) (bool, error) {
	key := fmt.Sprintf("davomat:update:%d", updateID)
	set, err := d.client.SetNX(ctx, key, 1, dedupeTTL).Result()
	if err != nil {
		return false, fmt.Errorf("dedupe update %d: %w", updateID, err)
	}
	return !set, nil
}

// MemoryDeduper is the fallback when redis is not configured. Entries expire
// lazily on the next call.
type MemoryDeduper struct {
	mu   sync.Mutex
	seen map[int]time.Time
}

func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{seen: make(map[int]time.Time)}
}

func (d *MemoryDeduper) Seen(_ context.Context, updateID int) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	for id, at := range d.seen {
		if now.Sub(at) > dedupeTTL {
			delete(d.seen, id)
		}
	}

	if _, ok := d.seen[updateID]; ok {
		return true, nil
	}
	d.seen[updateID] = now
	return false, nil
}
