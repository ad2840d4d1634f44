package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryDeduper is the single-process stand-in for RedisCache.FirstSeen.
type MemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

func NewMemoryDeduper(ttl time.Duration) *MemoryDeduper {
	return &MemoryDeduper{seen: make(map[string]time.Time), ttl: ttl, now: time.Now}
}

func (d *MemoryDeduper) FirstSeen(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if at, ok := d.seen[id]; ok && (d.ttl <= 0 || now.Sub(at) < d.ttl) {
		return false, nil
	}
	d.seen[id] = now
	if len(d.seen)%1024 == 0 {
		d.sweep(now)
	}
	return true, nil
}

func (d *MemoryDeduper) sweep(now time.Time) {
	if d.ttl <= 0 {
		return
	}
	for id, at := range d.seen {
		if now.Sub(at) >= d.ttl {
			delete(d.seen, id)
		}
	}
}
