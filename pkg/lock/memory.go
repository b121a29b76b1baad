package lock

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryLocker keeps one single-slot semaphore per key in a go-cache so idle
// keys age out instead of growing the map forever.
type MemoryLocker struct {
	cache *cache.Cache
	ttl   time.Duration
}

var _ Locker = (*MemoryLocker)(nil)

// NewMemoryLocker expires semaphores idle for longer than ttl. ttl must stay
// well above the longest time a lock is held.
func NewMemoryLocker(ttl time.Duration) *MemoryLocker {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryLocker{
		cache: cache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

func (l *MemoryLocker) semaphore(key string) chan struct{} {
	for {
		if existing, found := l.cache.Get(key); found {
			sem := existing.(chan struct{})
			// Touch to slide the expiry
			l.cache.Set(key, sem, l.ttl)
			return sem
		}
		sem := make(chan struct{}, 1)
		if err := l.cache.Add(key, sem, l.ttl); err == nil {
			return sem
		}
	}
}

func (l *MemoryLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	sem := l.semaphore(key)
	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-sem })
	}, nil
}
