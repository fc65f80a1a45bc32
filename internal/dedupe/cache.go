// ABOUTME: Thread-safe TTL cache over message ids with size-bounded eviction.
// ABOUTME: Chat transports redeliver; the agent must not double-execute governance actions.

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

type seenEntry struct {
	at      time.Time
	element *list.Element
}

// Cache remembers message ids for a TTL, holding at most maxSize entries.
// When full, the oldest id is evicted. All methods are safe for concurrent
// use.
type Cache struct {
	mu      sync.Mutex
	seen    map[string]*seenEntry
	order   *list.List
	ttl     time.Duration
	maxSize int
	done    chan struct{}
	once    sync.Once
}

// New creates a cache and starts its background expiry sweep.
func New(ttl time.Duration, maxSize int) *Cache {
	c := &Cache{
		seen:    make(map[string]*seenEntry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	go c.sweep()
	return c
}

// Seen atomically reports whether id was already recorded within the TTL,
// recording it if not. The check-and-record is one critical section so two
// concurrent deliveries of the same id cannot both proceed.
func (c *Cache) Seen(id string) bool {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.seen[id]; ok && now.Sub(entry.at) < c.ttl {
		entry.at = now
		c.order.MoveToBack(entry.element)
		return true
	}

	if entry, ok := c.seen[id]; ok {
		// Expired entry for the same id: refresh in place.
		entry.at = now
		c.order.MoveToBack(entry.element)
		return false
	}

	if len(c.seen) >= c.maxSize {
		c.evictOldestLocked()
	}
	c.seen[id] = &seenEntry{at: now, element: c.order.PushBack(id)}
	return false
}

// Len returns the number of tracked ids.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

// Close stops the background sweep. Idempotent.
func (c *Cache) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Cache) evictOldestLocked() {
	front := c.order.Front()
	if front == nil {
		return
	}
	id, _ := front.Value.(string)
	c.order.Remove(front)
	delete(c.seen, id)
}

func (c *Cache) sweep() {
	interval := c.ttl
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for front := c.order.Front(); front != nil; front = c.order.Front() {
				id, _ := front.Value.(string)
				entry := c.seen[id]
				if entry == nil || now.Sub(entry.at) < c.ttl {
					break
				}
				c.order.Remove(front)
				delete(c.seen, id)
			}
			c.mu.Unlock()
		}
	}
}
