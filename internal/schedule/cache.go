package schedule

import (
	"sync"
	"time"
)

// cached is a single value with an explicit expiry. Zero value is empty.
type cached[T any] struct {
	mu     sync.Mutex
	value  T
	expiry time.Time
	set    bool
}

// get returns the held value if it has not expired.
func (c *cached[T]) get(now time.Time) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.set || now.After(c.expiry) {
		var zero T
		return zero, false
	}
	return c.value, true
}

// put stores v until the given expiry.
func (c *cached[T]) put(v T, expiry time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
	c.expiry = expiry
	c.set = true
}

// Invalidate drops the held value so the next get misses.
func (c *cached[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.value = zero
	c.set = false
}
