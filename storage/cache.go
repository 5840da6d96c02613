package storage

import "time"

// Clock supplies the current time; injectable so cache aging is testable.
type Clock func() time.Time

// ttlCache is a single-value read cache with a short staleness bound. It is
// owned by a repo, never shared across instances: multiple concurrently
// running processes each hold independent caches, so cross-instance
// read-after-write consistency is bounded by the TTL.
type ttlCache[T any] struct {
	value     T
	populated bool
	fetchedAt time.Time
	ttl       time.Duration
	clock     Clock
}

func newTTLCache[T any](ttl time.Duration, clock Clock) ttlCache[T] {
	if clock == nil {
		clock = time.Now
	}
	return ttlCache[T]{ttl: ttl, clock: clock}
}

func (c *ttlCache[T]) get() (T, bool) {
	if !c.populated || c.clock().Sub(c.fetchedAt) >= c.ttl {
		var zero T
		return zero, false
	}
	return c.value, true
}

func (c *ttlCache[T]) put(value T) {
	c.value = value
	c.populated = true
	c.fetchedAt = c.clock()
}
