package pool

import "time"

// SetNow replaces the cache clock in tests.
func (c *Cache) SetNow(now func() time.Time) {
	c.now = now
}
