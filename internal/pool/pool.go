// Package pool maintains the candidate-leg pool the optimizer swaps
// from. Candidates arrive on per-sport Redis streams and live in an
// in-memory cache with a freshness window, so stale lines never reach a
// recommendation.
package pool

import (
	"sort"
	"sync"
	"time"

	"github.com/Rosewood1985/ai-sports-edge-sub010/pkg/models"
)

// Cache is the in-memory candidate pool. Entries are keyed by leg
// identity (game, market, side), so a re-published line replaces the
// previous quote instead of duplicating it.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

type entry struct {
	leg      models.Leg
	storedAt time.Time
}

// NewCache creates a candidate cache with the given freshness window.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stores or refreshes a candidate leg.
func (c *Cache) Put(leg models.Leg) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[leg.Key()] = entry{leg: leg, storedAt: c.now()}
}

// Fresh returns every candidate inside the freshness window, ordered by
// leg key so downstream tie-breaking stays deterministic. Stale entries
// are evicted on the way.
func (c *Cache) Fresh() []models.Leg {
	return c.fresh(func(models.Leg) bool { return true })
}

// FreshBySport returns the fresh candidates for one sport.
func (c *Cache) FreshBySport(sport models.Sport) []models.Leg {
	return c.fresh(func(leg models.Leg) bool { return leg.Sport == sport })
}

// Size returns the number of cached entries, fresh or not.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) fresh(match func(models.Leg) bool) []models.Leg {
	cutoff := c.now().Add(-c.ttl)

	c.mu.Lock()
	legs := make([]models.Leg, 0, len(c.entries))
	for key, e := range c.entries {
		if e.storedAt.Before(cutoff) {
			delete(c.entries, key)
			continue
		}
		if match(e.leg) {
			legs = append(legs, e.leg)
		}
	}
	c.mu.Unlock()

	sort.Slice(legs, func(i, j int) bool { return legs[i].Key() < legs[j].Key() })
	return legs
}
