// Package ledger provides a validated, read-only view over a caller-supplied
// wager list. It partitions settled from pending entries and buckets wagers
// by segment; all statistics live in the analytics package.
package ledger

import (
	"fmt"
	"sort"

	"github.com/Rosewood1985/ai-sports-edge-sub010/pkg/models"
)

// Snapshot is an immutable view over one user's wagers. The constructor
// copies the input, so later caller mutations do not leak in.
type Snapshot struct {
	wagers  []models.Wager
	settled []models.Wager
	pending int
}

// NewSnapshot validates every wager, derives the payout on settled entries
// that arrived without one, and orders the settled series by settlement
// time. Validation failures surface immediately; they are never clamped.
func NewSnapshot(wagers []models.Wager) (*Snapshot, error) {
	owned := make([]models.Wager, len(wagers))
	copy(owned, wagers)

	settled := make([]models.Wager, 0, len(owned))
	pending := 0

	for i := range owned {
		if err := owned[i].Validate(); err != nil {
			return nil, fmt.Errorf("ledger entry %d: %w", i, err)
		}

		if !owned[i].Settled() {
			pending++
			continue
		}

		if owned[i].Payout == nil {
			payout, err := owned[i].SettledPayout()
			if err != nil {
				return nil, fmt.Errorf("ledger entry %d: %w", i, err)
			}
			owned[i].Payout = &payout
		}
		settled = append(settled, owned[i])
	}

	sort.SliceStable(settled, func(a, b int) bool {
		return settled[a].SettledAt.Before(*settled[b].SettledAt)
	})

	return &Snapshot{wagers: owned, settled: settled, pending: pending}, nil
}

// All returns every wager in input order.
func (s *Snapshot) All() []models.Wager {
	return s.wagers
}

// Settled returns the settled wagers ordered by settlement time, each with
// its payout populated.
func (s *Snapshot) Settled() []models.Wager {
	return s.settled
}

// PendingCount returns the number of unsettled wagers.
func (s *Snapshot) PendingCount() int {
	return s.pending
}

// Len returns the total number of wagers in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.wagers)
}

// Segments buckets the snapshot's wagers by the given key. Bucket order is
// not defined; values preserve input order within each bucket.
func (s *Snapshot) Segments(key models.SegmentKey) (map[string][]models.Wager, error) {
	if !key.Valid() {
		return nil, fmt.Errorf("unknown segment key %q", key)
	}

	buckets := make(map[string][]models.Wager)
	for _, w := range s.wagers {
		value := w.SegmentValue(key)
		buckets[value] = append(buckets[value], w)
	}
	return buckets, nil
}
