package ledger_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/ledger"
	"github.com/Rosewood1985/ai-sports-edge-sub010/pkg/models"
)

var day0 = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

func wagerAt(id string, outcome models.Outcome, stake, odds float64, settledDay int) models.Wager {
	w := models.Wager{
		ID:          id,
		Book:        "draftkings",
		Sport:       models.SportNBA,
		Market:      models.MarketH2H,
		Stake:       stake,
		OddsDecimal: odds,
		Outcome:     outcome,
		PlacedAt:    day0.AddDate(0, 0, settledDay).Add(-3 * time.Hour),
	}
	if outcome != models.OutcomePending {
		ts := day0.AddDate(0, 0, settledDay)
		w.SettledAt = &ts
	}
	return w
}

func TestNewSnapshotPartitionsAndOrders(t *testing.T) {
	wagers := []models.Wager{
		wagerAt("w-3", models.OutcomeWon, 50, 2.0, 3),
		wagerAt("w-1", models.OutcomeLost, 100, 1.9, 1),
		wagerAt("w-p", models.OutcomePending, 25, 2.2, 0),
		wagerAt("w-2", models.OutcomePushed, 80, 1.8, 2),
	}

	snap, err := ledger.NewSnapshot(wagers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Len() != 4 {
		t.Errorf("Len() = %d, want 4", snap.Len())
	}
	if snap.PendingCount() != 1 {
		t.Errorf("PendingCount() = %d, want 1", snap.PendingCount())
	}

	settled := snap.Settled()
	if len(settled) != 3 {
		t.Fatalf("Settled() returned %d wagers, want 3", len(settled))
	}
	for i, wantID := range []string{"w-1", "w-2", "w-3"} {
		if settled[i].ID != wantID {
			t.Errorf("settled[%d].ID = %s, want %s", i, settled[i].ID, wantID)
		}
	}
}

func TestNewSnapshotDerivesPayouts(t *testing.T) {
	wagers := []models.Wager{
		wagerAt("won", models.OutcomeWon, 100, 2.5, 1),
		wagerAt("lost", models.OutcomeLost, 100, 2.5, 2),
		wagerAt("pushed", models.OutcomePushed, 100, 2.5, 3),
	}

	snap, err := ledger.NewSnapshot(wagers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantByID := map[string]float64{"won": 250, "lost": 0, "pushed": 100}
	for _, w := range snap.Settled() {
		if w.Payout == nil {
			t.Fatalf("wager %s: payout not derived", w.ID)
		}
		if math.Abs(*w.Payout-wantByID[w.ID]) > 1e-9 {
			t.Errorf("wager %s: payout = %f, want %f", w.ID, *w.Payout, wantByID[w.ID])
		}
	}
}

func TestNewSnapshotRejectsInvalidEntries(t *testing.T) {
	bad := wagerAt("bad", models.OutcomeWon, -5, 2.0, 1)
	_, err := ledger.NewSnapshot([]models.Wager{wagerAt("ok", models.OutcomeWon, 50, 2.0, 0), bad})
	if !errors.Is(err, models.ErrInvalidWager) {
		t.Errorf("expected ErrInvalidWager, got %v", err)
	}
}

func TestNewSnapshotCopiesInput(t *testing.T) {
	wagers := []models.Wager{wagerAt("w-1", models.OutcomeWon, 50, 2.0, 1)}
	snap, err := ledger.NewSnapshot(wagers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wagers[0].Stake = 9999
	if snap.All()[0].Stake != 50 {
		t.Error("snapshot should not observe caller mutations after construction")
	}
}

func TestSegments(t *testing.T) {
	nfl := wagerAt("nfl-1", models.OutcomeWon, 40, 2.1, 1)
	nfl.Sport = models.SportNFL
	nfl.Book = "fanduel"

	wagers := []models.Wager{
		wagerAt("nba-1", models.OutcomeWon, 50, 2.0, 1),
		wagerAt("nba-2", models.OutcomeLost, 60, 1.9, 2),
		nfl,
	}

	snap, err := ledger.NewSnapshot(wagers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bySport, err := snap.Segments(models.SegmentBySport)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bySport["basketball_nba"]) != 2 || len(bySport["americanfootball_nfl"]) != 1 {
		t.Errorf("sport buckets = %d/%d, want 2/1",
			len(bySport["basketball_nba"]), len(bySport["americanfootball_nfl"]))
	}

	byBook, err := snap.Segments(models.SegmentByBook)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byBook["draftkings"]) != 2 || len(byBook["fanduel"]) != 1 {
		t.Errorf("book buckets = %d/%d, want 2/1", len(byBook["draftkings"]), len(byBook["fanduel"]))
	}

	if _, err := snap.Segments("timezone"); err == nil {
		t.Error("expected error for unknown segment key")
	}
}
