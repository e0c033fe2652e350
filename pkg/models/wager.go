package models

import (
	"fmt"
	"math"
	"time"
)

// payoutTolerance bounds the float drift allowed between a stored payout
// and the payout derived from stake and odds.
const payoutTolerance = 1e-9

// Wager is one entry in a user's bet ledger. Settled wagers carry a
// settlement timestamp and a payout; pending wagers carry neither.
type Wager struct {
	ID          string     `json:"id"`
	Book        string     `json:"book"`
	Sport       Sport      `json:"sport"`
	Market      Market     `json:"market"`
	Selection   string     `json:"selection,omitempty"`
	Stake       float64    `json:"stake"`
	OddsDecimal float64    `json:"odds_decimal"`
	Outcome     Outcome    `json:"outcome"`
	PlacedAt    time.Time  `json:"placed_at"`
	SettledAt   *time.Time `json:"settled_at,omitempty"`
	Payout      *float64   `json:"payout,omitempty"`
}

// Settled reports whether the wager has reached a terminal outcome.
func (w Wager) Settled() bool {
	return w.Outcome.Settled()
}

// SettledPayout returns the payout dictated by the outcome:
// stake * oddsDecimal when won, the stake back when pushed, zero when
// lost or voided. Payout is undefined while the wager is pending.
func (w Wager) SettledPayout() (float64, error) {
	switch w.Outcome {
	case OutcomeWon:
		return w.Stake * w.OddsDecimal, nil
	case OutcomePushed:
		return w.Stake, nil
	case OutcomeLost, OutcomeVoided:
		return 0, nil
	}
	return 0, fmt.Errorf("payout undefined for outcome %q: %w", w.Outcome, ErrInvalidWager)
}

// Profit returns payout minus stake for a settled wager with payout set.
func (w Wager) Profit() float64 {
	if w.Payout == nil {
		return 0
	}
	return *w.Payout - w.Stake
}

// SegmentValue returns the wager attribute named by the segment key.
func (w Wager) SegmentValue(key SegmentKey) string {
	switch key {
	case SegmentBySport:
		return string(w.Sport)
	case SegmentByMarket:
		return string(w.Market)
	case SegmentByBook:
		return w.Book
	}
	return ""
}

// Validate checks structural and settlement consistency. A stored payout
// that contradicts the derived payout is rejected rather than corrected,
// since silently fixing it would mask an upstream data bug.
func (w Wager) Validate() error {
	if !w.Outcome.Valid() {
		return fmt.Errorf("wager %s: unknown outcome %q: %w", w.ID, w.Outcome, ErrInvalidWager)
	}
	if w.Stake <= 0 {
		return fmt.Errorf("wager %s: stake must be positive, got %.4f: %w", w.ID, w.Stake, ErrInvalidWager)
	}
	if w.OddsDecimal < 1.0 {
		return fmt.Errorf("wager %s: decimal odds must be >= 1.0, got %.4f: %w", w.ID, w.OddsDecimal, ErrInvalidWager)
	}

	if w.Outcome == OutcomePending {
		if w.SettledAt != nil {
			return fmt.Errorf("wager %s: pending wager has a settlement time: %w", w.ID, ErrInvalidWager)
		}
		if w.Payout != nil {
			return fmt.Errorf("wager %s: pending wager has a payout: %w", w.ID, ErrInvalidWager)
		}
		return nil
	}

	if w.SettledAt == nil {
		return fmt.Errorf("wager %s: settled wager missing settlement time: %w", w.ID, ErrInvalidWager)
	}
	if w.Payout != nil {
		want, err := w.SettledPayout()
		if err != nil {
			return err
		}
		if math.Abs(*w.Payout-want) > payoutTolerance {
			return fmt.Errorf("wager %s: payout %.4f inconsistent with outcome %q (expected %.4f): %w",
				w.ID, *w.Payout, w.Outcome, want, ErrInvalidWager)
		}
	}
	return nil
}
