// Package kelly sizes stakes with the fractional Kelly criterion. Full
// Kelly maximizes long-run geometric growth but swings hard, so the
// recommendation is scaled by a conservatism factor and capped at a
// fraction of bankroll before it reaches the caller.
package kelly

import (
	"fmt"
	"math"

	"github.com/Rosewood1985/ai-sports-edge-sub010/pkg/models"
)

// Config holds the staking parameters. Both knobs are overridable per
// call; the defaults are half-Kelly under a 5% bankroll cap.
type Config struct {
	// Conservatism multiplies the full Kelly fraction (0.5 = half-Kelly).
	Conservatism float64 `yaml:"conservatism"`

	// BankrollCap bounds the final recommended fraction regardless of
	// edge size.
	BankrollCap float64 `yaml:"bankroll_cap"`
}

// DefaultConfig returns half-Kelly capped at 5% of bankroll.
func DefaultConfig() Config {
	return Config{Conservatism: 0.5, BankrollCap: 0.05}
}

// RecommendStake returns the recommended bankroll fraction for a wager at
// the given win probability and decimal odds.
//
// Full Kelly: f* = (b*p - (1-p)) / b, with net odds b = oddsDecimal - 1
// Recommended: min(f* * Conservatism, BankrollCap)
//
// Example:
// p = 0.55, oddsDecimal = 2.0 → f* = 0.10, half-Kelly 0.05, capped → 0.05
//
// Fails closed: any f* <= 0 (no edge) returns 0, never a negative stake.
func RecommendStake(winProbability, oddsDecimal float64, cfg Config) (float64, error) {
	if winProbability < 0 || winProbability > 1 {
		return 0, fmt.Errorf("win probability must be within [0,1], got %.4f: %w", winProbability, models.ErrInvalidLeg)
	}
	if oddsDecimal < 1.0 {
		return 0, fmt.Errorf("decimal odds must be >= 1.0, got %.4f: %w", oddsDecimal, models.ErrInvalidLeg)
	}
	if cfg.Conservatism <= 0 || cfg.Conservatism > 1 {
		return 0, fmt.Errorf("conservatism must be within (0,1], got %.4f", cfg.Conservatism)
	}
	if cfg.BankrollCap <= 0 || cfg.BankrollCap > 1 {
		return 0, fmt.Errorf("bankroll cap must be within (0,1], got %.4f", cfg.BankrollCap)
	}

	b := oddsDecimal - 1.0
	if b <= 0 {
		// Odds of exactly 1.0 return only the stake: nothing to win.
		return 0, nil
	}

	q := 1.0 - winProbability
	fullKelly := (b*winProbability - q) / b
	if fullKelly <= 0 {
		return 0, nil
	}

	return math.Min(fullKelly*cfg.Conservatism, cfg.BankrollCap), nil
}

// ForCard sizes the whole card as one compound wager with
// p = CorrelationAdjustedProbability and d = CombinedOddsDecimal, and
// returns a new card with KellyFraction set. Evaluate the card first so
// the adjusted probability is populated; an unevaluated card sizes to 0.
func ForCard(card models.ParlayCard, cfg Config) (models.ParlayCard, error) {
	fraction, err := RecommendStake(card.CorrelationAdjustedProbability, card.CombinedOddsDecimal, cfg)
	if err != nil {
		return models.ParlayCard{}, err
	}

	out := card
	out.KellyFraction = fraction
	return out, nil
}
