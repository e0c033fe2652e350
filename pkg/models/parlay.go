package models

import "fmt"

// ParlayCard is a compound wager over an ordered set of unique legs.
// Cards are immutable values: AddLeg, RemoveLeg, and SwapLeg return new
// cards with the combined odds and implied probability recomputed and
// the evaluation fields zeroed, since those are stale once the leg set
// changes. CorrelationAdjustedProbability, ExpectedValue, RiskScore, and
// KellyFraction are populated by the scoring pipeline, not on construction.
type ParlayCard struct {
	Legs                           []Leg   `json:"legs"`
	CombinedOddsDecimal            float64 `json:"combined_odds_decimal"`
	ImpliedProbability             float64 `json:"implied_probability"`
	CorrelationAdjustedProbability float64 `json:"correlation_adjusted_probability,omitempty"`
	ExpectedValue                  float64 `json:"expected_value,omitempty"`
	RiskScore                      float64 `json:"risk_score,omitempty"`
	KellyFraction                  float64 `json:"kelly_fraction,omitempty"`
}

// NewParlayCard validates the legs, rejects duplicates, and derives the
// combined decimal odds (product of leg odds) and the implied probability
// (product of leg win probabilities under independence).
func NewParlayCard(legs []Leg) (ParlayCard, error) {
	if len(legs) == 0 {
		return ParlayCard{}, fmt.Errorf("parlay card needs at least one leg: %w", ErrInvalidLeg)
	}

	seen := make(map[string]struct{}, len(legs))
	for i, leg := range legs {
		if err := leg.Validate(); err != nil {
			return ParlayCard{}, fmt.Errorf("leg %d: %w", i, err)
		}
		key := leg.Key()
		if _, dup := seen[key]; dup {
			return ParlayCard{}, fmt.Errorf("leg %d (%s): %w", i, key, ErrDuplicateLeg)
		}
		seen[key] = struct{}{}
	}

	combined := 1.0
	implied := 1.0
	for _, leg := range legs {
		combined *= leg.OddsDecimal
		implied *= leg.WinProbability
	}

	owned := make([]Leg, len(legs))
	copy(owned, legs)

	return ParlayCard{
		Legs:                owned,
		CombinedOddsDecimal: combined,
		ImpliedProbability:  implied,
	}, nil
}

// AddLeg returns a new card with the leg appended.
func (c ParlayCard) AddLeg(leg Leg) (ParlayCard, error) {
	legs := make([]Leg, 0, len(c.Legs)+1)
	legs = append(legs, c.Legs...)
	legs = append(legs, leg)
	return NewParlayCard(legs)
}

// RemoveLeg returns a new card without the leg at index i.
func (c ParlayCard) RemoveLeg(i int) (ParlayCard, error) {
	if i < 0 || i >= len(c.Legs) {
		return ParlayCard{}, fmt.Errorf("leg index %d out of range [0,%d): %w", i, len(c.Legs), ErrInvalidLeg)
	}
	legs := make([]Leg, 0, len(c.Legs)-1)
	legs = append(legs, c.Legs[:i]...)
	legs = append(legs, c.Legs[i+1:]...)
	return NewParlayCard(legs)
}

// SwapLeg returns a new card with the leg at index i replaced.
func (c ParlayCard) SwapLeg(i int, leg Leg) (ParlayCard, error) {
	if i < 0 || i >= len(c.Legs) {
		return ParlayCard{}, fmt.Errorf("leg index %d out of range [0,%d): %w", i, len(c.Legs), ErrInvalidLeg)
	}
	legs := make([]Leg, len(c.Legs))
	copy(legs, c.Legs)
	legs[i] = leg
	return NewParlayCard(legs)
}

// HasLeg reports whether the card already contains the selection
// identified by the leg's game, market, and side.
func (c ParlayCard) HasLeg(leg Leg) bool {
	key := leg.Key()
	for _, l := range c.Legs {
		if l.Key() == key {
			return true
		}
	}
	return false
}
