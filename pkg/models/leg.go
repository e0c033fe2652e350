package models

import "fmt"

// Leg is one selection inside a parlay: a market side on a game at given
// odds, with a win probability supplied by an external model.
type Leg struct {
	GameID         string   `json:"game_id"`
	Sport          Sport    `json:"sport"`
	Market         Market   `json:"market"`
	Side           Side     `json:"side"`
	Selection      string   `json:"selection,omitempty"`
	OddsDecimal    float64  `json:"odds_decimal"`
	WinProbability float64  `json:"win_probability"`
	VarianceHint   float64  `json:"variance_hint,omitempty"`
	SharedEntities []string `json:"shared_entities,omitempty"`
}

// Key is the leg identity used for duplicate detection within a card:
// two legs on the same game, market, and side are the same selection.
func (l Leg) Key() string {
	return fmt.Sprintf("%s|%s|%s", l.GameID, l.Market, l.Side)
}

// Variance returns the supplied variance hint, or a default derived from
// the odds when none was supplied: 4q(1-q) with q = 1/oddsDecimal, the
// Bernoulli variance of the implied probability normalized to [0,1].
func (l Leg) Variance() float64 {
	if l.VarianceHint > 0 {
		return l.VarianceHint
	}
	q := 1.0 / l.OddsDecimal
	return 4.0 * q * (1.0 - q)
}

// SharesEntity reports whether the two legs reference any common
// team, player, or game identifier.
func (l Leg) SharesEntity(other Leg) bool {
	for _, a := range l.SharedEntities {
		for _, b := range other.SharedEntities {
			if a == b {
				return true
			}
		}
	}
	return false
}

// Label returns a human-readable name for the leg, preferring the
// selection text when present.
func (l Leg) Label() string {
	if l.Selection != "" {
		return l.Selection
	}
	return fmt.Sprintf("%s %s %s", l.GameID, l.Market, l.Side)
}

// Validate checks the leg's odds, probabilities, and enum fields.
func (l Leg) Validate() error {
	if l.GameID == "" {
		return fmt.Errorf("leg missing game id: %w", ErrInvalidLeg)
	}
	if !l.Market.Valid() {
		return fmt.Errorf("leg %s: unknown market %q: %w", l.GameID, l.Market, ErrInvalidLeg)
	}
	if !l.Side.Valid() {
		return fmt.Errorf("leg %s: unknown side %q: %w", l.GameID, l.Side, ErrInvalidLeg)
	}
	if l.OddsDecimal < 1.0 {
		return fmt.Errorf("leg %s: decimal odds must be >= 1.0, got %.4f: %w", l.GameID, l.OddsDecimal, ErrInvalidLeg)
	}
	if l.WinProbability < 0 || l.WinProbability > 1 {
		return fmt.Errorf("leg %s: win probability must be within [0,1], got %.4f: %w", l.GameID, l.WinProbability, ErrInvalidLeg)
	}
	if l.VarianceHint < 0 || l.VarianceHint > 1 {
		return fmt.Errorf("leg %s: variance hint must be within [0,1], got %.4f: %w", l.GameID, l.VarianceHint, ErrInvalidLeg)
	}
	return nil
}
