package models

// Sport identifies a league using the vendor sport key convention.
type Sport string

const (
	SportNBA Sport = "basketball_nba"
	SportNFL Sport = "americanfootball_nfl"
	SportMLB Sport = "baseball_mlb"
	SportNHL Sport = "icehockey_nhl"
)

// Valid reports whether the sport key is one of the supported leagues.
func (s Sport) Valid() bool {
	switch s {
	case SportNBA, SportNFL, SportMLB, SportNHL:
		return true
	}
	return false
}

// Market identifies a betting market using the vendor market key convention.
type Market string

const (
	MarketH2H        Market = "h2h"          // Moneyline
	MarketSpread     Market = "spreads"      // Point spread / handicap
	MarketTotal      Market = "totals"       // Game total points
	MarketTeamTotal  Market = "team_totals"  // Single-team total points
	MarketPlayerProp Market = "player_props" // Player performance props
)

// Valid reports whether the market key is a supported market.
func (m Market) Valid() bool {
	switch m {
	case MarketH2H, MarketSpread, MarketTotal, MarketTeamTotal, MarketPlayerProp:
		return true
	}
	return false
}

// MarketFamily groups markets whose outcomes are driven by the same
// underlying quantity (e.g. both totals markets move with scoring pace).
type MarketFamily string

const (
	FamilyMoneyline MarketFamily = "moneyline"
	FamilyHandicap  MarketFamily = "handicap"
	FamilyTotals    MarketFamily = "totals"
	FamilyProps     MarketFamily = "props"
)

// Family returns the market family a market belongs to.
func (m Market) Family() MarketFamily {
	switch m {
	case MarketH2H:
		return FamilyMoneyline
	case MarketSpread:
		return FamilyHandicap
	case MarketTotal, MarketTeamTotal:
		return FamilyTotals
	case MarketPlayerProp:
		return FamilyProps
	}
	return ""
}

// Side identifies which outcome of a market a leg is taken on.
type Side string

const (
	SideHome  Side = "home"
	SideAway  Side = "away"
	SideOver  Side = "over"
	SideUnder Side = "under"
)

// Valid reports whether the side is a supported outcome side.
func (s Side) Valid() bool {
	switch s {
	case SideHome, SideAway, SideOver, SideUnder:
		return true
	}
	return false
}

// OpposedTo reports whether two sides are mutually exclusive outcomes
// of the same market (home vs away, over vs under).
func (s Side) OpposedTo(other Side) bool {
	switch {
	case s == SideHome && other == SideAway,
		s == SideAway && other == SideHome,
		s == SideOver && other == SideUnder,
		s == SideUnder && other == SideOver:
		return true
	}
	return false
}

// Outcome is the settlement state of a wager.
type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeWon     Outcome = "won"
	OutcomeLost    Outcome = "lost"
	OutcomePushed  Outcome = "pushed"
	OutcomeVoided  Outcome = "voided"
)

// Valid reports whether the outcome is a known settlement state.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomePending, OutcomeWon, OutcomeLost, OutcomePushed, OutcomeVoided:
		return true
	}
	return false
}

// Settled reports whether the wager has reached a terminal state.
func (o Outcome) Settled() bool {
	return o.Valid() && o != OutcomePending
}

// Tier is the categorical recommendation derived from a composite risk score.
type Tier string

const (
	TierStrongPlay Tier = "strong_play"
	TierGoodPlay   Tier = "good_play"
	TierFairPlay   Tier = "fair_play"
	TierAvoid      Tier = "avoid"
)

// Strategy selects the objective the parlay optimizer maximizes.
type Strategy string

const (
	StrategyValue    Strategy = "value"    // Maximize expected value
	StrategySafety   Strategy = "safety"   // Minimize risk score, EV must stay non-negative
	StrategyBalanced Strategy = "balanced" // Maximize EV minus a risk penalty
)

// Valid reports whether the strategy is a supported optimizer objective.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyValue, StrategySafety, StrategyBalanced:
		return true
	}
	return false
}

// SegmentKey selects the wager attribute used to segment performance analytics.
type SegmentKey string

const (
	SegmentBySport  SegmentKey = "sport"
	SegmentByMarket SegmentKey = "market"
	SegmentByBook   SegmentKey = "book"
)

// Valid reports whether the segment key is supported.
func (k SegmentKey) Valid() bool {
	switch k {
	case SegmentBySport, SegmentByMarket, SegmentByBook:
		return true
	}
	return false
}

// OptimizationStatus is the terminal state of an optimizer pass.
type OptimizationStatus string

const (
	OptimizationImproved      OptimizationStatus = "improved"
	OptimizationNoImprovement OptimizationStatus = "no_improvement"
)
