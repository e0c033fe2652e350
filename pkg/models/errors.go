package models

import "errors"

var (
	// ErrInsufficientData marks ratios that need a denominator the input
	// cannot supply (zero settled wagers, empty return series).
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidWager marks a malformed ledger entry: non-positive stake,
	// decimal odds below 1.0, or a settlement state inconsistent with payout.
	ErrInvalidWager = errors.New("invalid wager")

	// ErrInvalidLeg marks a malformed parlay leg: bad odds, probability
	// outside [0,1], or an unknown market/side.
	ErrInvalidLeg = errors.New("invalid leg")

	// ErrDuplicateLeg marks two legs on the same game, market, and side
	// within one parlay card.
	ErrDuplicateLeg = errors.New("duplicate leg")
)
