package games

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSide is returned for anything but heads or tails
var ErrInvalidSide = errors.New("invalid coin side")

// Side is a face of the coin
type Side string

const (
	Heads Side = "heads"
	Tails Side = "tails"
)

// Solo coin flips pay 1.8x the stake, leaving the house a 20% edge.
const (
	soloCoinflipPayoutNumerator   = 18
	soloCoinflipPayoutDenominator = 10
)

// ParseSide accepts the English names and the French "pile"/"face" aliases
// the bot has always offered.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "heads", "head", "face":
		return Heads, nil
	case "tails", "tail", "pile":
		return Tails, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSide, s)
}

// Valid reports whether s is a face of the coin
func (s Side) Valid() bool {
	return s == Heads || s == Tails
}

// SideFromRoll maps a uniform draw in {0, 1} to a coin face.
func SideFromRoll(roll int) Side {
	if roll%2 == 0 {
		return Heads
	}
	return Tails
}

// SoloCoinflipPayout returns floor(stake * 1.8)
func SoloCoinflipPayout(stake int64) int64 {
	return stake * soloCoinflipPayoutNumerator / soloCoinflipPayoutDenominator
}

// ResolveCoinflipSolo resolves a flip of one player against the house.
func ResolveCoinflipSolo(stake int64, choice, drawn Side) Outcome {
	if choice == drawn {
		return playerWins(SeatFirst, SoloCoinflipPayout(stake))
	}
	return houseWins()
}

// ResolveCoinflipPvP resolves a flip between two players who each staked
// the same amount. Exactly one correct call takes both stakes; two correct
// or two wrong calls push.
func ResolveCoinflipPvP(stake int64, first, second, drawn Side) Outcome {
	firstHit := first == drawn
	secondHit := second == drawn

	switch {
	case firstHit && !secondHit:
		return playerWins(SeatFirst, 2*stake)
	case secondHit && !firstHit:
		return playerWins(SeatSecond, 2*stake)
	default:
		return push()
	}
}
