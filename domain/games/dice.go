package games

import "fmt"

// DieFaces is the number of faces of a die
const DieFaces = 6

// ValidateDie checks that a roll is a face of a six-sided die
func ValidateDie(roll int) error {
	if roll < 1 || roll > DieFaces {
		return fmt.Errorf("die roll %d out of range [1,%d]", roll, DieFaces)
	}
	return nil
}

// DieFromRoll maps a uniform draw in [0, DieFaces) to a die face.
func DieFromRoll(roll int) int {
	return roll%DieFaces + 1
}

// ResolveDiceDuel resolves a duel between two players who each staked the
// same amount. The higher roll takes both stakes; equal rolls push.
func ResolveDiceDuel(stake int64, first, second int) (Outcome, error) {
	if err := ValidateDie(first); err != nil {
		return Outcome{}, err
	}
	if err := ValidateDie(second); err != nil {
		return Outcome{}, err
	}

	switch {
	case first > second:
		return playerWins(SeatFirst, 2*stake), nil
	case second > first:
		return playerWins(SeatSecond, 2*stake), nil
	default:
		return push(), nil
	}
}

// ResolveDiceSolo compares a player roll against a house roll with the duel
// rules: the player doubles the stake on a higher roll and pushes on a tie.
func ResolveDiceSolo(stake int64, player, house int) (Outcome, error) {
	if err := ValidateDie(player); err != nil {
		return Outcome{}, err
	}
	if err := ValidateDie(house); err != nil {
		return Outcome{}, err
	}

	switch {
	case player > house:
		return playerWins(SeatFirst, 2*stake), nil
	case house > player:
		return houseWins(), nil
	default:
		return push(), nil
	}
}
