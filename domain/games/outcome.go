// Package games holds the pure resolution rules of the casino games.
//
// Nothing in this package touches balances, storage or randomness directly:
// resolvers receive already drawn values and return an Outcome that the
// escrow layer turns into payouts.
package games

// Seat identifies a side of a game. Players are numbered from zero in the
// order they joined; the house has its own seat.
type Seat int

const (
	SeatHouse  Seat = -1
	SeatFirst  Seat = 0
	SeatSecond Seat = 1
)

// Outcome is the result of resolving a game for a single stake size.
type Outcome struct {
	// Winner is the seat that takes the payout. Ignored when Push is true.
	Winner Seat
	// Push means nobody won and every stake goes back to its owner.
	Push bool
	// Payout is the total amount credited to the winner. Zero when the house wins.
	Payout int64
}

// HouseWins reports whether the stakes stay with the house.
func (o Outcome) HouseWins() bool {
	return !o.Push && o.Winner == SeatHouse
}

func push() Outcome {
	return Outcome{Push: true}
}

func houseWins() Outcome {
	return Outcome{Winner: SeatHouse}
}

func playerWins(seat Seat, payout int64) Outcome {
	return Outcome{Winner: seat, Payout: payout}
}
