package entities

import (
	"fmt"
	"time"
)

// WagerState is the escrow state of a stake
type WagerState string

const (
	WagerStateHeld     WagerState = "held"
	WagerStatePaid     WagerState = "paid"
	WagerStateRefunded WagerState = "refunded"
)

// GameType names a casino game
type GameType string

const (
	GameCoinflip  GameType = "coinflip"
	GameDice      GameType = "dice"
	GameBlackjack GameType = "blackjack"
)

// HouseID is the winner id recorded when the house keeps a stake
const HouseID int64 = 0

// Wager is a stake debited from a player's wallet and held until exactly one
// of paid or refunded.
type Wager struct {
	ID              int64      `db:"id"`
	DiscordID       int64      `db:"discord_id"`
	GuildID         int64      `db:"guild_id"`
	Game            GameType   `db:"game"`
	Amount          int64      `db:"amount"`
	State           WagerState `db:"state"`
	WinnerDiscordID *int64     `db:"winner_discord_id"`
	Payout          *int64     `db:"payout"`
	CreatedAt       time.Time  `db:"created_at"`
	ResolvedAt      *time.Time `db:"resolved_at"`
}

// NewWager builds a held wager after validating the stake
func NewWager(discordID, guildID int64, game GameType, amount int64) (*Wager, error) {
	if amount <= 0 {
		return nil, ErrInvalidStake
	}
	return &Wager{
		DiscordID: discordID,
		GuildID:   guildID,
		Game:      game,
		Amount:    amount,
		State:     WagerStateHeld,
	}, nil
}

// IsHeld reports whether the wager still awaits resolution
func (w *Wager) IsHeld() bool {
	return w.State == WagerStateHeld
}

// MarkPaid records a payout to winner. Payout may be zero when the house wins.
func (w *Wager) MarkPaid(winner, payout int64, at time.Time) error {
	if !w.IsHeld() {
		return fmt.Errorf("wager %d is %s: %w", w.ID, w.State, ErrAlreadyResolved)
	}
	if payout < 0 {
		return fmt.Errorf("payout cannot be negative: %d", payout)
	}
	w.State = WagerStatePaid
	w.WinnerDiscordID = &winner
	w.Payout = &payout
	w.ResolvedAt = &at
	return nil
}

// MarkRefunded records the return of the stake to its owner
func (w *Wager) MarkRefunded(at time.Time) error {
	if !w.IsHeld() {
		return fmt.Errorf("wager %d is %s: %w", w.ID, w.State, ErrAlreadyResolved)
	}
	w.State = WagerStateRefunded
	w.ResolvedAt = &at
	return nil
}
