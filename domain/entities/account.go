package entities

import (
	"fmt"
	"time"
)

// BalanceKind selects one of the two balances of an account
type BalanceKind string

const (
	BalanceWallet BalanceKind = "wallet"
	BalanceBank   BalanceKind = "bank"
)

// Valid reports whether k names a real balance
func (k BalanceKind) Valid() bool {
	return k == BalanceWallet || k == BalanceBank
}

// Account is a user's wallet and bank within a single guild
type Account struct {
	DiscordID      int64      `db:"discord_id"`
	GuildID        int64      `db:"guild_id"`
	Wallet         int64      `db:"wallet"`
	Bank           int64      `db:"bank"`
	DailyClaimedAt *time.Time `db:"daily_claimed_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// NewAccount builds a fresh account holding the starting grant in its wallet
func NewAccount(discordID, guildID, startingWallet int64) (*Account, error) {
	if startingWallet < 0 {
		return nil, fmt.Errorf("starting wallet cannot be negative: %d", startingWallet)
	}
	return &Account{
		DiscordID: discordID,
		GuildID:   guildID,
		Wallet:    startingWallet,
	}, nil
}

// Balance returns the balance of the given kind
func (a *Account) Balance(kind BalanceKind) int64 {
	if kind == BalanceBank {
		return a.Bank
	}
	return a.Wallet
}

// NetWorth is wallet plus bank, used for leaderboards
func (a *Account) NetWorth() int64 {
	return a.Wallet + a.Bank
}

// Credit adds a positive amount to the selected balance
func (a *Account) Credit(kind BalanceKind, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if !kind.Valid() {
		return fmt.Errorf("unknown balance kind %q", kind)
	}
	if kind == BalanceBank {
		a.Bank += amount
	} else {
		a.Wallet += amount
	}
	return nil
}

// Debit removes a positive amount from the selected balance. The account is
// left untouched when the balance does not cover it.
func (a *Account) Debit(kind BalanceKind, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if !kind.Valid() {
		return fmt.Errorf("unknown balance kind %q", kind)
	}
	available := a.Balance(kind)
	if available < amount {
		return &InsufficientFundsError{Source: kind, Available: available, Required: amount}
	}
	if kind == BalanceBank {
		a.Bank -= amount
	} else {
		a.Wallet -= amount
	}
	return nil
}

// DailyRemaining returns how long until the daily reward can be claimed
// again, or zero if it is available now.
func (a *Account) DailyRemaining(now time.Time, cooldown time.Duration) time.Duration {
	if a.DailyClaimedAt == nil {
		return 0
	}
	remaining := a.DailyClaimedAt.Add(cooldown).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Validate checks the non-negative balance invariant
func (a *Account) Validate() error {
	if a.Wallet < 0 || a.Bank < 0 {
		return fmt.Errorf("account %d/%d has a negative balance (wallet %d, bank %d)", a.DiscordID, a.GuildID, a.Wallet, a.Bank)
	}
	return nil
}
