package events

import "guildgreeter/domain/entities"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeAccountCreated EventType = "account_created"
	EventTypeWagerResolved  EventType = "wager_resolved"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a change of one balance of an account
type BalanceChangeEvent struct {
	UserID          int64                    `json:"user_id"`
	GuildID         int64                    `json:"guild_id"`
	BalanceKind     entities.BalanceKind     `json:"balance_kind"`
	OldBalance      int64                    `json:"old_balance"`
	NewBalance      int64                    `json:"new_balance"`
	ChangeAmount    int64                    `json:"change_amount"`
	TransactionType entities.TransactionType `json:"transaction_type"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountCreatedEvent is emitted the first time a user touches the economy of a guild
type AccountCreatedEvent struct {
	UserID         int64 `json:"user_id"`
	GuildID        int64 `json:"guild_id"`
	InitialBalance int64 `json:"initial_balance"`
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// WagerResolvedEvent represents a wager reaching its terminal state
type WagerResolvedEvent struct {
	WagerID  int64               `json:"wager_id"`
	GuildID  int64               `json:"guild_id"`
	PlayerID int64               `json:"player_id"`
	Game     entities.GameType   `json:"game"`
	Amount   int64               `json:"amount"`
	State    entities.WagerState `json:"state"`
	WinnerID int64               `json:"winner_id,omitempty"`
	Payout   int64               `json:"payout,omitempty"`
}

func (e WagerResolvedEvent) Type() EventType {
	return EventTypeWagerResolved
}
