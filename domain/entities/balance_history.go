package entities

import (
	"errors"
	"time"
)

// RelatedType represents what type of entity the related_id refers to
type RelatedType string

const (
	RelatedTypeWager RelatedType = "wager"
	RelatedTypeItem  RelatedType = "item"
)

// BalanceHistory records one change of one balance
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	DiscordID           int64           `db:"discord_id"`
	GuildID             int64           `db:"guild_id"`
	BalanceKind         BalanceKind     `db:"balance_kind"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	RelatedID           *int64          `db:"related_id"`
	RelatedType         *RelatedType    `db:"related_type"`
	CreatedAt           time.Time       `db:"created_at"`
}

// ValidateTransaction performs basic validation on the transaction
func (bh *BalanceHistory) ValidateTransaction() error {
	if bh.ChangeAmount == 0 {
		return errors.New("change amount cannot be zero")
	}
	if bh.BalanceAfter != bh.BalanceBefore+bh.ChangeAmount {
		return errors.New("balance calculation is inconsistent")
	}
	if bh.BalanceAfter < 0 {
		return errors.New("balance cannot go negative")
	}
	return nil
}
