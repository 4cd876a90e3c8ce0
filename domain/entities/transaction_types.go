package entities

// TransactionType represents the type of balance change
type TransactionType string

const (
	// Economy transactions
	TransactionTypeInitial     TransactionType = "initial"
	TransactionTypeDaily       TransactionType = "daily"
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeWithdraw    TransactionType = "withdraw"
	TransactionTypeTransferIn  TransactionType = "transfer_in"
	TransactionTypeTransferOut TransactionType = "transfer_out"
	// Restores a debit whose matching credit failed
	TransactionTypeReversal    TransactionType = "reversal"
	TransactionTypeCredit      TransactionType = "credit"
	TransactionTypeDebit       TransactionType = "debit"

	// Casino transactions
	TransactionTypeWagerStake  TransactionType = "wager_stake"
	TransactionTypeWagerPayout TransactionType = "wager_payout"
	TransactionTypeWagerRefund TransactionType = "wager_refund"

	// Shop transactions
	TransactionTypeShopPurchase  TransactionType = "shop_purchase"
	TransactionTypeLootboxReward TransactionType = "lootbox_reward"
)

// IsCasinoType returns true for stakes, payouts and refunds of wagers
func (tt TransactionType) IsCasinoType() bool {
	return tt == TransactionTypeWagerStake ||
		tt == TransactionTypeWagerPayout ||
		tt == TransactionTypeWagerRefund
}

// IsTransferType returns true if the transaction type represents a transfer
func (tt TransactionType) IsTransferType() bool {
	return tt == TransactionTypeTransferIn ||
		tt == TransactionTypeTransferOut
}

// IsInternalMove returns true for wallet/bank moves that do not change net worth
func (tt TransactionType) IsInternalMove() bool {
	return tt == TransactionTypeDeposit || tt == TransactionTypeWithdraw
}

// IsSystemGenerated returns true if the transaction type is system-generated
func (tt TransactionType) IsSystemGenerated() bool {
	return tt == TransactionTypeInitial ||
		tt == TransactionTypeDaily ||
		tt == TransactionTypeLootboxReward
}

// Category groups transaction types for reporting
func (tt TransactionType) Category() string {
	switch {
	case tt.IsCasinoType():
		return "casino"
	case tt.IsTransferType():
		return "transfer"
	case tt.IsInternalMove():
		return "bank"
	case tt.IsSystemGenerated():
		return "reward"
	default:
		return "other"
	}
}

func (tt TransactionType) String() string {
	return string(tt)
}
