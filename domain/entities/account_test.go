package entities

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	account, err := NewAccount(1, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), account.Wallet)
	assert.Zero(t, account.Bank)
	assert.Nil(t, account.DailyClaimedAt)

	_, err = NewAccount(1, 2, -1)
	assert.Error(t, err)
}

func TestAccount_Debit(t *testing.T) {
	t.Run("insufficient wallet leaves balance untouched", func(t *testing.T) {
		account := &Account{Wallet: 50}

		err := account.Debit(BalanceWallet, 100)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInsufficientFunds)

		var insufficient *InsufficientFundsError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, int64(50), insufficient.Shortfall())
		assert.Equal(t, BalanceWallet, insufficient.Source)
		assert.Equal(t, int64(50), account.Wallet)
	})

	t.Run("bank debit", func(t *testing.T) {
		account := &Account{Wallet: 10, Bank: 300}
		require.NoError(t, account.Debit(BalanceBank, 300))
		assert.Zero(t, account.Bank)
		assert.Equal(t, int64(10), account.Wallet)
	})

	t.Run("non positive amounts are rejected", func(t *testing.T) {
		account := &Account{Wallet: 10}
		assert.ErrorIs(t, account.Debit(BalanceWallet, 0), ErrInvalidAmount)
		assert.ErrorIs(t, account.Credit(BalanceWallet, -5), ErrInvalidAmount)
		assert.Equal(t, int64(10), account.Wallet)
	})
}

func TestAccount_Credit(t *testing.T) {
	account := &Account{}
	require.NoError(t, account.Credit(BalanceWallet, 25))
	require.NoError(t, account.Credit(BalanceBank, 75))
	assert.Equal(t, int64(25), account.Wallet)
	assert.Equal(t, int64(75), account.Bank)
	assert.Equal(t, int64(100), account.NetWorth())

	assert.Error(t, account.Credit(BalanceKind("vault"), 1))
}

func TestAccount_DailyRemaining(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	account := &Account{}
	assert.Zero(t, account.DailyRemaining(now, 24*time.Hour))

	claimed := now.Add(-23 * time.Hour)
	account.DailyClaimedAt = &claimed
	assert.Equal(t, time.Hour, account.DailyRemaining(now, 24*time.Hour))

	claimed = now.Add(-24 * time.Hour)
	account.DailyClaimedAt = &claimed
	assert.Zero(t, account.DailyRemaining(now, 24*time.Hour))
}

func TestTransactionType_Category(t *testing.T) {
	tests := []struct {
		tt   TransactionType
		want string
	}{
		{TransactionTypeWagerStake, "casino"},
		{TransactionTypeWagerRefund, "casino"},
		{TransactionTypeTransferOut, "transfer"},
		{TransactionTypeDeposit, "bank"},
		{TransactionTypeDaily, "reward"},
		{TransactionTypeLootboxReward, "reward"},
		{TransactionTypeShopPurchase, "other"},
	}
	for _, tc := range tests {
		t.Run(string(tc.tt), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.tt.Category())
		})
	}
}
