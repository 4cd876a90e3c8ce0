package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"guildgreeter/database"
)

// SeedAccount inserts an account row with the given balances
func SeedAccount(t *testing.T, db *database.DB, discordID, guildID, wallet, bank int64) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		`INSERT INTO accounts (discord_id, guild_id, wallet, bank) VALUES ($1, $2, $3, $4)`,
		discordID, guildID, wallet, bank)
	require.NoError(t, err)
}

// Wallet reads the committed wallet of an account
func Wallet(t *testing.T, db *database.DB, discordID, guildID int64) int64 {
	t.Helper()
	var wallet int64
	err := db.QueryRow(context.Background(),
		`SELECT wallet FROM accounts WHERE discord_id = $1 AND guild_id = $2`,
		discordID, guildID).Scan(&wallet)
	require.NoError(t, err)
	return wallet
}

// CountHistory counts the balance history rows of a transaction type
func CountHistory(t *testing.T, db *database.DB, guildID int64, transactionType string) int {
	t.Helper()
	var count int
	err := db.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM balance_history WHERE guild_id = $1 AND transaction_type = $2`,
		guildID, transactionType).Scan(&count)
	require.NoError(t, err)
	return count
}
