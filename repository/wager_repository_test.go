package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildgreeter/domain/entities"
	"guildgreeter/repository/testutil"
)

func createWager(t *testing.T, repo *WagerRepository, discordID int64, game entities.GameType, amount int64) *entities.Wager {
	t.Helper()
	wager, err := entities.NewWager(discordID, testGuildID, game, amount)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), wager))
	return wager
}

func TestWagerRepository_SingleResolution(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	testutil.SeedAccount(t, testDB.DB, testUser1ID, testGuildID, 100, 0)
	repo := NewWagerRepository(testDB.DB, testGuildID)
	ctx := context.Background()

	wager := createWager(t, repo, testUser1ID, entities.GameDice, 25)
	assert.NotZero(t, wager.ID)
	assert.False(t, wager.CreatedAt.IsZero())

	held, err := repo.GetHeldByUser(ctx, testUser1ID)
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, wager.ID, held[0].ID)

	ok, err := repo.MarkPaid(ctx, wager.ID, testUser1ID, 50)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkPaid(ctx, wager.ID, testUser1ID, 50)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repo.MarkRefunded(ctx, wager.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.GetByID(ctx, wager.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.WagerStatePaid, stored.State)
	require.NotNil(t, stored.Payout)
	assert.Equal(t, int64(50), *stored.Payout)
	assert.NotNil(t, stored.ResolvedAt)

	held, err = repo.GetHeldByUser(ctx, testUser1ID)
	require.NoError(t, err)
	assert.Empty(t, held)

	t.Run("other guild cannot see or resolve it", func(t *testing.T) {
		other := NewWagerRepository(testDB.DB, otherGuild)
		got, err := other.GetByID(ctx, wager.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestWagerRepository_GetStats(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	testutil.SeedAccount(t, testDB.DB, testUser1ID, testGuildID, 1000, 0)
	testutil.SeedAccount(t, testDB.DB, testUser2ID, testGuildID, 1000, 0)
	repo := NewWagerRepository(testDB.DB, testGuildID)
	ctx := context.Background()

	empty, err := repo.GetStats(ctx, testUser1ID)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.GamesPlayed)
	assert.Equal(t, entities.GameType(""), empty.FavoriteGame)

	won := createWager(t, repo, testUser1ID, entities.GameDice, 50)
	_, err = repo.MarkPaid(ctx, won.ID, testUser1ID, 100)
	require.NoError(t, err)

	lost := createWager(t, repo, testUser1ID, entities.GameDice, 30)
	_, err = repo.MarkPaid(ctx, lost.ID, testUser2ID, 30)
	require.NoError(t, err)

	house := createWager(t, repo, testUser1ID, entities.GameCoinflip, 20)
	_, err = repo.MarkPaid(ctx, house.ID, entities.HouseID, 0)
	require.NoError(t, err)

	pushed := createWager(t, repo, testUser1ID, entities.GameBlackjack, 40)
	_, err = repo.MarkRefunded(ctx, pushed.ID)
	require.NoError(t, err)

	createWager(t, repo, testUser1ID, entities.GameBlackjack, 10)

	stats, err := repo.GetStats(ctx, testUser1ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.GamesPlayed)
	assert.Equal(t, 1, stats.GamesWon)
	assert.Equal(t, 2, stats.GamesLost)
	assert.Equal(t, 1, stats.GamesPushed)
	assert.Equal(t, int64(100), stats.TotalWagered)
	assert.Equal(t, int64(100), stats.TotalPayout)
	assert.Equal(t, int64(100), stats.BiggestWin)
	assert.Equal(t, entities.GameDice, stats.FavoriteGame)
}

func TestWagerRepository_GetStats_PvP(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	testutil.SeedAccount(t, testDB.DB, testUser1ID, testGuildID, 1000, 0)
	testutil.SeedAccount(t, testDB.DB, testUser2ID, testGuildID, 1000, 0)
	repo := NewWagerRepository(testDB.DB, testGuildID)
	ctx := context.Background()

	// a settled duel: the pot sits on the winner's row, the loser's row pays nothing
	winnerRow := createWager(t, repo, testUser1ID, entities.GameCoinflip, 40)
	loserRow := createWager(t, repo, testUser2ID, entities.GameCoinflip, 40)
	_, err := repo.MarkPaid(ctx, winnerRow.ID, testUser1ID, 80)
	require.NoError(t, err)
	_, err = repo.MarkPaid(ctx, loserRow.ID, testUser1ID, 0)
	require.NoError(t, err)

	winner, err := repo.GetStats(ctx, testUser1ID)
	require.NoError(t, err)
	assert.Equal(t, 1, winner.GamesWon)
	assert.Equal(t, int64(40), winner.NetResult())
	assert.Equal(t, int64(80), winner.BiggestWin)

	loser, err := repo.GetStats(ctx, testUser2ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loser.GamesLost)
	assert.Equal(t, int64(-40), loser.NetResult())
}

func TestInventoryRepository_AddStacks(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	testutil.SeedAccount(t, testDB.DB, testUser1ID, testGuildID, 0, 0)
	repo := NewInventoryRepository(testDB.DB, testGuildID)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, testUser1ID, "role_rouge", 1))
	require.NoError(t, repo.Add(ctx, testUser1ID, "boost_xp", 1))
	require.NoError(t, repo.Add(ctx, testUser1ID, "role_rouge", 2))
	assert.Error(t, repo.Add(ctx, testUser1ID, "role_bleu", 0))

	items, err := repo.GetByUser(ctx, testUser1ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "boost_xp", items[0].ItemID)
	assert.Equal(t, "role_rouge", items[1].ItemID)
	assert.Equal(t, 3, items[1].Quantity)
}

func TestBalanceHistoryRepository_RecordAndRead(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	testutil.SeedAccount(t, testDB.DB, testUser1ID, testGuildID, 100, 0)
	repo := NewBalanceHistoryRepository(testDB.DB, testGuildID)
	ctx := context.Background()

	wagerID := int64(7)
	relatedType := entities.RelatedTypeWager
	entries := []*entities.BalanceHistory{
		{
			DiscordID:       testUser1ID,
			BalanceKind:     entities.BalanceWallet,
			BalanceBefore:   100,
			BalanceAfter:    75,
			ChangeAmount:    -25,
			TransactionType: entities.TransactionTypeWagerStake,
			RelatedID:       &wagerID,
			RelatedType:     &relatedType,
		},
		{
			DiscordID:           testUser1ID,
			BalanceKind:         entities.BalanceWallet,
			BalanceBefore:       75,
			BalanceAfter:        375,
			ChangeAmount:        300,
			TransactionType:     entities.TransactionTypeDaily,
			TransactionMetadata: map[string]any{"base": 250, "bonus": 50},
		},
	}
	for _, entry := range entries {
		require.NoError(t, repo.Record(ctx, entry))
		assert.NotZero(t, entry.ID)
		assert.Equal(t, testGuildID, entry.GuildID)
	}

	history, err := repo.GetByUser(ctx, testUser1ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, entities.TransactionTypeDaily, history[0].TransactionType)
	assert.Equal(t, float64(50), history[0].TransactionMetadata["bonus"])
	assert.Nil(t, history[0].RelatedID)

	assert.Equal(t, entities.TransactionTypeWagerStake, history[1].TransactionType)
	require.NotNil(t, history[1].RelatedType)
	assert.Equal(t, entities.RelatedTypeWager, *history[1].RelatedType)
	assert.Equal(t, wagerID, *history[1].RelatedID)
	assert.Nil(t, history[1].TransactionMetadata)
}
