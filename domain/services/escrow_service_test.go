package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"guildgreeter/domain/entities"
	"guildgreeter/domain/events"
	"guildgreeter/domain/games"
	"guildgreeter/domain/testhelpers"
)

func TestEscrowService_OpenWager(t *testing.T) {
	t.Run("debits and holds", func(t *testing.T) {
		env := newTestEnv(nil)
		ctx := context.Background()
		env.seed(TestUser1ID, 100, 0)

		wager, err := env.escrow.OpenWager(ctx, TestUser1ID, entities.GameCoinflip, 40)
		require.NoError(t, err)
		assert.Equal(t, entities.WagerStateHeld, wager.State)
		assert.NotZero(t, wager.ID)
		assert.Equal(t, int64(60), env.wallet(TestUser1ID))
		assert.True(t, env.store.Wager(wager.ID).IsHeld())
	})

	t.Run("invalid stake touches nothing", func(t *testing.T) {
		env := newTestEnv(nil)
		ctx := context.Background()
		env.seed(TestUser1ID, 100, 0)

		for _, amount := range []int64{0, -10} {
			_, err := env.escrow.OpenWager(ctx, TestUser1ID, entities.GameDice, amount)
			assert.ErrorIs(t, err, entities.ErrInvalidStake)
		}
		assert.Equal(t, int64(100), env.wallet(TestUser1ID))
		assert.Empty(t, env.store.HistoryEntries())
	})

	t.Run("insufficient funds", func(t *testing.T) {
		env := newTestEnv(nil)
		ctx := context.Background()
		env.seed(TestUser1ID, 30, 500)

		_, err := env.escrow.OpenWager(ctx, TestUser1ID, entities.GameDice, 31)
		assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
		assert.Equal(t, int64(30), env.wallet(TestUser1ID))
		assert.Equal(t, int64(500), env.account(TestUser1ID).Bank)
	})
}

func TestEscrowService_ResolvesExactlyOnce(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()
	env.seed(TestUser1ID, 100, 0)

	wager, err := env.escrow.OpenWager(ctx, TestUser1ID, entities.GameCoinflip, 50)
	require.NoError(t, err)

	_, err = env.escrow.ResolvePaid(ctx, wager.ID, TestUser1ID, 90)
	require.NoError(t, err)
	assert.Equal(t, int64(140), env.wallet(TestUser1ID))

	_, err = env.escrow.ResolvePaid(ctx, wager.ID, TestUser1ID, 90)
	assert.ErrorIs(t, err, entities.ErrAlreadyResolved)
	_, err = env.escrow.ResolveRefunded(ctx, wager.ID)
	assert.ErrorIs(t, err, entities.ErrAlreadyResolved)

	assert.Equal(t, int64(140), env.wallet(TestUser1ID))
	assert.Equal(t, entities.WagerStatePaid, env.store.Wager(wager.ID).State)
	assert.Len(t, env.publisher.OfType(events.EventTypeWagerResolved), 1)
}

func TestEscrowService_ConcurrentResolution(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()
	env.seed(TestUser1ID, 100, 0)
	env.seed(TestUser2ID, 100, 0)

	wager, err := env.escrow.OpenWager(ctx, TestUser1ID, entities.GameDice, 100)
	require.NoError(t, err)

	const attempts = 8
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, results[i] = env.escrow.ResolvePaid(ctx, wager.ID, TestUser2ID, 100)
			} else {
				_, results[i] = env.escrow.ResolveRefunded(ctx, wager.ID)
			}
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, entities.ErrAlreadyResolved)
	}
	assert.Equal(t, 1, succeeded)

	// the stake is counted exactly once
	assert.Equal(t, int64(200), env.wallet(TestUser1ID)+env.wallet(TestUser2ID))
}

func TestEscrowService_UnknownWager(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	_, err := env.escrow.ResolvePaid(ctx, 404, TestUser1ID, 10)
	assert.ErrorIs(t, err, entities.ErrWagerNotFound)
	_, err = env.escrow.ResolveRefunded(ctx, 404)
	assert.ErrorIs(t, err, entities.ErrWagerNotFound)
}

func TestEscrowService_LostConditionalUpdate(t *testing.T) {
	ctx := context.Background()
	mockWagerRepo := new(testhelpers.MockWagerRepository)
	env := newTestEnv(nil)
	escrow := NewEscrowService(env.ledger, mockWagerRepo, env.publisher)

	held := &entities.Wager{ID: 7, DiscordID: TestUser1ID, GuildID: TestGuildID, Game: entities.GameDice, Amount: 10, State: entities.WagerStateHeld}
	mockWagerRepo.On("GetByID", ctx, int64(7)).Return(held, nil)
	// another resolver won between the read and the update
	mockWagerRepo.On("MarkRefunded", ctx, int64(7)).Return(false, nil)

	_, err := escrow.ResolveRefunded(ctx, 7)

	assert.ErrorIs(t, err, entities.ErrAlreadyResolved)
	assert.Empty(t, env.store.HistoryEntries())
	mockWagerRepo.AssertExpectations(t)
	mockWagerRepo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEscrowService_Settle(t *testing.T) {
	const stake = int64(50)

	tests := []struct {
		name        string
		players     []int64
		outcome     games.Outcome
		wantWallets map[int64]int64
		wantWinner  int64
		wantStates  []entities.WagerState
	}{
		{
			name:        "coinflip pvp first player wins",
			players:     []int64{TestUser1ID, TestUser2ID},
			outcome:     games.ResolveCoinflipPvP(stake, games.Heads, games.Tails, games.Heads),
			wantWallets: map[int64]int64{TestUser1ID: 150, TestUser2ID: 50},
			wantWinner:  TestUser1ID,
			wantStates:  []entities.WagerState{entities.WagerStatePaid, entities.WagerStatePaid},
		},
		{
			name:        "coinflip pvp both right is a push",
			players:     []int64{TestUser1ID, TestUser2ID},
			outcome:     games.ResolveCoinflipPvP(stake, games.Heads, games.Heads, games.Heads),
			wantWallets: map[int64]int64{TestUser1ID: 100, TestUser2ID: 100},
			wantWinner:  entities.HouseID,
			wantStates:  []entities.WagerState{entities.WagerStateRefunded, entities.WagerStateRefunded},
		},
		{
			name:        "dice duel second player wins",
			players:     []int64{TestUser1ID, TestUser2ID},
			outcome:     mustOutcome(games.ResolveDiceDuel(stake, 3, 5)),
			wantWallets: map[int64]int64{TestUser1ID: 50, TestUser2ID: 150},
			wantWinner:  TestUser2ID,
			wantStates:  []entities.WagerState{entities.WagerStatePaid, entities.WagerStatePaid},
		},
		{
			name:        "solo coinflip win pays 1.8x",
			players:     []int64{TestUser1ID},
			outcome:     games.ResolveCoinflipSolo(stake, games.Tails, games.Tails),
			wantWallets: map[int64]int64{TestUser1ID: 140},
			wantWinner:  TestUser1ID,
			wantStates:  []entities.WagerState{entities.WagerStatePaid},
		},
		{
			name:        "solo house wins",
			players:     []int64{TestUser1ID},
			outcome:     games.ResolveCoinflipSolo(stake, games.Tails, games.Heads),
			wantWallets: map[int64]int64{TestUser1ID: 50},
			wantWinner:  entities.HouseID,
			wantStates:  []entities.WagerState{entities.WagerStatePaid},
		},
		{
			name:        "blackjack push refunds",
			players:     []int64{TestUser1ID},
			outcome:     pushOutcome(games.ResolveBlackjack(stake, 19, 19)),
			wantWallets: map[int64]int64{TestUser1ID: 100},
			wantWinner:  entities.HouseID,
			wantStates:  []entities.WagerState{entities.WagerStateRefunded},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(nil)
			ctx := context.Background()

			wagers := make([]*entities.Wager, 0, len(tt.players))
			for _, p := range tt.players {
				env.seed(p, 100, 0)
				w, err := env.escrow.OpenWager(ctx, p, entities.GameCoinflip, stake)
				require.NoError(t, err)
				wagers = append(wagers, w)
			}

			settlement, err := env.escrow.Settle(ctx, wagers, tt.outcome)
			require.NoError(t, err)

			assert.Equal(t, tt.wantWinner, settlement.WinnerID)
			for id, want := range tt.wantWallets {
				assert.Equal(t, want, env.wallet(id), "wallet of %d", id)
			}
			for i, w := range wagers {
				assert.Equal(t, tt.wantStates[i], env.store.Wager(w.ID).State)
			}

			// settling again must not pay twice
			_, err = env.escrow.Settle(ctx, wagers, tt.outcome)
			assert.ErrorIs(t, err, entities.ErrAlreadyResolved)
			for id, want := range tt.wantWallets {
				assert.Equal(t, want, env.wallet(id))
			}
		})
	}
}

func TestEscrowService_Settle_RejectsBadInput(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()
	env.seed(TestUser1ID, 100, 0)

	_, err := env.escrow.Settle(ctx, nil, games.Outcome{Push: true})
	assert.Error(t, err)

	w, err := env.escrow.OpenWager(ctx, TestUser1ID, entities.GameDice, 10)
	require.NoError(t, err)
	_, err = env.escrow.Settle(ctx, []*entities.Wager{w}, games.Outcome{Winner: games.SeatSecond, Payout: 20})
	assert.Error(t, err)
	assert.True(t, env.store.Wager(w.ID).IsHeld())
}

func TestEscrowService_Stats(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()
	env.seed(TestUser1ID, 1000, 0)

	won, err := env.escrow.OpenWager(ctx, TestUser1ID, entities.GameDice, 100)
	require.NoError(t, err)
	lost, err := env.escrow.OpenWager(ctx, TestUser1ID, entities.GameDice, 50)
	require.NoError(t, err)
	pushed, err := env.escrow.OpenWager(ctx, TestUser1ID, entities.GameCoinflip, 30)
	require.NoError(t, err)
	_, err = env.escrow.OpenWager(ctx, TestUser1ID, entities.GameBlackjack, 10)
	require.NoError(t, err)

	_, err = env.escrow.ResolvePaid(ctx, won.ID, TestUser1ID, 200)
	require.NoError(t, err)
	_, err = env.escrow.ResolvePaid(ctx, lost.ID, entities.HouseID, 0)
	require.NoError(t, err)
	_, err = env.escrow.ResolveRefunded(ctx, pushed.ID)
	require.NoError(t, err)

	stats, err := env.escrow.Stats(ctx, TestUser1ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.GamesPlayed)
	assert.Equal(t, 1, stats.GamesWon)
	assert.Equal(t, 1, stats.GamesLost)
	assert.Equal(t, 1, stats.GamesPushed)
	assert.Equal(t, int64(150), stats.TotalWagered)
	assert.Equal(t, int64(200), stats.TotalPayout)
	assert.Equal(t, entities.GameDice, stats.FavoriteGame)

	held, err := env.escrow.HeldWagers(ctx, TestUser1ID)
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, entities.GameBlackjack, held[0].Game)
}

func TestEscrowService_Stats_PvPWin(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()
	env.seed(TestUser1ID, 100, 0)
	env.seed(TestUser2ID, 100, 0)

	first, err := env.escrow.OpenWager(ctx, TestUser1ID, entities.GameCoinflip, 40)
	require.NoError(t, err)
	second, err := env.escrow.OpenWager(ctx, TestUser2ID, entities.GameCoinflip, 40)
	require.NoError(t, err)

	outcome := games.ResolveCoinflipPvP(40, games.Heads, games.Tails, games.Heads)
	_, err = env.escrow.Settle(ctx, []*entities.Wager{first, second}, outcome)
	require.NoError(t, err)
	assert.Equal(t, int64(140), env.wallet(TestUser1ID))
	assert.Equal(t, int64(60), env.wallet(TestUser2ID))

	winner, err := env.escrow.Stats(ctx, TestUser1ID)
	require.NoError(t, err)
	assert.Equal(t, 1, winner.GamesWon)
	assert.Equal(t, int64(40), winner.TotalWagered)
	assert.Equal(t, int64(80), winner.TotalPayout)
	assert.Equal(t, int64(40), winner.NetResult())
	assert.Equal(t, int64(80), winner.BiggestWin)

	loser, err := env.escrow.Stats(ctx, TestUser2ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loser.GamesLost)
	assert.Equal(t, int64(0), loser.TotalPayout)
	assert.Equal(t, int64(-40), loser.NetResult())
}

func TestEscrowService_Stats_RepositoryError(t *testing.T) {
	ctx := context.Background()
	mockWagerRepo := new(testhelpers.MockWagerRepository)
	env := newTestEnv(nil)
	escrow := NewEscrowService(env.ledger, mockWagerRepo, env.publisher)

	mockWagerRepo.On("GetStats", ctx, TestUser1ID).Return(nil, errors.New("connection refused"))

	_, err := escrow.Stats(ctx, TestUser1ID)
	assert.Error(t, err)
	mockWagerRepo.AssertExpectations(t)
}

func mustOutcome(o games.Outcome, err error) games.Outcome {
	if err != nil {
		panic(err)
	}
	return o
}

func pushOutcome(_ games.BlackjackResult, o games.Outcome) games.Outcome {
	return o
}
