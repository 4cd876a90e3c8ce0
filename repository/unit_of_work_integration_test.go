package repository

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildgreeter/application"
	"guildgreeter/domain/entities"
	"guildgreeter/domain/events"
	"guildgreeter/repository/testutil"
)

func TestUnitOfWork_CommitAndRollback(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	testutil.SeedAccount(t, testDB.DB, testUser1ID, testGuildID, 100, 0)
	factory := NewUnitOfWorkFactory(testDB.DB)
	ctx := context.Background()

	t.Run("repositories require Begin", func(t *testing.T) {
		uow := factory.CreateForGuildWithPublisher(testGuildID, &queuedPublisher{})
		assert.Panics(t, func() { uow.AccountRepository() })
	})

	t.Run("rollback drops writes and events", func(t *testing.T) {
		publisher := &queuedPublisher{}
		uow := factory.CreateForGuildWithPublisher(testGuildID, publisher)
		require.NoError(t, uow.Begin(ctx))

		account, err := uow.AccountRepository().GetForUpdate(ctx, testUser1ID)
		require.NoError(t, err)
		account.Wallet = 0
		require.NoError(t, uow.AccountRepository().Save(ctx, account))
		require.NoError(t, uow.EventBus().Publish(events.BalanceChangeEvent{UserID: testUser1ID}))

		require.NoError(t, uow.Rollback())
		assert.Equal(t, 1, publisher.discarded)
		assert.Empty(t, publisher.flushed)
		assert.Equal(t, int64(100), testutil.Wallet(t, testDB.DB, testUser1ID, testGuildID))
	})

	t.Run("commit persists writes and flushes events", func(t *testing.T) {
		publisher := &queuedPublisher{}
		uow := factory.CreateForGuildWithPublisher(testGuildID, publisher)
		require.NoError(t, uow.Begin(ctx))

		account, err := uow.AccountRepository().GetForUpdate(ctx, testUser1ID)
		require.NoError(t, err)
		account.Wallet = 70
		require.NoError(t, uow.AccountRepository().Save(ctx, account))
		require.NoError(t, uow.EventBus().Publish(events.BalanceChangeEvent{UserID: testUser1ID}))

		require.NoError(t, uow.Commit())
		assert.Len(t, publisher.flushed, 1)
		assert.Equal(t, int64(70), testutil.Wallet(t, testDB.DB, testUser1ID, testGuildID))

		assert.NoError(t, uow.Rollback(), "rollback after commit is a no-op")
	})
}

func TestEconomy_ConcurrentTransfersSerialize(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	testutil.SeedAccount(t, testDB.DB, testUser1ID, testGuildID, 100, 0)
	testutil.SeedAccount(t, testDB.DB, testUser2ID, testGuildID, 100, 0)
	factory := newTestUnitOfWorkFactory(testDB.DB)
	economy := application.NewEconomy(factory, rand.New(rand.NewPCG(1, 2)), testSettings)
	ctx := context.Background()

	var succeeded, insufficient atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := economy.Transfer(ctx, testGuildID, testUser1ID, testUser2ID, 30)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, entities.ErrInsufficientFunds):
				insufficient.Add(1)
			default:
				t.Errorf("unexpected transfer error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), succeeded.Load())
	assert.Equal(t, int32(7), insufficient.Load())
	assert.Equal(t, int64(10), testutil.Wallet(t, testDB.DB, testUser1ID, testGuildID))
	assert.Equal(t, int64(190), testutil.Wallet(t, testDB.DB, testUser2ID, testGuildID))
	assert.Equal(t, 3, testutil.CountHistory(t, testDB.DB, testGuildID, string(entities.TransactionTypeTransferOut)))
}

func TestEconomy_OpposingTransfersDoNotDeadlock(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	testutil.SeedAccount(t, testDB.DB, testUser1ID, testGuildID, 500, 0)
	testutil.SeedAccount(t, testDB.DB, testUser2ID, testGuildID, 500, 0)
	economy := application.NewEconomy(newTestUnitOfWorkFactory(testDB.DB), rand.New(rand.NewPCG(1, 2)), testSettings)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		from, to := testUser1ID, testUser2ID
		if i%2 == 1 {
			from, to = to, from
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := economy.Transfer(ctx, testGuildID, from, to, 10)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	total := testutil.Wallet(t, testDB.DB, testUser1ID, testGuildID) + testutil.Wallet(t, testDB.DB, testUser2ID, testGuildID)
	assert.Equal(t, int64(1000), total)
}

func TestEscrow_ConcurrentResolutionPaysOnce(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	testutil.SeedAccount(t, testDB.DB, testUser1ID, testGuildID, 100, 0)
	factory := newTestUnitOfWorkFactory(testDB.DB)
	escrow := application.NewEscrow(factory, rand.New(rand.NewPCG(1, 2)), testSettings)
	ctx := context.Background()

	stake, err := escrow.Open(ctx, testGuildID, testUser1ID, entities.GameDice, 40)
	require.NoError(t, err)
	assert.Equal(t, int64(60), testutil.Wallet(t, testDB.DB, testUser1ID, testGuildID))

	var succeeded, resolved atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handle := escrow.Adopt(testGuildID, stake.Wager())[0]
			var err error
			if i%2 == 0 {
				err = handle.Pay(ctx, testUser1ID, 80)
			} else {
				err = handle.Refund(ctx)
			}
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, entities.ErrAlreadyResolved):
				resolved.Add(1)
			default:
				t.Errorf("unexpected resolution error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(7), resolved.Load())

	wallet := testutil.Wallet(t, testDB.DB, testUser1ID, testGuildID)
	assert.Contains(t, []int64{100, 140}, wallet, "either one refund or one payout")

	resolvedEvents := 0
	for _, e := range factory.bus.Flushed() {
		if e.Type() == events.EventTypeWagerResolved {
			resolvedEvents++
		}
	}
	assert.Equal(t, 1, resolvedEvents)
}

func TestEscrow_ReleaseRefundsAfterFailure(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	testutil.SeedAccount(t, testDB.DB, testUser1ID, testGuildID, 100, 0)
	escrow := application.NewEscrow(newTestUnitOfWorkFactory(testDB.DB), rand.New(rand.NewPCG(1, 2)), testSettings)
	ctx := context.Background()

	play := func() error {
		stake, err := escrow.Open(ctx, testGuildID, testUser1ID, entities.GameBlackjack, 50)
		if err != nil {
			return err
		}
		defer stake.Release(ctx)
		return errors.New("table crashed")
	}
	assert.Error(t, play())

	assert.Equal(t, int64(100), testutil.Wallet(t, testDB.DB, testUser1ID, testGuildID))
	held, err := NewWagerRepository(testDB.DB, testGuildID).GetHeldByUser(ctx, testUser1ID)
	require.NoError(t, err)
	assert.Empty(t, held)
}

type failingRoleGranter struct{}

func (failingRoleGranter) GrantRole(ctx context.Context, guildID, discordID int64, item entities.ShopItem) error {
	return errors.New("missing access")
}

func TestEconomy_FailedRoleGrantKeepsCoins(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	testutil.SeedAccount(t, testDB.DB, testUser1ID, testGuildID, 1500, 0)
	economy := application.NewEconomy(newTestUnitOfWorkFactory(testDB.DB), rand.New(rand.NewPCG(1, 2)), testSettings)
	economy.SetRoleGranter(failingRoleGranter{})
	ctx := context.Background()

	_, err := economy.Buy(ctx, testGuildID, testUser1ID, "role_rouge")
	assert.ErrorContains(t, err, "missing access")

	assert.Equal(t, int64(1500), testutil.Wallet(t, testDB.DB, testUser1ID, testGuildID))
	assert.Zero(t, testutil.CountHistory(t, testDB.DB, testGuildID, string(entities.TransactionTypeShopPurchase)))
	items, err := economy.Inventory(ctx, testGuildID, testUser1ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
