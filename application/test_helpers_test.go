package application

import (
	"context"
	"errors"
	"time"

	"guildgreeter/domain/entities"
	"guildgreeter/domain/interfaces"
	"guildgreeter/domain/sessions"
	"guildgreeter/domain/testhelpers"
)

const (
	TestGuildID = int64(555555555)
	TestUser1ID = int64(100)
	TestUser2ID = int64(200)
	TestUser3ID = int64(300)
)

var testNow = time.Date(2025, 3, 14, 21, 0, 0, 0, time.UTC)

var errBeginFailed = errors.New("database unavailable")

// memoryUnitOfWorkFactory hands out units of work over a shared memory
// store. Nothing is rolled back; tests assert on committed state only.
type memoryUnitOfWorkFactory struct {
	store     *testhelpers.MemoryStore
	publisher *testhelpers.RecordingPublisher
	failBegin bool
	commits   int
	rollbacks int
}

func (f *memoryUnitOfWorkFactory) CreateForGuild(guildID int64) UnitOfWork {
	return &memoryUnitOfWork{factory: f, guildID: guildID}
}

type memoryUnitOfWork struct {
	factory *memoryUnitOfWorkFactory
	guildID int64
	started bool
}

func (u *memoryUnitOfWork) Begin(ctx context.Context) error {
	if u.factory.failBegin {
		return errBeginFailed
	}
	u.started = true
	return nil
}

func (u *memoryUnitOfWork) Commit() error {
	u.factory.commits++
	u.started = false
	return nil
}

func (u *memoryUnitOfWork) Rollback() error {
	if u.started {
		u.factory.rollbacks++
	}
	u.started = false
	return nil
}

func (u *memoryUnitOfWork) AccountRepository() interfaces.AccountRepository {
	return u.factory.store.Accounts(u.guildID)
}

func (u *memoryUnitOfWork) BalanceHistoryRepository() interfaces.BalanceHistoryRepository {
	return u.factory.store.History(u.guildID)
}

func (u *memoryUnitOfWork) WagerRepository() interfaces.WagerRepository {
	return u.factory.store.Wagers(u.guildID)
}

func (u *memoryUnitOfWork) InventoryRepository() interfaces.InventoryRepository {
	return u.factory.store.Inventory(u.guildID)
}

func (u *memoryUnitOfWork) ShopItemRepository() interfaces.ShopItemRepository {
	return u.factory.store.ShopItems(u.guildID)
}

func (u *memoryUnitOfWork) EventBus() interfaces.EventPublisher {
	return u.factory.publisher
}

var testSettings = Settings{
	StartingBalance:  100,
	DailyCooldown:    24 * time.Hour,
	ChallengeTimeout: 60 * time.Second,
	DuelTimeout:      120 * time.Second,
	SoloTimeout:      30 * time.Second,
}

type testApp struct {
	store    *testhelpers.MemoryStore
	factory  *memoryUnitOfWorkFactory
	random   *testhelpers.ScriptedRandom
	clock    time.Time
	economy  *Economy
	escrow   *Escrow
	sessions *sessions.Manager
	casino   *Casino
}

func newTestApp(ints ...int) *testApp {
	store := testhelpers.NewMemoryStore()
	factory := &memoryUnitOfWorkFactory{store: store, publisher: &testhelpers.RecordingPublisher{}}
	random := testhelpers.NewScriptedRandom(ints...)

	app := &testApp{
		store:   store,
		factory: factory,
		random:  random,
		clock:   testNow,
	}
	app.sessions = sessions.NewManager(10)
	app.sessions.SetClock(func() time.Time { return app.clock })
	app.economy = NewEconomy(factory, random, testSettings)
	app.escrow = NewEscrow(factory, random, testSettings)
	app.casino = NewCasino(app.escrow, app.sessions, random, testSettings)
	return app
}

func (a *testApp) seed(discordID, wallet int64) {
	a.store.SetAccount(&entities.Account{DiscordID: discordID, GuildID: TestGuildID, Wallet: wallet})
}

func (a *testApp) wallet(discordID int64) int64 {
	return a.store.Account(discordID, TestGuildID).Wallet
}
