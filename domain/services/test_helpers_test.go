package services

import (
	"time"

	"guildgreeter/domain/entities"
	"guildgreeter/domain/interfaces"
	"guildgreeter/domain/testhelpers"
)

const (
	TestGuildID         = int64(555555555)
	TestUser1ID         = int64(100)
	TestUser2ID         = int64(200)
	TestUser3ID         = int64(300)
	TestStartingBalance = int64(100)
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

// testEnv bundles the services of one guild over an in-memory store
type testEnv struct {
	store     *testhelpers.MemoryStore
	publisher *testhelpers.RecordingPublisher
	ledger    *LedgerService
	escrow    *EscrowService
	shop      *ShopService
}

func newTestEnv(random interfaces.RandomSource) *testEnv {
	store := testhelpers.NewMemoryStore()
	publisher := &testhelpers.RecordingPublisher{}
	if random == nil {
		random = testhelpers.NewScriptedRandom()
	}

	ledger := NewLedgerService(store.Accounts(TestGuildID), store.History(TestGuildID), publisher, random, LedgerConfig{
		StartingBalance: TestStartingBalance,
		DailyCooldown:   24 * time.Hour,
	})
	ledger.now = func() time.Time { return testNow }

	return &testEnv{
		store:     store,
		publisher: publisher,
		ledger:    ledger,
		escrow:    NewEscrowService(ledger, store.Wagers(TestGuildID), publisher),
		shop:      NewShopService(ledger, store.Inventory(TestGuildID), store.ShopItems(TestGuildID), random),
	}
}

// seed creates an account with the given balances
func (e *testEnv) seed(discordID, wallet, bank int64) {
	e.store.SetAccount(&entities.Account{
		DiscordID: discordID,
		GuildID:   TestGuildID,
		Wallet:    wallet,
		Bank:      bank,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	})
}

func (e *testEnv) account(discordID int64) *entities.Account {
	return e.store.Account(discordID, TestGuildID)
}

func (e *testEnv) wallet(discordID int64) int64 {
	return e.account(discordID).Wallet
}
