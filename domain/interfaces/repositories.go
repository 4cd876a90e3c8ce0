package interfaces

import (
	"context"

	"guildgreeter/domain/entities"
)

// AccountRepository defines data access for guild-scoped accounts. Every
// method operates on the guild the repository was created for.
type AccountRepository interface {
	// GetOrCreate returns the account of discordID, creating it with
	// startingWallet if it does not exist. created reports whether this call
	// inserted it. Concurrent first access yields a single account.
	GetOrCreate(ctx context.Context, discordID int64, startingWallet int64) (account *entities.Account, created bool, err error)

	// GetByDiscordID returns the account or nil if it does not exist
	GetByDiscordID(ctx context.Context, discordID int64) (*entities.Account, error)

	// GetForUpdate returns the account and locks it until the surrounding
	// transaction ends. Returns nil if it does not exist.
	GetForUpdate(ctx context.Context, discordID int64) (*entities.Account, error)

	// Save writes wallet, bank and daily_claimed_at in one statement
	Save(ctx context.Context, account *entities.Account) error

	// Top returns accounts ordered by wallet + bank, highest first
	Top(ctx context.Context, limit, offset int) ([]*entities.Account, error)

	// Count returns the number of accounts in the guild
	Count(ctx context.Context) (int, error)

	// RankOf returns the 1-based leaderboard position of discordID, or 0 if
	// the account does not exist
	RankOf(ctx context.Context, discordID int64) (int, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *entities.BalanceHistory) error

	// GetByUser returns the most recent entries of a user, newest first
	GetByUser(ctx context.Context, discordID int64, limit int) ([]*entities.BalanceHistory, error)
}

// WagerRepository defines the interface for escrowed wager persistence
type WagerRepository interface {
	// Create inserts a held wager and fills in its ID and CreatedAt
	Create(ctx context.Context, wager *entities.Wager) error

	// GetByID returns the wager or nil if it does not exist
	GetByID(ctx context.Context, id int64) (*entities.Wager, error)

	// MarkPaid moves a held wager to paid. Returns false without changing
	// anything when the wager is not held.
	MarkPaid(ctx context.Context, id int64, winnerID int64, payout int64) (bool, error)

	// MarkRefunded moves a held wager to refunded. Returns false without
	// changing anything when the wager is not held.
	MarkRefunded(ctx context.Context, id int64) (bool, error)

	// GetHeldByUser returns the held wagers of a user
	GetHeldByUser(ctx context.Context, discordID int64) ([]*entities.Wager, error)

	// GetStats aggregates resolved wagers of a user
	GetStats(ctx context.Context, discordID int64) (*entities.CasinoStats, error)
}

// InventoryRepository defines data access for owned shop items
type InventoryRepository interface {
	// Add grants quantity of itemID, stacking with existing copies
	Add(ctx context.Context, discordID int64, itemID string, quantity int) error

	// GetByUser returns the items owned by a user
	GetByUser(ctx context.Context, discordID int64) ([]*entities.InventoryItem, error)
}

// ShopItemRepository defines data access for the guild's shop catalog
type ShopItemRepository interface {
	// SeedDefaults inserts the items the guild has never had. Items an
	// admin removed stay removed.
	SeedDefaults(ctx context.Context, items []entities.ShopItem) error

	// GetActive returns the items for sale, cheapest first
	GetActive(ctx context.Context) ([]entities.ShopItem, error)

	// GetByID returns an item for sale, or nil
	GetByID(ctx context.Context, itemID string) (*entities.ShopItem, error)

	// Create puts an item on sale. A removed item with the same id is
	// replaced; it returns false when the id is already for sale.
	Create(ctx context.Context, item entities.ShopItem) (bool, error)

	// Deactivate takes an item off sale, returning false when it was not
	// for sale
	Deactivate(ctx context.Context, itemID string) (bool, error)
}
