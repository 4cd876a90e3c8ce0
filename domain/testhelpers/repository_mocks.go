package testhelpers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"guildgreeter/domain/entities"
	"guildgreeter/domain/events"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetOrCreate(ctx context.Context, discordID int64, startingWallet int64) (*entities.Account, bool, error) {
	args := m.Called(ctx, discordID, startingWallet)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entities.Account), args.Bool(1), args.Error(2)
}

func (m *MockAccountRepository) GetByDiscordID(ctx context.Context, discordID int64) (*entities.Account, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetForUpdate(ctx context.Context, discordID int64) (*entities.Account, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *entities.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) Top(ctx context.Context, limit, offset int) ([]*entities.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountRepository) RankOf(ctx context.Context, discordID int64) (int, error) {
	args := m.Called(ctx, discordID)
	return args.Int(0), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *entities.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, discordID int64, limit int) ([]*entities.BalanceHistory, error) {
	args := m.Called(ctx, discordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BalanceHistory), args.Error(1)
}

// MockWagerRepository is a mock implementation of WagerRepository
type MockWagerRepository struct {
	mock.Mock
}

func (m *MockWagerRepository) Create(ctx context.Context, wager *entities.Wager) error {
	args := m.Called(ctx, wager)
	return args.Error(0)
}

func (m *MockWagerRepository) GetByID(ctx context.Context, id int64) (*entities.Wager, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) MarkPaid(ctx context.Context, id int64, winnerID int64, payout int64) (bool, error) {
	args := m.Called(ctx, id, winnerID, payout)
	return args.Bool(0), args.Error(1)
}

func (m *MockWagerRepository) MarkRefunded(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockWagerRepository) GetHeldByUser(ctx context.Context, discordID int64) ([]*entities.Wager, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetStats(ctx context.Context, discordID int64) (*entities.CasinoStats, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CasinoStats), args.Error(1)
}

// MockInventoryRepository is a mock implementation of InventoryRepository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) Add(ctx context.Context, discordID int64, itemID string, quantity int) error {
	args := m.Called(ctx, discordID, itemID, quantity)
	return args.Error(0)
}

func (m *MockInventoryRepository) GetByUser(ctx context.Context, discordID int64) ([]*entities.InventoryItem, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.InventoryItem), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockRoleGranter is a mock implementation of RoleGranter
type MockRoleGranter struct {
	mock.Mock
}

func (m *MockRoleGranter) GrantRole(ctx context.Context, guildID, discordID int64, item entities.ShopItem) error {
	args := m.Called(ctx, guildID, discordID, item)
	return args.Error(0)
}
