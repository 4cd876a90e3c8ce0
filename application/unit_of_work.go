package application

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"guildgreeter/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() interfaces.AccountRepository
	BalanceHistoryRepository() interfaces.BalanceHistoryRepository
	WagerRepository() interfaces.WagerRepository
	InventoryRepository() interfaces.InventoryRepository
	ShopItemRepository() interfaces.ShopItemRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// CreateForGuild creates a new UnitOfWork instance scoped to a specific guild
	CreateForGuild(guildID int64) UnitOfWork
}

// runInUnitOfWork begins a guild-scoped unit of work, runs fn and commits.
// Any error or panic from fn rolls everything back.
func runInUnitOfWork(ctx context.Context, factory UnitOfWorkFactory, guildID int64, fn func(uow UnitOfWork) error) (err error) {
	uow := factory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := uow.Rollback(); rbErr != nil {
			log.WithError(rbErr).WithField("guildID", guildID).Error("Failed to rollback transaction")
		}
		if r := recover(); r != nil {
			panic(r)
		}
	}()

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}
