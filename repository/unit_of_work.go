package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"guildgreeter/application"
	"guildgreeter/database"
	"guildgreeter/domain/interfaces"
)

// unitOfWork implements application.UnitOfWork over one pgx transaction
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	guildID                int64
	transactionalPublisher interfaces.TransactionalEventPublisher
	accountRepo            interfaces.AccountRepository
	balanceHistoryRepo     interfaces.BalanceHistoryRepository
	wagerRepo              interfaces.WagerRepository
	inventoryRepo          interfaces.InventoryRepository
	shopItemRepo           interfaces.ShopItemRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{db: db}
}

// UnitOfWorkFactory creates guild-scoped units of work
type UnitOfWorkFactory struct {
	db *database.DB
}

// CreateForGuildWithPublisher creates a UnitOfWork whose events go through
// the given transactional publisher
func (f *UnitOfWorkFactory) CreateForGuildWithPublisher(guildID int64, transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		guildID:                guildID,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.accountRepo = newAccountRepository(tx, u.guildID)
	u.balanceHistoryRepo = newBalanceHistoryRepository(tx, u.guildID)
	u.wagerRepo = newWagerRepository(tx, u.guildID)
	u.inventoryRepo = newInventoryRepository(tx, u.guildID)
	u.shopItemRepo = newShopItemRepository(tx, u.guildID)

	return nil
}

// Commit commits the transaction and then publishes the queued events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.tx = nil

	if u.transactionalPublisher != nil {
		// The commit already happened; a lost event must not fail the operation
		if err := u.transactionalPublisher.Flush(context.WithoutCancel(u.ctx)); err != nil {
			log.WithError(err).WithField("guildID", u.guildID).Error("Failed to flush events after commit")
		}
	}

	return nil
}

// Rollback rolls back the transaction and drops the queued events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	u.tx = nil

	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// AccountRepository returns the account repository for this unit of work
func (u *unitOfWork) AccountRepository() interfaces.AccountRepository {
	if u.accountRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.accountRepo
}

// BalanceHistoryRepository returns the balance history repository for this unit of work
func (u *unitOfWork) BalanceHistoryRepository() interfaces.BalanceHistoryRepository {
	if u.balanceHistoryRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.balanceHistoryRepo
}

// WagerRepository returns the wager repository for this unit of work
func (u *unitOfWork) WagerRepository() interfaces.WagerRepository {
	if u.wagerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.wagerRepo
}

// InventoryRepository returns the inventory repository for this unit of work
func (u *unitOfWork) InventoryRepository() interfaces.InventoryRepository {
	if u.inventoryRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.inventoryRepo
}

// ShopItemRepository returns the catalog repository for this unit of work
func (u *unitOfWork) ShopItemRepository() interfaces.ShopItemRepository {
	if u.shopItemRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.shopItemRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalPublisher
}
