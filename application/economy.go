package application

import (
	"context"

	"guildgreeter/domain/entities"
	"guildgreeter/domain/interfaces"
	"guildgreeter/domain/services"
	"guildgreeter/domain/utils"
)

// Economy runs the ledger and shop commands, each in its own unit of work
type Economy struct {
	uowFactory UnitOfWorkFactory
	random     interfaces.RandomSource
	settings   Settings
	roles      interfaces.RoleGranter
}

// NewEconomy creates the economy handler
func NewEconomy(uowFactory UnitOfWorkFactory, random interfaces.RandomSource, settings Settings) *Economy {
	return &Economy{
		uowFactory: uowFactory,
		random:     random,
		settings:   settings,
	}
}

// SetRoleGranter makes shop deliveries hand out the role of role items
func (e *Economy) SetRoleGranter(roles interfaces.RoleGranter) {
	e.roles = roles
}

func (e *Economy) run(ctx context.Context, guildID int64, fn func(svc *domainServices) error) error {
	return runInUnitOfWork(ctx, e.uowFactory, guildID, func(uow UnitOfWork) error {
		svc := newDomainServices(uow, e.random, e.settings)
		if e.roles != nil {
			svc.shop.WithRoleGranter(e.roles)
		}
		return fn(svc)
	})
}

// Balance returns the account of a user, creating it on first access
func (e *Economy) Balance(ctx context.Context, guildID, discordID int64) (*entities.Account, error) {
	var account *entities.Account
	err := e.run(ctx, guildID, func(svc *domainServices) error {
		var err error
		account, err = svc.ledger.GetAccount(ctx, discordID)
		return err
	})
	return account, err
}

// ClaimDaily grants the daily reward
func (e *Economy) ClaimDaily(ctx context.Context, guildID, discordID int64) (*services.DailyReward, error) {
	var reward *services.DailyReward
	err := e.run(ctx, guildID, func(svc *domainServices) error {
		var err error
		reward, err = svc.ledger.ClaimDaily(ctx, discordID)
		return err
	})
	return reward, err
}

// Deposit moves coins from the wallet to the bank
func (e *Economy) Deposit(ctx context.Context, guildID, discordID int64, amount utils.Amount) (*services.MoveResult, error) {
	var result *services.MoveResult
	err := e.run(ctx, guildID, func(svc *domainServices) error {
		var err error
		result, err = svc.ledger.Deposit(ctx, discordID, amount)
		return err
	})
	return result, err
}

// Withdraw moves coins from the bank to the wallet
func (e *Economy) Withdraw(ctx context.Context, guildID, discordID int64, amount utils.Amount) (*services.MoveResult, error) {
	var result *services.MoveResult
	err := e.run(ctx, guildID, func(svc *domainServices) error {
		var err error
		result, err = svc.ledger.Withdraw(ctx, discordID, amount)
		return err
	})
	return result, err
}

// Transfer sends coins from one wallet to another
func (e *Economy) Transfer(ctx context.Context, guildID, fromID, toID, amount int64) (*services.TransferResult, error) {
	var result *services.TransferResult
	err := e.run(ctx, guildID, func(svc *domainServices) error {
		var err error
		result, err = svc.ledger.Transfer(ctx, fromID, toID, amount)
		return err
	})
	return result, err
}

// Leaderboard returns a page of the richest members
func (e *Economy) Leaderboard(ctx context.Context, guildID, callerID int64, page int) (*services.Leaderboard, error) {
	var board *services.Leaderboard
	err := e.run(ctx, guildID, func(svc *domainServices) error {
		var err error
		board, err = svc.ledger.Leaderboard(ctx, callerID, page)
		return err
	})
	return board, err
}

// Catalog returns the items the guild's shop sells
func (e *Economy) Catalog(ctx context.Context, guildID int64) ([]entities.ShopItem, error) {
	var items []entities.ShopItem
	err := e.run(ctx, guildID, func(svc *domainServices) error {
		var err error
		items, err = svc.shop.Catalog(ctx)
		return err
	})
	return items, err
}

// Item looks up one item for sale
func (e *Economy) Item(ctx context.Context, guildID int64, itemID string) (entities.ShopItem, error) {
	var item entities.ShopItem
	err := e.run(ctx, guildID, func(svc *domainServices) error {
		var err error
		item, err = svc.shop.Item(ctx, itemID)
		return err
	})
	return item, err
}

// AddItem puts a new item on sale in the guild's shop
func (e *Economy) AddItem(ctx context.Context, guildID int64, item entities.ShopItem) error {
	return e.run(ctx, guildID, func(svc *domainServices) error {
		return svc.shop.AddItem(ctx, item)
	})
}

// RemoveItem takes an item off sale and returns it
func (e *Economy) RemoveItem(ctx context.Context, guildID int64, itemID string) (entities.ShopItem, error) {
	var item entities.ShopItem
	err := e.run(ctx, guildID, func(svc *domainServices) error {
		var err error
		item, err = svc.shop.RemoveItem(ctx, itemID)
		return err
	})
	return item, err
}

// Buy purchases an item. Debit, delivery and the role grant commit together.
func (e *Economy) Buy(ctx context.Context, guildID, discordID int64, itemID string) (*services.Purchase, error) {
	var purchase *services.Purchase
	err := e.run(ctx, guildID, func(svc *domainServices) error {
		var err error
		purchase, err = svc.shop.Buy(ctx, discordID, itemID)
		return err
	})
	return purchase, err
}

// Inventory lists the items owned by a user
func (e *Economy) Inventory(ctx context.Context, guildID, discordID int64) ([]*entities.InventoryItem, error) {
	var items []*entities.InventoryItem
	err := e.run(ctx, guildID, func(svc *domainServices) error {
		var err error
		items, err = svc.shop.Inventory(ctx, discordID)
		return err
	})
	return items, err
}

// Stats aggregates the casino results of a user
func (e *Economy) Stats(ctx context.Context, guildID, discordID int64) (*entities.CasinoStats, error) {
	var stats *entities.CasinoStats
	err := e.run(ctx, guildID, func(svc *domainServices) error {
		var err error
		stats, err = svc.escrow.Stats(ctx, discordID)
		return err
	})
	return stats, err
}
