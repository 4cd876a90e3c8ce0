package application

import (
	"time"

	"guildgreeter/config"
	"guildgreeter/domain/interfaces"
	"guildgreeter/domain/services"
)

// Settings are the economy and casino parameters shared by the handlers
type Settings struct {
	StartingBalance  int64
	DailyCooldown    time.Duration
	ChallengeTimeout time.Duration
	DuelTimeout      time.Duration
	SoloTimeout      time.Duration
}

// SettingsFromConfig reads the settings from the application config
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		StartingBalance:  cfg.StartingBalance,
		DailyCooldown:    cfg.DailyCooldown,
		ChallengeTimeout: cfg.ChallengeTimeout,
		DuelTimeout:      cfg.DuelTimeout,
		SoloTimeout:      cfg.SoloGameTimeout,
	}
}

// domainServices are the domain services bound to one unit of work
type domainServices struct {
	ledger *services.LedgerService
	escrow *services.EscrowService
	shop   *services.ShopService
}

func newDomainServices(uow UnitOfWork, random interfaces.RandomSource, settings Settings) *domainServices {
	ledger := services.NewLedgerService(
		uow.AccountRepository(),
		uow.BalanceHistoryRepository(),
		uow.EventBus(),
		random,
		services.LedgerConfig{
			StartingBalance: settings.StartingBalance,
			DailyCooldown:   settings.DailyCooldown,
		},
	)
	return &domainServices{
		ledger: ledger,
		escrow: services.NewEscrowService(ledger, uow.WagerRepository(), uow.EventBus()),
		shop:   services.NewShopService(ledger, uow.InventoryRepository(), uow.ShopItemRepository(), random),
	}
}
