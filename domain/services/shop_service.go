package services

import (
	"context"
	"fmt"
	"slices"

	log "github.com/sirupsen/logrus"

	"guildgreeter/domain/entities"
	"guildgreeter/domain/games"
	"guildgreeter/domain/interfaces"
)

// MysteryBoxID is the catalog id of the lootbox
const MysteryBoxID = "boite_mystere"

// DefaultCatalog is the item list every guild's shop starts with
var DefaultCatalog = []entities.ShopItem{
	{ID: MysteryBoxID, Name: "Boîte mystère", Description: "Des pièces ou une couleur de pseudo", Price: 200, Category: entities.ItemCategoryLootbox},
	{ID: "role_rouge", Name: "Rôle rouge", Description: "Pseudo en rouge", Price: 1000, Category: entities.ItemCategoryCosmetic, RoleName: "Rouge", RoleColor: 0xE74C3C},
	{ID: "role_bleu", Name: "Rôle bleu", Description: "Pseudo en bleu", Price: 1000, Category: entities.ItemCategoryCosmetic, RoleName: "Bleu", RoleColor: 0x3498DB},
	{ID: "boost_xp", Name: "Boost XP", Description: "Double l'XP gagnée pendant une heure", Price: 500, Category: entities.ItemCategoryBoost},
}

// Purchase is the result of buying one item
type Purchase struct {
	Item    entities.ShopItem
	Account *entities.Account
	// Reward is set when the item was a lootbox
	Reward *games.LootboxReward
	// Delivered is the item that went to the inventory, if any
	Delivered *entities.ShopItem
	// RoleGranted is set when the delivered item came with its role
	RoleGranted bool
}

// ShopService sells a guild's catalog against the wallet
type ShopService struct {
	ledger        *LedgerService
	inventoryRepo interfaces.InventoryRepository
	catalogRepo   interfaces.ShopItemRepository
	random        interfaces.RandomSource
	roles         interfaces.RoleGranter
}

// NewShopService creates a shop over the guild catalog. The catalog is
// seeded with DefaultCatalog on first use.
func NewShopService(
	ledger *LedgerService,
	inventoryRepo interfaces.InventoryRepository,
	catalogRepo interfaces.ShopItemRepository,
	random interfaces.RandomSource,
) *ShopService {
	return &ShopService{
		ledger:        ledger,
		inventoryRepo: inventoryRepo,
		catalogRepo:   catalogRepo,
		random:        random,
	}
}

// WithRoleGranter makes deliveries of role items hand out the role. A
// failing grant fails the purchase.
func (s *ShopService) WithRoleGranter(roles interfaces.RoleGranter) *ShopService {
	s.roles = roles
	return s
}

// Catalog returns the items for sale, cheapest first
func (s *ShopService) Catalog(ctx context.Context) ([]entities.ShopItem, error) {
	if err := s.catalogRepo.SeedDefaults(ctx, DefaultCatalog); err != nil {
		return nil, fmt.Errorf("failed to seed catalog: %w", err)
	}
	items, err := s.catalogRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}
	return items, nil
}

// Item looks up an item for sale by id
func (s *ShopService) Item(ctx context.Context, itemID string) (entities.ShopItem, error) {
	if err := s.catalogRepo.SeedDefaults(ctx, DefaultCatalog); err != nil {
		return entities.ShopItem{}, fmt.Errorf("failed to seed catalog: %w", err)
	}
	item, err := s.catalogRepo.GetByID(ctx, itemID)
	if err != nil {
		return entities.ShopItem{}, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return entities.ShopItem{}, fmt.Errorf("%q: %w", itemID, entities.ErrUnknownItem)
	}
	return *item, nil
}

// AddItem puts a new item on sale
func (s *ShopService) AddItem(ctx context.Context, item entities.ShopItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if item.Category == entities.ItemCategoryCosmetic && !item.GrantsRole() {
		return fmt.Errorf("%w: a cosmetic needs a role name", entities.ErrInvalidItem)
	}
	if err := s.catalogRepo.SeedDefaults(ctx, DefaultCatalog); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	created, err := s.catalogRepo.Create(ctx, item)
	if err != nil {
		return fmt.Errorf("failed to add item: %w", err)
	}
	if !created {
		return fmt.Errorf("%q: %w", item.ID, entities.ErrItemExists)
	}
	return nil
}

// RemoveItem takes an item off sale. Copies already owned are kept.
func (s *ShopService) RemoveItem(ctx context.Context, itemID string) (entities.ShopItem, error) {
	item, err := s.Item(ctx, itemID)
	if err != nil {
		return entities.ShopItem{}, err
	}
	removed, err := s.catalogRepo.Deactivate(ctx, itemID)
	if err != nil {
		return entities.ShopItem{}, fmt.Errorf("failed to remove item: %w", err)
	}
	if !removed {
		return entities.ShopItem{}, fmt.Errorf("%q: %w", itemID, entities.ErrUnknownItem)
	}
	return item, nil
}

// Buy debits the item price and delivers it. A lootbox is opened on the
// spot; anything else goes to the inventory.
func (s *ShopService) Buy(ctx context.Context, discordID int64, itemID string) (*Purchase, error) {
	item, err := s.Item(ctx, itemID)
	if err != nil {
		return nil, err
	}

	account, err := s.ledger.Debit(ctx, discordID, Change{
		Kind:     entities.BalanceWallet,
		Amount:   item.Price,
		Type:     entities.TransactionTypeShopPurchase,
		Metadata: map[string]any{"item_id": item.ID},
	})
	if err != nil {
		return nil, err
	}

	purchase := &Purchase{Item: item, Account: account}
	if !item.IsLootbox() {
		if err := s.deliver(ctx, account.GuildID, discordID, item, purchase); err != nil {
			return nil, err
		}
		return purchase, nil
	}

	cosmetics, err := s.lootboxCosmetics(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(cosmetics))
	for i, c := range cosmetics {
		ids[i] = c.ID
	}

	reward, err := games.OpenLootbox(s.random, games.DefaultLootboxTable, ids)
	if err != nil {
		return nil, err
	}
	purchase.Reward = &reward

	if reward.Kind == games.LootboxCosmetic {
		idx := slices.IndexFunc(cosmetics, func(c entities.ShopItem) bool { return c.ID == reward.CosmeticID })
		if err := s.deliver(ctx, account.GuildID, discordID, cosmetics[idx], purchase); err != nil {
			return nil, err
		}
	} else {
		account, err = s.ledger.Credit(ctx, discordID, Change{
			Kind:     entities.BalanceWallet,
			Amount:   reward.Coins,
			Type:     entities.TransactionTypeLootboxReward,
			Metadata: map[string]any{"item_id": item.ID, "tier": string(reward.Kind)},
		})
		if err != nil {
			return nil, err
		}
		purchase.Account = account
	}

	log.WithFields(log.Fields{
		"userID":  discordID,
		"guildID": account.GuildID,
		"reward":  reward.Kind,
		"coins":   reward.Coins,
		"item":    reward.CosmeticID,
	}).Info("Lootbox opened")

	return purchase, nil
}

// deliver puts one copy of item in the inventory and hands out its role
func (s *ShopService) deliver(ctx context.Context, guildID, discordID int64, item entities.ShopItem, purchase *Purchase) error {
	if err := s.inventoryRepo.Add(ctx, discordID, item.ID, 1); err != nil {
		return fmt.Errorf("failed to add item to inventory: %w", err)
	}
	purchase.Delivered = &item

	if !item.GrantsRole() || s.roles == nil {
		return nil
	}
	if err := s.roles.GrantRole(ctx, guildID, discordID, item); err != nil {
		return fmt.Errorf("failed to grant role %q: %w", item.RoleName, err)
	}
	purchase.RoleGranted = true
	return nil
}

// lootboxCosmetics are the role items a cosmetic draw picks from: the
// cosmetics for sale, or the default ones when the guild sells none.
func (s *ShopService) lootboxCosmetics(ctx context.Context) ([]entities.ShopItem, error) {
	items, err := s.catalogRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}
	pool := slices.DeleteFunc(items, func(item entities.ShopItem) bool {
		return item.Category != entities.ItemCategoryCosmetic
	})
	if len(pool) > 0 {
		return pool, nil
	}
	for _, item := range DefaultCatalog {
		if slices.Contains(games.DefaultLootboxCosmetics, item.ID) {
			pool = append(pool, item)
		}
	}
	return pool, nil
}

// Inventory returns the items owned by a user
func (s *ShopService) Inventory(ctx context.Context, discordID int64) ([]*entities.InventoryItem, error) {
	items, err := s.inventoryRepo.GetByUser(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	return items, nil
}
