package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"guildgreeter/domain/entities"
	"guildgreeter/domain/games"
	"guildgreeter/domain/testhelpers"
)

func catalogItem(t *testing.T, id string) entities.ShopItem {
	t.Helper()
	for _, item := range DefaultCatalog {
		if item.ID == id {
			return item
		}
	}
	t.Fatalf("no default item %q", id)
	return entities.ShopItem{}
}

func TestShopService_Buy_Cosmetic(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()
	env.seed(TestUser1ID, 1500, 0)
	roles := new(testhelpers.MockRoleGranter)
	env.shop.WithRoleGranter(roles)

	roles.On("GrantRole", ctx, TestGuildID, TestUser1ID, catalogItem(t, "role_rouge")).Return(nil)

	purchase, err := env.shop.Buy(ctx, TestUser1ID, "role_rouge")
	require.NoError(t, err)
	assert.Nil(t, purchase.Reward)
	assert.Equal(t, int64(500), purchase.Account.Wallet)
	require.NotNil(t, purchase.Delivered)
	assert.Equal(t, "Rouge", purchase.Delivered.RoleName)
	assert.True(t, purchase.RoleGranted)

	items, err := env.shop.Inventory(ctx, TestUser1ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "role_rouge", items[0].ItemID)
	assert.Equal(t, 1, items[0].Quantity)
	roles.AssertExpectations(t)
}

func TestShopService_Buy_BoostGrantsNoRole(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()
	env.seed(TestUser1ID, 500, 0)
	roles := new(testhelpers.MockRoleGranter)
	env.shop.WithRoleGranter(roles)

	purchase, err := env.shop.Buy(ctx, TestUser1ID, "boost_xp")
	require.NoError(t, err)
	assert.False(t, purchase.RoleGranted)
	roles.AssertNotCalled(t, "GrantRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestShopService_Buy_RoleGrantFailure(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()
	env.seed(TestUser1ID, 1500, 0)
	roles := new(testhelpers.MockRoleGranter)
	env.shop.WithRoleGranter(roles)

	roles.On("GrantRole", ctx, TestGuildID, TestUser1ID, mock.Anything).Return(errors.New("missing permissions"))

	_, err := env.shop.Buy(ctx, TestUser1ID, "role_bleu")
	assert.ErrorContains(t, err, "missing permissions")
	roles.AssertExpectations(t)
}

func TestShopService_Buy_Lootbox(t *testing.T) {
	tests := []struct {
		name       string
		rolls      []int
		wantKind   games.LootboxRewardKind
		wantWallet int64
		wantItem   string
	}{
		{name: "small coins", rolls: []int{10, 50}, wantKind: games.LootboxSmallCoins, wantWallet: 450},
		{name: "large coins", rolls: []int{75, 100}, wantKind: games.LootboxLargeCoins, wantWallet: 800},
		// cosmetics are drawn from the catalog order: role_bleu, role_rouge
		{name: "cosmetic", rolls: []int{95, 1}, wantKind: games.LootboxCosmetic, wantWallet: 300, wantItem: "role_rouge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(testhelpers.NewScriptedRandom(tt.rolls...))
			ctx := context.Background()
			env.seed(TestUser1ID, 500, 0)

			purchase, err := env.shop.Buy(ctx, TestUser1ID, MysteryBoxID)
			require.NoError(t, err)
			require.NotNil(t, purchase.Reward)
			assert.Equal(t, tt.wantKind, purchase.Reward.Kind)
			assert.Equal(t, tt.wantWallet, env.wallet(TestUser1ID))

			items, err := env.shop.Inventory(ctx, TestUser1ID)
			require.NoError(t, err)
			if tt.wantItem == "" {
				assert.Empty(t, items)
				assert.Nil(t, purchase.Delivered)
			} else {
				require.Len(t, items, 1)
				assert.Equal(t, tt.wantItem, items[0].ItemID)
				require.NotNil(t, purchase.Delivered)
				assert.Equal(t, tt.wantItem, purchase.Delivered.ID)
			}
		})
	}
}

func TestShopService_Buy_LootboxCosmeticGrantsRole(t *testing.T) {
	env := newTestEnv(testhelpers.NewScriptedRandom(95, 0))
	ctx := context.Background()
	env.seed(TestUser1ID, 500, 0)
	roles := new(testhelpers.MockRoleGranter)
	env.shop.WithRoleGranter(roles)

	roles.On("GrantRole", ctx, TestGuildID, TestUser1ID, catalogItem(t, "role_bleu")).Return(nil)

	purchase, err := env.shop.Buy(ctx, TestUser1ID, MysteryBoxID)
	require.NoError(t, err)
	assert.Equal(t, "role_bleu", purchase.Reward.CosmeticID)
	assert.True(t, purchase.RoleGranted)
	roles.AssertExpectations(t)
}

func TestShopService_Buy_LootboxCosmeticPool(t *testing.T) {
	ctx := context.Background()

	t.Run("guild cosmetics", func(t *testing.T) {
		env := newTestEnv(testhelpers.NewScriptedRandom(95, 0))
		env.seed(TestUser1ID, 500, 0)
		_, err := env.shop.RemoveItem(ctx, "role_rouge")
		require.NoError(t, err)
		_, err = env.shop.RemoveItem(ctx, "role_bleu")
		require.NoError(t, err)
		require.NoError(t, env.shop.AddItem(ctx, entities.ShopItem{
			ID: "role_vert", Name: "Rôle vert", Price: 800,
			Category: entities.ItemCategoryCosmetic, RoleName: "Vert", RoleColor: 0x2ECC71,
		}))

		purchase, err := env.shop.Buy(ctx, TestUser1ID, MysteryBoxID)
		require.NoError(t, err)
		assert.Equal(t, "role_vert", purchase.Reward.CosmeticID)
	})

	t.Run("falls back to the defaults", func(t *testing.T) {
		env := newTestEnv(testhelpers.NewScriptedRandom(95, 0))
		env.seed(TestUser1ID, 500, 0)
		_, err := env.shop.RemoveItem(ctx, "role_rouge")
		require.NoError(t, err)
		_, err = env.shop.RemoveItem(ctx, "role_bleu")
		require.NoError(t, err)

		purchase, err := env.shop.Buy(ctx, TestUser1ID, MysteryBoxID)
		require.NoError(t, err)
		assert.Equal(t, games.DefaultLootboxCosmetics[0], purchase.Reward.CosmeticID)
		require.NotNil(t, purchase.Delivered)
		assert.Equal(t, "Rouge", purchase.Delivered.RoleName)
	})
}

func TestShopService_Buy_Rejections(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()
	env.seed(TestUser1ID, 100, 5000)

	_, err := env.shop.Buy(ctx, TestUser1ID, "licorne")
	assert.ErrorIs(t, err, entities.ErrUnknownItem)

	// the bank does not pay for purchases
	_, err = env.shop.Buy(ctx, TestUser1ID, "boost_xp")
	assert.ErrorIs(t, err, entities.ErrInsufficientFunds)

	assert.Equal(t, int64(100), env.wallet(TestUser1ID))
	items, err := env.shop.Inventory(ctx, TestUser1ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestShopService_Buy_InventoryFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)
	env.seed(TestUser1ID, 1000, 0)
	mockInventoryRepo := new(testhelpers.MockInventoryRepository)
	shop := NewShopService(env.ledger, mockInventoryRepo, env.store.ShopItems(TestGuildID), testhelpers.NewScriptedRandom())

	mockInventoryRepo.On("Add", ctx, TestUser1ID, "boost_xp", 1).Return(errors.New("connection reset"))

	_, err := shop.Buy(ctx, TestUser1ID, "boost_xp")

	assert.Error(t, err)
	mockInventoryRepo.AssertExpectations(t)
	mockInventoryRepo.AssertNotCalled(t, "GetByUser", mock.Anything, mock.Anything)
}

func TestShopService_Catalog(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	catalog, err := env.shop.Catalog(ctx)
	require.NoError(t, err)
	ids := make([]string, len(catalog))
	for i, item := range catalog {
		ids[i] = item.ID
	}
	assert.Equal(t, []string{MysteryBoxID, "boost_xp", "role_bleu", "role_rouge"}, ids)

	item, err := env.shop.Item(ctx, MysteryBoxID)
	require.NoError(t, err)
	assert.True(t, item.IsLootbox())
	assert.Equal(t, int64(200), item.Price)

	// catalogs are per guild
	other := NewShopService(nil, nil, env.store.ShopItems(TestGuildID+1), nil)
	_, err = other.RemoveItem(ctx, "boost_xp")
	require.NoError(t, err)
	_, err = env.shop.Item(ctx, "boost_xp")
	assert.NoError(t, err)
}

func TestShopService_AddItem(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	vert := entities.ShopItem{
		ID: "role_vert", Name: "Rôle vert", Description: "Pseudo en vert", Price: 800,
		Category: entities.ItemCategoryCosmetic, RoleName: "Vert", RoleColor: 0x2ECC71,
	}
	require.NoError(t, env.shop.AddItem(ctx, vert))

	item, err := env.shop.Item(ctx, "role_vert")
	require.NoError(t, err)
	assert.Equal(t, vert, item)

	err = env.shop.AddItem(ctx, vert)
	assert.ErrorIs(t, err, entities.ErrItemExists)
	err = env.shop.AddItem(ctx, entities.ShopItem{ID: MysteryBoxID, Name: "Doublon", Price: 10, Category: entities.ItemCategoryLootbox})
	assert.ErrorIs(t, err, entities.ErrItemExists)

	invalid := []entities.ShopItem{
		{ID: "", Name: "Sans id", Price: 10, Category: entities.ItemCategoryBoost},
		{ID: "a b", Name: "Espace", Price: 10, Category: entities.ItemCategoryBoost},
		{ID: "gratuit", Name: "Gratuit", Price: 0, Category: entities.ItemCategoryBoost},
		{ID: "bizarre", Name: "Bizarre", Price: 10, Category: "weapon"},
		{ID: "role_gris", Name: "Rôle gris", Price: 10, Category: entities.ItemCategoryCosmetic},
		{ID: "role_noir", Name: "Rôle noir", Price: 10, Category: entities.ItemCategoryCosmetic, RoleName: "Noir", RoleColor: 0x1000000},
	}
	for _, item := range invalid {
		assert.ErrorIs(t, env.shop.AddItem(ctx, item), entities.ErrInvalidItem, item.ID)
	}
}

func TestShopService_RemoveItem(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()
	env.seed(TestUser1ID, 1000, 0)

	_, err := env.shop.Buy(ctx, TestUser1ID, "boost_xp")
	require.NoError(t, err)

	removed, err := env.shop.RemoveItem(ctx, "boost_xp")
	require.NoError(t, err)
	assert.Equal(t, "Boost XP", removed.Name)

	_, err = env.shop.RemoveItem(ctx, "boost_xp")
	assert.ErrorIs(t, err, entities.ErrUnknownItem)
	_, err = env.shop.Buy(ctx, TestUser1ID, "boost_xp")
	assert.ErrorIs(t, err, entities.ErrUnknownItem)

	// a removed default is not seeded again
	catalog, err := env.shop.Catalog(ctx)
	require.NoError(t, err)
	assert.Len(t, catalog, 3)

	// owned copies stay
	items, err := env.shop.Inventory(ctx, TestUser1ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "boost_xp", items[0].ItemID)

	// the id can be put on sale again
	require.NoError(t, env.shop.AddItem(ctx, entities.ShopItem{ID: "boost_xp", Name: "Boost XP+", Price: 750, Category: entities.ItemCategoryBoost}))
	item, err := env.shop.Item(ctx, "boost_xp")
	require.NoError(t, err)
	assert.Equal(t, int64(750), item.Price)
}
