package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"guildgreeter/database"
	"guildgreeter/domain/entities"
)

// ShopItemRepository implements catalog persistence for one guild
type ShopItemRepository struct {
	q       Queryable
	guildID int64
}

// NewShopItemRepository creates a catalog repository on the pool
func NewShopItemRepository(db *database.DB, guildID int64) *ShopItemRepository {
	return &ShopItemRepository{q: db.Pool, guildID: guildID}
}

func newShopItemRepository(tx Queryable, guildID int64) *ShopItemRepository {
	return &ShopItemRepository{
		q:       tx,
		guildID: guildID,
	}
}

const shopItemColumns = `item_id, name, description, price, category, role_name, role_color`

// SeedDefaults inserts the items missing from the guild's table
func (r *ShopItemRepository) SeedDefaults(ctx context.Context, items []entities.ShopItem) error {
	query := `
		INSERT INTO shop_items (guild_id, ` + shopItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (guild_id, item_id) DO NOTHING
	`
	for _, item := range items {
		_, err := r.q.Exec(ctx, query, r.guildID, item.ID, item.Name, item.Description, item.Price, string(item.Category), item.RoleName, item.RoleColor)
		if err != nil {
			return entities.NewPersistenceError(fmt.Sprintf("seed shop item %s", item.ID), err)
		}
	}
	return nil
}

// GetActive returns the items for sale ordered by price then id
func (r *ShopItemRepository) GetActive(ctx context.Context) ([]entities.ShopItem, error) {
	query := `
		SELECT ` + shopItemColumns + `
		FROM shop_items
		WHERE guild_id = $1 AND active
		ORDER BY price ASC, item_id ASC
	`
	rows, err := r.q.Query(ctx, query, r.guildID)
	if err != nil {
		return nil, entities.NewPersistenceError("get shop items", err)
	}
	defer rows.Close()

	items := []entities.ShopItem{}
	for rows.Next() {
		item, err := scanShopItem(rows)
		if err != nil {
			return nil, entities.NewPersistenceError("scan shop item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, entities.NewPersistenceError("iterate shop items", err)
	}
	return items, nil
}

// GetByID returns an item for sale, or nil when there is none
func (r *ShopItemRepository) GetByID(ctx context.Context, itemID string) (*entities.ShopItem, error) {
	query := `
		SELECT ` + shopItemColumns + `
		FROM shop_items
		WHERE guild_id = $1 AND item_id = $2 AND active
	`
	item, err := scanShopItem(r.q.QueryRow(ctx, query, r.guildID, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, entities.NewPersistenceError(fmt.Sprintf("get shop item %s", itemID), err)
	}
	return &item, nil
}

// Create puts an item on sale, replacing a removed item with the same id
func (r *ShopItemRepository) Create(ctx context.Context, item entities.ShopItem) (bool, error) {
	query := `
		INSERT INTO shop_items (guild_id, ` + shopItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (guild_id, item_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			category = EXCLUDED.category,
			role_name = EXCLUDED.role_name,
			role_color = EXCLUDED.role_color,
			active = TRUE,
			created_at = NOW()
		WHERE NOT shop_items.active
	`
	result, err := r.q.Exec(ctx, query, r.guildID, item.ID, item.Name, item.Description, item.Price, string(item.Category), item.RoleName, item.RoleColor)
	if err != nil {
		return false, entities.NewPersistenceError(fmt.Sprintf("create shop item %s", item.ID), err)
	}
	return result.RowsAffected() == 1, nil
}

// Deactivate takes an item off sale
func (r *ShopItemRepository) Deactivate(ctx context.Context, itemID string) (bool, error) {
	query := `
		UPDATE shop_items SET active = FALSE
		WHERE guild_id = $1 AND item_id = $2 AND active
	`
	result, err := r.q.Exec(ctx, query, r.guildID, itemID)
	if err != nil {
		return false, entities.NewPersistenceError(fmt.Sprintf("remove shop item %s", itemID), err)
	}
	return result.RowsAffected() == 1, nil
}

func scanShopItem(row pgx.Row) (entities.ShopItem, error) {
	var item entities.ShopItem
	var category string
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Price, &category, &item.RoleName, &item.RoleColor)
	item.Category = entities.ItemCategory(category)
	return item, err
}
