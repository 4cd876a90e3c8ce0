package repository

import (
	"context"
	"fmt"

	"guildgreeter/database"
	"guildgreeter/domain/entities"
)

// InventoryRepository implements owned shop item persistence
type InventoryRepository struct {
	q       Queryable
	guildID int64
}

// NewInventoryRepository creates an inventory repository on the pool
func NewInventoryRepository(db *database.DB, guildID int64) *InventoryRepository {
	return &InventoryRepository{q: db.Pool, guildID: guildID}
}

func newInventoryRepository(tx Queryable, guildID int64) *InventoryRepository {
	return &InventoryRepository{
		q:       tx,
		guildID: guildID,
	}
}

// Add grants items, stacking onto the existing quantity
func (r *InventoryRepository) Add(ctx context.Context, discordID int64, itemID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	query := `
		INSERT INTO inventory_items (discord_id, guild_id, item_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (discord_id, guild_id, item_id)
		DO UPDATE SET quantity = inventory_items.quantity + EXCLUDED.quantity
	`
	if _, err := r.q.Exec(ctx, query, discordID, r.guildID, itemID, quantity); err != nil {
		return entities.NewPersistenceError(fmt.Sprintf("add %s to inventory of user %d", itemID, discordID), err)
	}
	return nil
}

// GetByUser returns the items owned by a user ordered by item id
func (r *InventoryRepository) GetByUser(ctx context.Context, discordID int64) ([]*entities.InventoryItem, error) {
	query := `
		SELECT discord_id, guild_id, item_id, quantity, acquired_at
		FROM inventory_items
		WHERE discord_id = $1 AND guild_id = $2
		ORDER BY item_id ASC
	`
	rows, err := r.q.Query(ctx, query, discordID, r.guildID)
	if err != nil {
		return nil, entities.NewPersistenceError(fmt.Sprintf("get inventory of user %d", discordID), err)
	}
	defer rows.Close()

	items := []*entities.InventoryItem{}
	for rows.Next() {
		var item entities.InventoryItem
		if err := rows.Scan(&item.DiscordID, &item.GuildID, &item.ItemID, &item.Quantity, &item.AcquiredAt); err != nil {
			return nil, entities.NewPersistenceError("scan inventory item", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, entities.NewPersistenceError("iterate inventory", err)
	}
	return items, nil
}
