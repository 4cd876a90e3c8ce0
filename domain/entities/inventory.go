package entities

import (
	"fmt"
	"strings"
	"time"
)

// ItemCategory groups shop items
type ItemCategory string

const (
	ItemCategoryCosmetic ItemCategory = "cosmetic"
	ItemCategoryBoost    ItemCategory = "boost"
	ItemCategoryLootbox  ItemCategory = "lootbox"
)

// Valid reports whether c is one of the known categories
func (c ItemCategory) Valid() bool {
	switch c {
	case ItemCategoryCosmetic, ItemCategoryBoost, ItemCategoryLootbox:
		return true
	}
	return false
}

// ShopItem is an entry of the shop catalog
type ShopItem struct {
	ID          string       `db:"item_id"`
	Name        string       `db:"name"`
	Description string       `db:"description"`
	Price       int64        `db:"price"`
	Category    ItemCategory `db:"category"`
	// RoleName is the Discord role handed out with the item, if any
	RoleName  string `db:"role_name"`
	RoleColor int    `db:"role_color"`
}

// GrantsRole reports whether delivering the item gives a Discord role
func (i ShopItem) GrantsRole() bool {
	return i.RoleName != ""
}

// Validate checks an item before it is added to a catalog
func (i ShopItem) Validate() error {
	switch {
	case strings.TrimSpace(i.ID) == "" || strings.ContainsAny(i.ID, " :"):
		return fmt.Errorf("%w: id %q", ErrInvalidItem, i.ID)
	case strings.TrimSpace(i.Name) == "":
		return fmt.Errorf("%w: missing name", ErrInvalidItem)
	case i.Price <= 0:
		return fmt.Errorf("%w: price must be positive", ErrInvalidItem)
	case !i.Category.Valid():
		return fmt.Errorf("%w: category %q", ErrInvalidItem, i.Category)
	case i.RoleColor < 0 || i.RoleColor > 0xFFFFFF:
		return fmt.Errorf("%w: role colour %#x", ErrInvalidItem, i.RoleColor)
	}
	return nil
}

// IsLootbox reports whether buying the item opens a lootbox instead of
// adding it to the inventory
func (i ShopItem) IsLootbox() bool {
	return i.Category == ItemCategoryLootbox
}

// InventoryItem is a stack of an item owned by a user in a guild
type InventoryItem struct {
	DiscordID  int64     `db:"discord_id"`
	GuildID    int64     `db:"guild_id"`
	ItemID     string    `db:"item_id"`
	Quantity   int       `db:"quantity"`
	AcquiredAt time.Time `db:"acquired_at"`
}
