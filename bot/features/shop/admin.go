package shop

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"guildgreeter/bot/common"
	"guildgreeter/domain/entities"
)

// shopConfigPreview is how many items /shopconfig lists
const shopConfigPreview = 10

func (f *Feature) handleAddItem(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, userID, err := f.adminIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	item, err := itemFromOptions(common.CommandOptions(i))
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	if err := f.economy.AddItem(context.Background(), guildID, item); err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	log.WithFields(log.Fields{
		"guildID": guildID,
		"adminID": userID,
		"item":    item.ID,
		"price":   item.Price,
	}).Info("Shop item added")

	embed := itemInfoEmbed(item, -1)
	embed.Title = "✅ Item added: " + item.Name
	if err := common.RespondWithEmbed(s, i, embed, nil, true); err != nil {
		log.Errorf("Error responding to additem command: %v", err)
	}
}

func (f *Feature) handleRemoveItem(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, userID, err := f.adminIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	itemID := strings.TrimSpace(common.CommandOptions(i).String("item", ""))
	item, err := f.economy.RemoveItem(context.Background(), guildID, itemID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	log.WithFields(log.Fields{
		"guildID": guildID,
		"adminID": userID,
		"item":    item.ID,
	}).Info("Shop item removed")

	embed := &discordgo.MessageEmbed{
		Title:       "🗑️ Item removed",
		Description: fmt.Sprintf("**%s** (`%s`) is no longer for sale. Members keep the copies they own.", item.Name, item.ID),
		Color:       common.ColorWarning,
	}
	if err := common.RespondWithEmbed(s, i, embed, nil, true); err != nil {
		log.Errorf("Error responding to removeitem command: %v", err)
	}
}

func (f *Feature) handleShopConfig(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, _, err := f.adminIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	catalog, err := f.economy.Catalog(context.Background(), guildID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	if err := common.RespondWithEmbed(s, i, shopConfigEmbed(catalog), nil, true); err != nil {
		log.Errorf("Error responding to shopconfig command: %v", err)
	}
}

func (f *Feature) adminIDs(i *discordgo.InteractionCreate) (guildID, userID int64, err error) {
	guildID, userID, err = common.InteractionIDs(i)
	if err != nil {
		return 0, 0, err
	}
	if !common.IsInteractionAdmin(i) {
		return 0, 0, common.NewUserError("Only server administrators can manage the shop.", "shop admin command by non-admin")
	}
	return guildID, userID, nil
}

// itemFromOptions builds the item described by the /additem options
func itemFromOptions(opts common.Options) (entities.ShopItem, error) {
	item := entities.ShopItem{
		ID:          strings.ToLower(strings.TrimSpace(opts.String("id", ""))),
		Name:        strings.TrimSpace(opts.String("name", "")),
		Description: strings.TrimSpace(opts.String("description", "")),
		Price:       opts.Int("price", 0),
		Category:    entities.ItemCategory(opts.String("category", "")),
		RoleName:    strings.TrimSpace(opts.String("role_name", "")),
	}

	if hex := strings.TrimSpace(opts.String("role_color", "")); hex != "" {
		color, err := parseColor(hex)
		if err != nil {
			return entities.ShopItem{}, common.NewUserError(fmt.Sprintf("`%s` is not a colour. Use a hex code like `#2ECC71`.", hex), err.Error())
		}
		item.RoleColor = color
	}
	return item, nil
}

func parseColor(hex string) (int, error) {
	value, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return 0, err
	}
	if value > 0xFFFFFF {
		return 0, fmt.Errorf("colour %s out of range", hex)
	}
	return int(value), nil
}
