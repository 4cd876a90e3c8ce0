// Package shop serves the item catalog, purchases and inventories.
package shop

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"guildgreeter/application"
	"guildgreeter/bot/common"
	"guildgreeter/domain/entities"
)

// CustomIDPrefix marks the buttons handled by the shop
const CustomIDPrefix = "shop_"

const buyButtonPrefix = CustomIDPrefix + "buy:"

// maxChoices is the Discord limit on autocomplete results
const maxChoices = 25

// Feature handles the shop slash commands
type Feature struct {
	economy *application.Economy
}

// NewFeature creates the shop feature. Role items hand out their role
// through the session.
func NewFeature(economy *application.Economy, session *discordgo.Session) *Feature {
	economy.SetRoleGranter(NewRoleGranter(session))
	return &Feature{economy: economy}
}

// HandleCommand routes a shop command
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "shop":
		f.handleShop(s, i)
	case "items":
		f.handleItems(s, i)
	case "iteminfo":
		f.handleItemInfo(s, i)
	case "buy":
		f.handleBuy(s, i)
	case "inventory":
		f.handleInventory(s, i)
	case "additem":
		f.handleAddItem(s, i)
	case "removeitem":
		f.handleRemoveItem(s, i)
	case "shopconfig":
		f.handleShopConfig(s, i)
	}
}

// HandleAutocomplete suggests catalog items for the item options
func (f *Feature) HandleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, _, err := common.InteractionIDs(i)
	if err != nil {
		return
	}
	opt, ok := common.CommandOptions(i).Focused()
	if !ok {
		return
	}

	catalog, err := f.economy.Catalog(context.Background(), guildID)
	if err != nil {
		log.WithError(err).Warn("Failed to load catalog for autocomplete")
		catalog = nil
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: itemChoices(catalog, opt.StringValue())},
	})
	if err != nil {
		log.Errorf("Error responding to item autocomplete: %v", err)
	}
}

// HandleInteraction handles the buy button of /iteminfo
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	itemID, ok := strings.CutPrefix(customID, buyButtonPrefix)
	if !ok {
		log.WithField("customID", customID).Warn("Unknown shop button")
		return
	}
	f.buy(s, i, itemID)
}

func (f *Feature) handleShop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	catalog, ok := f.catalog(s, i)
	if !ok {
		return
	}
	if err := common.RespondWithEmbed(s, i, catalogEmbed(catalog), nil, true); err != nil {
		log.Errorf("Error responding to shop command: %v", err)
	}
}

func (f *Feature) handleItems(s *discordgo.Session, i *discordgo.InteractionCreate) {
	catalog, ok := f.catalog(s, i)
	if !ok {
		return
	}
	if err := common.RespondWithEmbed(s, i, itemListEmbed(catalog), nil, true); err != nil {
		log.Errorf("Error responding to items command: %v", err)
	}
}

func (f *Feature) handleItemInfo(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	item, err := f.findItem(ctx, guildID, common.CommandOptions(i).String("item", ""))
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	account, err := f.economy.Balance(ctx, guildID, userID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.RespondWithEmbed(s, i, itemInfoEmbed(item, account.Wallet), buyButtons(item), true); err != nil {
		log.Errorf("Error responding to iteminfo command: %v", err)
	}
}

func (f *Feature) handleBuy(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, _, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	item, err := f.findItem(context.Background(), guildID, common.CommandOptions(i).String("item", ""))
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	f.buy(s, i, item.ID)
}

func (f *Feature) buy(s *discordgo.Session, i *discordgo.InteractionCreate, itemID string) {
	ctx := context.Background()
	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	purchase, err := f.economy.Buy(ctx, guildID, userID, itemID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.RespondWithEmbed(s, i, purchaseEmbed(purchase), nil, false); err != nil {
		log.Errorf("Error responding to buy command: %v", err)
	}
}

func (f *Feature) handleInventory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	items, err := f.economy.Inventory(ctx, guildID, userID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	catalog, err := f.economy.Catalog(ctx, guildID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.RespondWithEmbed(s, i, inventoryEmbed(items, itemNames(catalog)), nil, true); err != nil {
		log.Errorf("Error responding to inventory command: %v", err)
	}
}

func (f *Feature) catalog(s *discordgo.Session, i *discordgo.InteractionCreate) ([]entities.ShopItem, bool) {
	guildID, _, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return nil, false
	}
	catalog, err := f.economy.Catalog(context.Background(), guildID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return nil, false
	}
	return catalog, true
}

// findItem resolves an item from its id or its name, ignoring case
func (f *Feature) findItem(ctx context.Context, guildID int64, query string) (entities.ShopItem, error) {
	catalog, err := f.economy.Catalog(ctx, guildID)
	if err != nil {
		return entities.ShopItem{}, err
	}
	if item, ok := matchItem(catalog, query); ok {
		return item, nil
	}
	return entities.ShopItem{}, fmt.Errorf("%q: %w", query, entities.ErrUnknownItem)
}

func matchItem(catalog []entities.ShopItem, query string) (entities.ShopItem, bool) {
	query = strings.TrimSpace(query)
	for _, item := range catalog {
		if strings.EqualFold(item.ID, query) || strings.EqualFold(item.Name, query) {
			return item, true
		}
	}
	return entities.ShopItem{}, false
}

// itemChoices filters the catalog on what the user typed so far
func itemChoices(catalog []entities.ShopItem, typed string) []*discordgo.ApplicationCommandOptionChoice {
	typed = strings.ToLower(strings.TrimSpace(typed))
	choices := []*discordgo.ApplicationCommandOptionChoice{}
	for _, item := range catalog {
		if typed != "" && !strings.Contains(strings.ToLower(item.ID), typed) && !strings.Contains(strings.ToLower(item.Name), typed) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("%s (%s %s)", item.Name, common.FormatBalance(item.Price), common.CurrencyName),
			Value: item.ID,
		})
		if len(choices) == maxChoices {
			break
		}
	}
	return choices
}

func itemNames(catalog []entities.ShopItem) func(string) string {
	names := make(map[string]string, len(catalog))
	for _, item := range catalog {
		names[item.ID] = item.Name
	}
	return func(itemID string) string {
		if name, ok := names[itemID]; ok {
			return name
		}
		return itemID
	}
}

func buyButtons(item entities.ShopItem) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    fmt.Sprintf("Buy for %s %s", common.FormatBalance(item.Price), common.CurrencyName),
				Style:    discordgo.SuccessButton,
				CustomID: buyButtonPrefix + item.ID,
				Emoji:    &discordgo.ComponentEmoji{Name: "🛒"},
			},
		}},
	}
}
