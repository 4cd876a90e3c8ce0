package shop

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"

	"guildgreeter/bot/common"
	"guildgreeter/domain/entities"
	"guildgreeter/domain/games"
	"guildgreeter/domain/services"
)

// itemListDescription is the description length kept by /items
const itemListDescription = 50

func catalogEmbed(catalog []entities.ShopItem) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, len(catalog))
	for idx, item := range catalog {
		fields[idx] = &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s: %s", item.Name, common.FormatCoins(item.Price)),
			Value: fmt.Sprintf("%s\n`/buy item:%s`", item.Description, item.ID),
		}
	}
	embed := &discordgo.MessageEmbed{
		Title:  "🛒 Shop",
		Color:  common.ColorPrimary,
		Fields: fields,
	}
	if len(catalog) == 0 {
		embed.Description = "Nothing is for sale right now."
	}
	return embed
}

func itemListEmbed(catalog []entities.ShopItem) *discordgo.MessageEmbed {
	var lines strings.Builder
	for _, item := range catalog {
		fmt.Fprintf(&lines, "`%s` · %s · %s\n", item.ID, common.FormatCoins(item.Price), common.TruncateName(item.Description, itemListDescription))
	}
	if len(catalog) == 0 {
		lines.WriteString("Nothing is for sale right now.")
	}
	return &discordgo.MessageEmbed{
		Title:       "📋 Items",
		Description: lines.String(),
		Color:       common.ColorPrimary,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Details with /iteminfo"},
	}
}

// itemInfoEmbed describes one item. A negative wallet leaves out the
// affordability line.
func itemInfoEmbed(item entities.ShopItem, wallet int64) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "💰 Price", Value: common.FormatCoins(item.Price), Inline: true},
		{Name: "🏷️ Category", Value: string(item.Category), Inline: true},
	}
	if item.GrantsRole() {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "🎨 Role",
			Value:  fmt.Sprintf("%s (#%06X)", item.RoleName, item.RoleColor),
			Inline: true,
		})
	}
	if item.IsLootbox() {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "🎁 Contents",
			Value: "Coins or a name colour, drawn when you buy it",
		})
	}

	switch {
	case wallet < 0:
	case wallet >= item.Price:
		fields = append(fields, &discordgo.MessageEmbedField{Name: "✅ Affordable", Value: "You can buy this item."})
	default:
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "❌ Not enough coins",
			Value: fmt.Sprintf("You are %s short.", common.FormatCoins(item.Price-wallet)),
		})
	}

	color := common.ColorInfo
	if item.RoleColor != 0 {
		color = item.RoleColor
	}
	return &discordgo.MessageEmbed{
		Title:       item.Name,
		Description: item.Description,
		Color:       color,
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: "ID: " + item.ID},
	}
}

func purchaseEmbed(purchase *services.Purchase) *discordgo.MessageEmbed {
	description := fmt.Sprintf("You bought **%s** for %s.", purchase.Item.Name, common.FormatCoins(purchase.Item.Price))
	if reward := purchase.Reward; reward != nil {
		switch {
		case reward.Kind == games.LootboxCosmetic && purchase.Delivered != nil:
			description += fmt.Sprintf("\n🎉 The box contained **%s**!", purchase.Delivered.Name)
		case reward.Kind == games.LootboxCosmetic:
			description += fmt.Sprintf("\n🎉 The box contained **%s**!", reward.CosmeticID)
		default:
			description += fmt.Sprintf("\n🎉 The box contained %s!", common.FormatCoins(reward.Coins))
		}
	}
	if purchase.RoleGranted {
		description += fmt.Sprintf("\n🎨 You now have the **%s** role.", purchase.Delivered.RoleName)
	}

	return &discordgo.MessageEmbed{
		Title:       "🛍️ Purchase complete",
		Description: description,
		Color:       common.ColorSuccess,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Wallet: %s %s", common.FormatBalance(purchase.Account.Wallet), common.CurrencyName)},
	}
}

func inventoryEmbed(items []*entities.InventoryItem, itemName func(string) string) *discordgo.MessageEmbed {
	var lines strings.Builder
	for _, item := range items {
		fmt.Fprintf(&lines, "• %s × %d\n", itemName(item.ItemID), item.Quantity)
	}
	if len(items) == 0 {
		lines.WriteString("Your inventory is empty. Have a look at `/shop`.")
	}

	return &discordgo.MessageEmbed{
		Title:       "🎒 Inventory",
		Description: lines.String(),
		Color:       common.ColorInfo,
	}
}

func shopConfigEmbed(catalog []entities.ShopItem) *discordgo.MessageEmbed {
	counts := make(map[entities.ItemCategory]int)
	for _, item := range catalog {
		counts[item.Category]++
	}
	categories := make([]string, 0, len(counts))
	for category := range counts {
		categories = append(categories, string(category))
	}
	slices.Sort(categories)

	var byCategory strings.Builder
	for _, category := range categories {
		fmt.Fprintf(&byCategory, "%s: %d\n", category, counts[entities.ItemCategory(category)])
	}
	if byCategory.Len() == 0 {
		byCategory.WriteString("none")
	}

	var preview strings.Builder
	for idx, item := range catalog {
		if idx == shopConfigPreview {
			fmt.Fprintf(&preview, "... and %d more", len(catalog)-shopConfigPreview)
			break
		}
		fmt.Fprintf(&preview, "`%s` %s · %s\n", item.ID, item.Name, common.FormatCoins(item.Price))
	}
	if preview.Len() == 0 {
		preview.WriteString("The shop is empty. Add items with `/additem`.")
	}

	return &discordgo.MessageEmbed{
		Title: "⚙️ Shop configuration",
		Color: common.ColorWarning,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Items for sale", Value: fmt.Sprintf("%d", len(catalog)), Inline: true},
			{Name: "By category", Value: byCategory.String(), Inline: true},
			{Name: "Catalog", Value: preview.String()},
		},
	}
}
