package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// adminPermissions hides the shop management commands from members
var adminPermissions int64 = discordgo.PermissionAdministrator

func itemOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         "item",
		Description:  description,
		Required:     true,
		Autocomplete: true,
	}
}

func betOption() *discordgo.ApplicationCommandOption {
	minBet := 1.0
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "bet",
		Description: "Amount of coins to bet",
		Required:    true,
		MinValue:    &minBet,
	}
}

func opponentOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "opponent",
		Description: description,
	}
}

// commandDefinitions lists every slash command of the bot
func (b *Bot) commandDefinitions() []*discordgo.ApplicationCommand {
	minOne := 1.0

	return []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Show your wallet and bank",
		},
		{
			Name:        "daily",
			Description: "Claim your daily reward",
		},
		{
			Name:        "deposit",
			Description: "Move coins from your wallet to the bank",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "amount",
					Description: "Amount to deposit, or \"all\"",
					Required:    true,
				},
			},
		},
		{
			Name:        "withdraw",
			Description: "Move coins from the bank to your wallet",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "amount",
					Description: "Amount to withdraw, or \"all\"",
					Required:    true,
				},
			},
		},
		{
			Name:        "transfer",
			Description: "Send coins from your wallet to another member",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member receiving the coins",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount to send",
					Required:    true,
					MinValue:    &minOne,
				},
			},
		},
		{
			Name:        "richest",
			Description: "Show the richest members of the server",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "page",
					Description: "Leaderboard page",
					MinValue:    &minOne,
				},
			},
		},
		{
			Name:        "mystats",
			Description: "Show your casino statistics",
		},
		{
			Name:        "coinflip",
			Description: "Flip a coin against the house or another member",
			Options: []*discordgo.ApplicationCommandOption{
				betOption(),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "side",
					Description: "Heads or tails",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Heads", Value: "heads"},
						{Name: "Tails", Value: "tails"},
					},
				},
				opponentOption("Member to challenge instead of the house"),
			},
		},
		{
			Name:        "dice",
			Description: "Roll a die against the house or another member",
			Options: []*discordgo.ApplicationCommandOption{
				betOption(),
				opponentOption("Member to challenge instead of the house"),
			},
		},
		{
			Name:        "blackjack",
			Description: "Play a hand of blackjack against the dealer",
			Options: []*discordgo.ApplicationCommandOption{
				betOption(),
			},
		},
		{
			Name:        "casino",
			Description: "List the casino games and their rules",
		},
		{
			Name:        "cancelgame",
			Description: "Cancel your games in progress and get your bets back",
		},
		{
			Name:        "shop",
			Description: "Browse the shop",
		},
		{
			Name:        "items",
			Description: "List the shop items with their ids",
		},
		{
			Name:        "iteminfo",
			Description: "Show the details of a shop item",
			Options: []*discordgo.ApplicationCommandOption{
				itemOption("Item id or name"),
			},
		},
		{
			Name:        "buy",
			Description: "Buy an item from the shop",
			Options: []*discordgo.ApplicationCommandOption{
				itemOption("Item to buy"),
			},
		},
		{
			Name:        "inventory",
			Description: "Show the items you own",
		},
		{
			Name:                     "additem",
			Description:              "Put a new item on sale",
			DefaultMemberPermissions: &adminPermissions,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "id", Description: "Unique item id, without spaces", Required: true, MaxLength: 64},
				{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Name shown in the shop", Required: true, MaxLength: 100},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "price", Description: "Price in coins", Required: true, MinValue: &minOne},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "category",
					Description: "Item category",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Cosmetic (grants a role)", Value: "cosmetic"},
						{Name: "Boost", Value: "boost"},
						{Name: "Lootbox", Value: "lootbox"},
					},
				},
				{Type: discordgo.ApplicationCommandOptionString, Name: "description", Description: "What the item does"},
				{Type: discordgo.ApplicationCommandOptionString, Name: "role_name", Description: "Role given to buyers", MaxLength: 100},
				{Type: discordgo.ApplicationCommandOptionString, Name: "role_color", Description: "Role colour as hex, like #2ECC71"},
			},
		},
		{
			Name:                     "removeitem",
			Description:              "Take an item off sale",
			DefaultMemberPermissions: &adminPermissions,
			Options: []*discordgo.ApplicationCommandOption{
				itemOption("Item id"),
			},
		},
		{
			Name:                     "shopconfig",
			Description:              "Show the shop configuration",
			DefaultMemberPermissions: &adminPermissions,
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	commands := b.commandDefinitions()

	registered, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.config.GuildID, commands)
	if err != nil {
		return fmt.Errorf("cannot register commands: %w", err)
	}

	scope := "globally"
	if b.config.GuildID != "" {
		scope = "on guild " + b.config.GuildID
	}
	log.Infof("Registered %d commands %s", len(registered), scope)
	return nil
}
