// Package economy serves the wallet, bank and leaderboard commands.
package economy

import (
	"github.com/bwmarrin/discordgo"

	"guildgreeter/application"
)

// Feature handles the economy slash commands
type Feature struct {
	economy *application.Economy
	images  *LeaderboardImageGenerator
}

// NewFeature creates the economy feature
func NewFeature(economy *application.Economy) *Feature {
	return &Feature{
		economy: economy,
		images:  NewLeaderboardImageGenerator(),
	}
}

// HandleCommand routes an economy command
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "balance":
		f.handleBalance(s, i)
	case "daily":
		f.handleDaily(s, i)
	case "deposit":
		f.handleDeposit(s, i)
	case "withdraw":
		f.handleWithdraw(s, i)
	case "transfer":
		f.handleTransfer(s, i)
	case "richest":
		f.handleRichest(s, i)
	case "mystats":
		f.handleStats(s, i)
	}
}
