package economy

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"guildgreeter/bot/common"
	"guildgreeter/domain/entities"
	"guildgreeter/domain/services"
)

func balanceEmbed(displayName string, account *entities.Account) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s's balance", displayName),
		Color: common.ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "👛 Wallet", Value: common.FormatCoins(account.Wallet), Inline: true},
			{Name: "🏦 Bank", Value: common.FormatCoins(account.Bank), Inline: true},
			{Name: "Total", Value: common.FormatCoins(account.NetWorth()), Inline: true},
		},
	}
}

func dailyEmbed(reward *services.DailyReward) *discordgo.MessageEmbed {
	description := fmt.Sprintf("You received %s.", common.FormatCoins(reward.Base))
	if reward.Bonus > 0 {
		description = fmt.Sprintf("You received %s plus a lucky bonus of %s!",
			common.FormatCoins(reward.Base), common.FormatCoins(reward.Bonus))
	}

	return &discordgo.MessageEmbed{
		Title:       "🎁 Daily reward",
		Description: description,
		Color:       common.ColorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Wallet", Value: common.FormatCoins(reward.Account.Wallet), Inline: true},
			{Name: "Next claim", Value: common.FormatDiscordTimestamp(reward.NextClaimAt, "R"), Inline: true},
		},
	}
}

func leaderboardEmbed(board *services.Leaderboard, rows []LeaderboardRow) *discordgo.MessageEmbed {
	var lines strings.Builder
	for _, row := range rows {
		marker := ""
		if row.IsCaller {
			marker = " ⬅️"
		}
		fmt.Fprintf(&lines, "`#%d` %s: %s%s\n", row.Rank, row.Name, common.FormatCoins(row.Wallet+row.Bank), marker)
	}
	if len(rows) == 0 {
		lines.WriteString("Nobody has any coins yet.")
	}

	footer := fmt.Sprintf("Page %d/%d", board.Page, board.TotalPages)
	if board.CallerRank > 0 {
		footer += fmt.Sprintf(" • Your rank: #%d of %d", board.CallerRank, board.TotalAccounts)
	}

	return &discordgo.MessageEmbed{
		Title:       "💰 Richest members",
		Description: lines.String(),
		Color:       common.ColorGold,
		Footer:      &discordgo.MessageEmbedFooter{Text: footer},
	}
}

func statsEmbed(displayName string, stats *entities.CasinoStats) *discordgo.MessageEmbed {
	favorite := "none yet"
	if stats.FavoriteGame != "" {
		favorite = string(stats.FavoriteGame)
	}

	winRate := "0%"
	if stats.GamesWon+stats.GamesLost > 0 {
		winRate = fmt.Sprintf("%.1f%%", stats.WinRate())
	}

	color := common.ColorSuccess
	if stats.NetResult() < 0 {
		color = common.ColorDanger
	}

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🎰 %s's casino stats", displayName),
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Games", Value: fmt.Sprintf("%d played", stats.GamesPlayed), Inline: true},
			{Name: "Record", Value: fmt.Sprintf("%dW / %dL / %dP", stats.GamesWon, stats.GamesLost, stats.GamesPushed), Inline: true},
			{Name: "Win rate", Value: winRate, Inline: true},
			{Name: "Wagered", Value: common.FormatCoins(stats.TotalWagered), Inline: true},
			{Name: "Net result", Value: common.FormatSigned(stats.NetResult()) + " " + common.CurrencyName, Inline: true},
			{Name: "Biggest win", Value: common.FormatCoins(stats.BiggestWin), Inline: true},
			{Name: "Favorite game", Value: favorite, Inline: true},
		},
	}
}
