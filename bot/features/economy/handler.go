package economy

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"guildgreeter/bot/common"
	"guildgreeter/domain/utils"
)

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	account, err := f.economy.Balance(ctx, guildID, userID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	displayName := common.GetDisplayName(s, i.GuildID, i.Member.User.ID)
	if err := common.RespondWithEmbed(s, i, balanceEmbed(displayName, account), nil, true); err != nil {
		log.Errorf("Error responding to balance command: %v", err)
	}
}

func (f *Feature) handleDaily(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	reward, err := f.economy.ClaimDaily(ctx, guildID, userID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.RespondWithEmbed(s, i, dailyEmbed(reward), nil, false); err != nil {
		log.Errorf("Error responding to daily command: %v", err)
	}
}

func (f *Feature) handleDeposit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	amount, err := utils.ParseAmount(common.CommandOptions(i).String("amount", ""))
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	result, err := f.economy.Deposit(ctx, guildID, userID, amount)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	message := fmt.Sprintf("🏦 Deposited %s. Wallet: %s, bank: %s.",
		common.FormatCoins(result.Amount), common.FormatCoins(result.Account.Wallet), common.FormatCoins(result.Account.Bank))
	respondText(s, i, message, true)
}

func (f *Feature) handleWithdraw(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	amount, err := utils.ParseAmount(common.CommandOptions(i).String("amount", ""))
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	result, err := f.economy.Withdraw(ctx, guildID, userID, amount)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	message := fmt.Sprintf("👛 Withdrew %s. Wallet: %s, bank: %s.",
		common.FormatCoins(result.Amount), common.FormatCoins(result.Account.Wallet), common.FormatCoins(result.Account.Bank))
	respondText(s, i, message, true)
}

func (f *Feature) handleTransfer(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	opts := common.CommandOptions(i)
	recipientID, err := common.ParseUserID(opts.UserID("user"))
	if err != nil {
		common.HandleError(s, i, common.NewUserError("Pick someone to send coins to.", "missing transfer recipient"), false)
		return
	}
	if resolved := i.ApplicationCommandData().Resolved; resolved != nil {
		if u, ok := resolved.Users[opts.UserID("user")]; ok && u.Bot {
			common.RespondWithError(s, i, "Bots don't have wallets.")
			return
		}
	}

	result, err := f.economy.Transfer(ctx, guildID, userID, recipientID, opts.Int("amount", 0))
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	message := fmt.Sprintf("💸 %s sent %s to %s.",
		common.GetUserMention(userID), common.FormatCoins(result.Amount), common.GetUserMention(recipientID))
	respondText(s, i, message, false)
}

func (f *Feature) handleRichest(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	page := int(common.CommandOptions(i).Int("page", 1))
	board, err := f.economy.Leaderboard(ctx, guildID, userID, page)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	rows := make([]LeaderboardRow, len(board.Entries))
	for idx, entry := range board.Entries {
		rows[idx] = LeaderboardRow{
			Rank:     entry.Rank,
			Name:     common.GetDisplayNameInt64(s, i.GuildID, entry.Account.DiscordID),
			Wallet:   entry.Account.Wallet,
			Bank:     entry.Account.Bank,
			IsCaller: entry.Account.DiscordID == userID,
		}
	}

	embed := leaderboardEmbed(board, rows)
	png, err := f.images.Generate(rows)
	if err != nil {
		log.WithError(err).Warn("Failed to render leaderboard image, falling back to text")
		if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
			log.Errorf("Error responding to richest command: %v", err)
		}
		return
	}

	if err := common.RespondWithImage(s, i, embed, "richest.png", png); err != nil {
		log.Errorf("Error responding to richest command: %v", err)
	}
}

func (f *Feature) handleStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	stats, err := f.economy.Stats(ctx, guildID, userID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	displayName := common.GetDisplayName(s, i.GuildID, i.Member.User.ID)
	if err := common.RespondWithEmbed(s, i, statsEmbed(displayName, stats), nil, true); err != nil {
		log.Errorf("Error responding to mystats command: %v", err)
	}
}

func respondText(s *discordgo.Session, i *discordgo.InteractionCreate, message string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: message}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		log.Errorf("Error responding to %s command: %v", common.InteractionName(i), err)
	}
}
