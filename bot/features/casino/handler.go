package casino

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"guildgreeter/application"
	"guildgreeter/bot/common"
	"guildgreeter/domain/entities"
	"guildgreeter/domain/games"
)

func (f *Feature) handleCoinflip(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	opts := common.CommandOptions(i)
	bet := opts.Int("bet", 0)
	side, err := games.ParseSide(opts.String("side", ""))
	if err != nil {
		common.HandleError(s, i, common.NewUserError("Pick heads or tails.", err.Error()), false)
		return
	}

	if opponent := opts.UserID("opponent"); opponent != "" {
		f.challenge(ctx, s, i, entities.GameCoinflip, guildID, userID, opponent, bet, side)
		return
	}

	result, err := f.casino.CoinflipSolo(ctx, guildID, userID, bet, side)
	if err != nil {
		handleCasinoError(s, i, err)
		return
	}
	if err := common.RespondWithEmbed(s, i, coinflipSoloEmbed(userID, bet, result), nil, false); err != nil {
		log.Errorf("Error responding to coinflip command: %v", err)
	}
}

func (f *Feature) handleDice(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	opts := common.CommandOptions(i)
	bet := opts.Int("bet", 0)
	if opponent := opts.UserID("opponent"); opponent != "" {
		f.challenge(ctx, s, i, entities.GameDice, guildID, userID, opponent, bet, "")
		return
	}

	session, err := f.casino.StartDiceSolo(ctx, guildID, userID, bet)
	if err != nil {
		handleCasinoError(s, i, err)
		return
	}
	if err := common.RespondWithEmbed(s, i, diceEmbed(session, 0, nil), rollButton(session.ID), false); err != nil {
		log.Errorf("Error responding to dice command: %v", err)
		return
	}
	f.track(s, i, session.ID)
}

func (f *Feature) challenge(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, game entities.GameType, guildID, userID int64, opponent string, bet int64, side games.Side) {
	if isBot(i, opponent) {
		common.HandleError(s, i, common.NewUserError("Bots don't gamble.", "challenge against a bot"), false)
		return
	}
	opponentID, err := common.ParseUserID(opponent)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "invalid opponent id"), false)
		return
	}

	session, err := f.casino.Challenge(ctx, guildID, game, userID, opponentID, bet, side)
	if err != nil {
		handleCasinoError(s, i, err)
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    common.GetUserMention(opponentID),
			Embeds:     []*discordgo.MessageEmbed{challengeEmbed(session)},
			Components: challengeButtons(session),
			AllowedMentions: &discordgo.MessageAllowedMentions{
				Users: []string{opponent},
			},
		},
	})
	if err != nil {
		log.Errorf("Error responding to %s challenge: %v", game, err)
		return
	}
	f.track(s, i, session.ID)
}

func (f *Feature) handleBlackjack(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	result, err := f.casino.StartBlackjack(ctx, guildID, userID, common.CommandOptions(i).Int("bet", 0))
	if err != nil {
		handleCasinoError(s, i, err)
		return
	}

	if result.Done {
		if err := common.RespondWithEmbed(s, i, blackjackEmbed(result.Session, result.Settlement), nil, false); err != nil {
			log.Errorf("Error responding to blackjack command: %v", err)
		}
		return
	}
	if err := common.RespondWithEmbed(s, i, blackjackEmbed(result.Session, nil), blackjackButtons(result.Session.ID), false); err != nil {
		log.Errorf("Error responding to blackjack command: %v", err)
		return
	}
	f.track(s, i, result.Session.ID)
}

func (f *Feature) handleCancel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	cancelled, err := f.casino.CancelGames(ctx, guildID, userID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	for _, session := range cancelled {
		f.closeMessage(ctx, session, cancelledGameEmbed(session))
	}
	if err := common.RespondWithEmbed(s, i, cancelledEmbed(cancelled), nil, true); err != nil {
		log.Errorf("Error responding to cancelgame command: %v", err)
	}
}

func (f *Feature) handleAccept(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID, userID int64, sessionID string, side games.Side) {
	result, err := f.casino.Accept(ctx, guildID, sessionID, userID, side)
	var closed *application.ChallengeClosedError
	if errors.As(err, &closed) {
		reason := common.FromDomainError(closed.Err).UserMessage
		if err := common.UpdateComponentMessage(s, i, closedChallengeEmbed(closed.Session, reason), nil); err != nil {
			log.Errorf("Error updating closed challenge: %v", err)
		}
		return
	}
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if result.Settlement != nil {
		if err := common.UpdateComponentMessage(s, i, coinflipDuelEmbed(result), nil); err != nil {
			log.Errorf("Error updating coinflip duel: %v", err)
		}
		return
	}
	// dice duel: both players roll from the same message
	if err := common.UpdateComponentMessage(s, i, diceEmbed(result.Session, 0, nil), rollButton(result.Session.ID)); err != nil {
		log.Errorf("Error updating dice duel: %v", err)
	}
}

func (f *Feature) handleDecline(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID, userID int64, sessionID string) {
	session, err := f.casino.Decline(ctx, guildID, sessionID, userID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	reason := fmt.Sprintf("%s declined the challenge.", common.GetUserMention(userID))
	if err := common.UpdateComponentMessage(s, i, closedChallengeEmbed(session, reason), nil); err != nil {
		log.Errorf("Error updating declined challenge: %v", err)
	}
}

func (f *Feature) handleRoll(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID, userID int64, sessionID string) {
	result, err := f.casino.Roll(ctx, guildID, sessionID, userID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if !result.Done {
		err = common.UpdateComponentMessage(s, i, diceEmbed(result.Session, 0, nil), rollButton(sessionID))
	} else {
		err = common.UpdateComponentMessage(s, i, diceEmbed(result.Session, result.HouseRoll, result.Settlement), nil)
	}
	if err != nil {
		log.Errorf("Error updating dice game: %v", err)
	}
}

func (f *Feature) handleBlackjackAction(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID, userID int64, sessionID, action string) {
	play := f.casino.Hit
	if action == ActionStand {
		play = f.casino.Stand
	}

	result, err := play(ctx, guildID, sessionID, userID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if !result.Done {
		err = common.UpdateComponentMessage(s, i, blackjackEmbed(result.Session, nil), blackjackButtons(sessionID))
	} else {
		err = common.UpdateComponentMessage(s, i, blackjackEmbed(result.Session, result.Settlement), nil)
	}
	if err != nil {
		log.Errorf("Error updating blackjack table: %v", err)
	}
}
