// Package casino serves the coin flip, dice and blackjack commands and the
// buttons of their messages.
package casino

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"guildgreeter/application"
	"guildgreeter/bot/common"
	"guildgreeter/domain/entities"
)

// Feature handles the casino slash commands and buttons
type Feature struct {
	casino  *application.Casino
	session *discordgo.Session
}

// NewFeature creates the casino feature. Expired games are reported by
// editing their message through session.
func NewFeature(casino *application.Casino, session *discordgo.Session) *Feature {
	f := &Feature{casino: casino, session: session}
	casino.SetExpiryNotifier(f.NotifyExpired)
	return f
}

// HandleCommand routes a casino command
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "coinflip":
		f.handleCoinflip(s, i)
	case "dice":
		f.handleDice(s, i)
	case "blackjack":
		f.handleBlackjack(s, i)
	case "cancelgame":
		f.handleCancel(s, i)
	case "casino":
		if err := common.RespondWithEmbed(s, i, menuEmbed(f.casino.Settings()), nil, false); err != nil {
			log.Errorf("Error responding to casino command: %v", err)
		}
	}
}

// HandleInteraction routes a casino button
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	action, sessionID, ok := parseCustomID(i.MessageComponentData().CustomID)
	if !ok {
		log.WithField("customID", i.MessageComponentData().CustomID).Warn("Malformed casino button")
		return
	}

	ctx := context.Background()
	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if side, ok := acceptedSide(action); ok {
		f.handleAccept(ctx, s, i, guildID, userID, sessionID, side)
		return
	}

	switch action {
	case ActionDecline:
		f.handleDecline(ctx, s, i, guildID, userID, sessionID)
	case ActionRoll:
		f.handleRoll(ctx, s, i, guildID, userID, sessionID)
	case ActionHit, ActionStand:
		f.handleBlackjackAction(ctx, s, i, guildID, userID, sessionID, action)
	default:
		log.WithField("action", action).Warn("Unknown casino action")
	}
}

// NotifyExpired replaces the message of a timed out game
func (f *Feature) NotifyExpired(ctx context.Context, session *entities.GameSession) {
	f.closeMessage(ctx, session, expiredEmbed(session))
}

// closeMessage replaces the message of a game that ended outside of its
// buttons and removes them
func (f *Feature) closeMessage(ctx context.Context, session *entities.GameSession, embed *discordgo.MessageEmbed) {
	if f.session == nil || session.ChannelID == "" || session.MessageID == "" {
		return
	}

	components := []discordgo.MessageComponent{}
	_, err := f.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         session.MessageID,
		Channel:    session.ChannelID,
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		log.WithFields(log.Fields{
			"sessionID": session.ID,
			"channelID": session.ChannelID,
		}).WithError(err).Warn("Failed to update game message")
	}
}

// track remembers the message showing session so expiry can update it
func (f *Feature) track(s *discordgo.Session, i *discordgo.InteractionCreate, sessionID string) {
	msg, err := common.InteractionMessage(s, i)
	if err != nil {
		log.WithField("sessionID", sessionID).WithError(err).Warn("Failed to fetch game message")
		return
	}
	f.casino.Locate(sessionID, msg.ChannelID, msg.ID)
}

func handleCasinoError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	if errors.Is(err, application.ErrSelfChallenge) {
		err = common.NewUserError("You can't challenge yourself.", err.Error())
	}
	common.HandleError(s, i, err, false)
}

func isBot(i *discordgo.InteractionCreate, userID string) bool {
	data := i.ApplicationCommandData()
	if data.Resolved == nil {
		return false
	}
	user, ok := data.Resolved.Users[userID]
	return ok && user.Bot
}
