package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"guildgreeter/domain/entities"
	"guildgreeter/domain/games"
)

const genericFailure = "Something went wrong. Please try again later."

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string      // Message shown to Discord user
	LogMessage  string      // Internal message for logging
	Ephemeral   bool        // Whether the error message should be ephemeral
	Err         error       // Underlying error
	Context     interface{} // Additional context for logging
	expected    bool
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for user-caused issues (validation, insufficient funds, etc)
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
		expected:    true,
	}
}

// NewSystemError creates an error for system issues (database, unexpected state, etc)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: genericFailure,
		LogMessage:  logMessage,
		Ephemeral:   true,
		Err:         err,
	}
}

// FromDomainError maps an error returned by the economy or the casino to
// the message shown to the user
func FromDomainError(err error) *BotError {
	var botErr *BotError
	if errors.As(err, &botErr) {
		return botErr
	}

	userErr := func(msg string) *BotError {
		e := NewUserError(msg, err.Error())
		e.Err = err
		return e
	}

	var funds *entities.InsufficientFundsError
	var claimed *entities.AlreadyClaimedError
	switch {
	case errors.As(err, &funds):
		return userErr(fmt.Sprintf("Not enough coins in your %s: you have %s and need %s (%s short).",
			funds.Source, FormatCoins(funds.Available), FormatCoins(funds.Required), FormatCoins(funds.Shortfall())))
	case errors.Is(err, entities.ErrInsufficientFunds):
		return userErr("You don't have enough coins for that.")
	case errors.As(err, &claimed):
		return userErr(fmt.Sprintf("You already claimed your daily reward. Come back in %s.", FormatDuration(claimed.Remaining)))
	case errors.Is(err, entities.ErrAlreadyClaimed):
		return userErr("You already claimed your daily reward.")
	case errors.Is(err, entities.ErrInvalidStake):
		return userErr("The bet must be a positive amount.")
	case errors.Is(err, entities.ErrInvalidAmount):
		return userErr("Enter a positive amount or `all`.")
	case errors.Is(err, entities.ErrSelfTransfer):
		return userErr("You can't send coins to yourself.")
	case errors.Is(err, entities.ErrUnknownItem):
		return userErr("That item isn't sold in the shop. Check `/shop`.")
	case errors.Is(err, entities.ErrItemExists):
		return userErr("An item with this id is already for sale.")
	case errors.Is(err, entities.ErrInvalidItem):
		return userErr(fmt.Sprintf("That item can't be added (%s).", strings.TrimPrefix(err.Error(), entities.ErrInvalidItem.Error()+": ")))
	case errors.Is(err, entities.ErrSessionNotFound):
		return userErr("This game is over or has expired.")
	case errors.Is(err, entities.ErrSessionExists):
		return userErr("You already have this game running. Finish it or use `/cancelgame`.")
	case errors.Is(err, entities.ErrNotParticipant):
		return userErr("This game isn't yours.")
	case errors.Is(err, entities.ErrAlreadyActed):
		return userErr("You already played this turn.")
	case errors.Is(err, entities.ErrWrongPhase):
		return userErr("That action isn't available right now.")
	case errors.Is(err, games.ErrInvalidSide):
		return userErr("Pick heads or tails.")
	case errors.Is(err, entities.ErrCapacity):
		return userErr("The casino is full right now. Try again in a minute.")
	}
	return NewSystemError(err, "unexpected error")
}

// RespondWithError sends an error message as an interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// FollowUpWithError sends an error message as a follow-up to a deferred interaction
func FollowUpWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: fmt.Sprintf("❌ %s", message),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error sending follow-up error message: %v", err)
	}
}

// HandleError logs err and tells the user what went wrong
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, deferred bool) {
	botErr := FromDomainError(err)

	entry := log.WithFields(log.Fields{
		"user_id":      InteractionUserID(i),
		"interaction":  InteractionName(i),
		"error":        botErr.Error(),
		"user_message": botErr.UserMessage,
		"context":      botErr.Context,
	})
	if botErr.expected {
		entry.Debug(botErr.LogMessage)
	} else {
		entry.Error(botErr.LogMessage)
	}

	if deferred {
		FollowUpWithError(s, i, botErr.UserMessage)
	} else {
		RespondWithError(s, i, botErr.UserMessage)
	}
}

// InteractionName names a command or component interaction for logs
func InteractionName(i *discordgo.InteractionCreate) string {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return i.ApplicationCommandData().Name
	case discordgo.InteractionMessageComponent:
		return i.MessageComponentData().CustomID
	}
	return i.Type.String()
}

// InteractionUserID returns the snowflake of the acting user
func InteractionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
