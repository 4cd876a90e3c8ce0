package casino

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"guildgreeter/domain/entities"
	"guildgreeter/domain/games"
)

// CustomIDPrefix marks every casino button
const CustomIDPrefix = "casino_"

// Button actions
const (
	ActionAccept      = "accept"
	ActionAcceptHeads = "accept-heads"
	ActionAcceptTails = "accept-tails"
	ActionDecline     = "decline"
	ActionRoll        = "roll"
	ActionHit         = "hit"
	ActionStand       = "stand"
)

// acceptedSide returns the side an accept button calls. Plain accepts call
// none.
func acceptedSide(action string) (games.Side, bool) {
	switch action {
	case ActionAccept:
		return "", true
	case ActionAcceptHeads:
		return games.Heads, true
	case ActionAcceptTails:
		return games.Tails, true
	}
	return "", false
}

// customID encodes the action and the session a button acts on
func customID(action, sessionID string) string {
	return CustomIDPrefix + action + ":" + sessionID
}

// parseCustomID splits a casino custom id. Session ids contain colons, so
// only the first one separates the action.
func parseCustomID(id string) (action, sessionID string, ok bool) {
	rest, found := strings.CutPrefix(id, CustomIDPrefix)
	if !found {
		return "", "", false
	}
	action, sessionID, found = strings.Cut(rest, ":")
	if !found || action == "" || sessionID == "" {
		return "", "", false
	}
	return action, sessionID, true
}

// challengeButtons lets the opponent answer a challenge. A coin flip is
// accepted by calling a side.
func challengeButtons(session *entities.GameSession) []discordgo.MessageComponent {
	var accept []discordgo.MessageComponent
	if session.Game == entities.GameCoinflip {
		accept = []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Heads",
				Style:    discordgo.SuccessButton,
				CustomID: customID(ActionAcceptHeads, session.ID),
				Emoji:    &discordgo.ComponentEmoji{Name: "🪙"},
			},
			discordgo.Button{
				Label:    "Tails",
				Style:    discordgo.SuccessButton,
				CustomID: customID(ActionAcceptTails, session.ID),
				Emoji:    &discordgo.ComponentEmoji{Name: "🪙"},
			},
		}
	} else {
		accept = []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Accept",
				Style:    discordgo.SuccessButton,
				CustomID: customID(ActionAccept, session.ID),
				Emoji:    &discordgo.ComponentEmoji{Name: "✅"},
			},
		}
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: append(accept, discordgo.Button{
				Label:    "Decline",
				Style:    discordgo.DangerButton,
				CustomID: customID(ActionDecline, session.ID),
				Emoji:    &discordgo.ComponentEmoji{Name: "✖️"},
			}),
		},
	}
}

func rollButton(sessionID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Roll",
					Style:    discordgo.PrimaryButton,
					CustomID: customID(ActionRoll, sessionID),
					Emoji:    &discordgo.ComponentEmoji{Name: "🎲"},
				},
			},
		},
	}
}

func blackjackButtons(sessionID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Hit",
					Style:    discordgo.PrimaryButton,
					CustomID: customID(ActionHit, sessionID),
				},
				discordgo.Button{
					Label:    "Stand",
					Style:    discordgo.SecondaryButton,
					CustomID: customID(ActionStand, sessionID),
				},
			},
		},
	}
}
