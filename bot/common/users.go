package common

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// GetDisplayName returns the server-specific display name for a user
// Falls back to username if nickname is not set or if there's an error
func GetDisplayName(s *discordgo.Session, guildID, userID string) string {
	member, err := s.GuildMember(guildID, userID)
	if err == nil && member != nil {
		if member.Nick != "" {
			return member.Nick
		}
		if member.User != nil {
			if member.User.GlobalName != "" {
				return member.User.GlobalName
			}
			return member.User.Username
		}
	}

	user, err := s.User(userID)
	if err == nil && user != nil {
		return user.Username
	}

	return "Unknown"
}

// GetDisplayNameInt64 is a convenience wrapper that accepts int64 user IDs
func GetDisplayNameInt64(s *discordgo.Session, guildID string, userID int64) string {
	return GetDisplayName(s, guildID, FormatUserID(userID))
}

// ParseUserID converts a Discord snowflake string to int64
func ParseUserID(userID string) (int64, error) {
	return strconv.ParseInt(userID, 10, 64)
}

// FormatUserID converts an int64 user ID to string
func FormatUserID(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// GetUserMention returns a Discord mention string for a user
func GetUserMention(userID int64) string {
	return "<@" + FormatUserID(userID) + ">"
}

// InteractionIDs extracts the guild and the acting user of an interaction.
// Commands used outside a guild are refused.
func InteractionIDs(i *discordgo.InteractionCreate) (guildID, userID int64, err error) {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return 0, 0, NewUserError("This command can only be used in a server.", "interaction outside a guild")
	}

	guildID, err = strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		return 0, 0, NewSystemError(err, fmt.Sprintf("invalid guild ID %s", i.GuildID))
	}
	userID, err = ParseUserID(i.Member.User.ID)
	if err != nil {
		return 0, 0, NewSystemError(err, fmt.Sprintf("invalid user ID %s", i.Member.User.ID))
	}
	return guildID, userID, nil
}

// IsInteractionAdmin checks the permissions Discord resolved for the member
// who triggered the interaction
func IsInteractionAdmin(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	return i.Member.Permissions&discordgo.PermissionAdministrator != 0
}
