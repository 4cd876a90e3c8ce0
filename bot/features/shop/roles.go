package shop

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"guildgreeter/bot/common"
	"guildgreeter/domain/entities"
)

// roleAPI is the part of the Discord session the granter needs
type roleAPI interface {
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// RoleGranter adds the role of a shop item to a member, creating the role
// with the item's colour the first time it is sold in a guild
type RoleGranter struct {
	api roleAPI
}

// NewRoleGranter creates a granter on the bot session
func NewRoleGranter(session *discordgo.Session) *RoleGranter {
	return &RoleGranter{api: session}
}

// GrantRole finds or creates the role named by item and adds it to the member
func (g *RoleGranter) GrantRole(ctx context.Context, guildID, discordID int64, item entities.ShopItem) error {
	guild := strconv.FormatInt(guildID, 10)
	user := common.FormatUserID(discordID)

	roleID, err := g.roleID(ctx, guild, item)
	if err != nil {
		return err
	}
	if err := g.api.GuildMemberRoleAdd(guild, user, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to add role %s to user %s: %w", item.RoleName, user, err)
	}

	log.WithFields(log.Fields{
		"guildID": guildID,
		"userID":  discordID,
		"role":    item.RoleName,
	}).Info("Shop role granted")
	return nil
}

func (g *RoleGranter) roleID(ctx context.Context, guild string, item entities.ShopItem) (string, error) {
	roles, err := g.api.GuildRoles(guild, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to list roles: %w", err)
	}
	for _, role := range roles {
		if role.Name == item.RoleName {
			return role.ID, nil
		}
	}

	color := item.RoleColor
	role, err := g.api.GuildRoleCreate(guild, &discordgo.RoleParams{
		Name:  item.RoleName,
		Color: &color,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to create role %s: %w", item.RoleName, err)
	}
	log.WithFields(log.Fields{"guildID": guild, "role": role.Name}).Info("Created shop role")
	return role.ID, nil
}
