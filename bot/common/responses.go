package common

import (
	"bytes"

	"github.com/bwmarrin/discordgo"
)

// RespondWithEmbed sends an embed as an interaction response
func RespondWithEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	if len(components) > 0 {
		data.Components = components
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// RespondWithImage sends an embed showing a PNG attachment
func RespondWithImage(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, fileName string, png []byte) error {
	embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + fileName}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Files: []*discordgo.File{{
				Name:        fileName,
				ContentType: "image/png",
				Reader:      bytes.NewReader(png),
			}},
		},
	})
}

// UpdateComponentMessage replaces the message a button belongs to
func UpdateComponentMessage(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
}

// InteractionMessage returns the message created by the original response
func InteractionMessage(s *discordgo.Session, i *discordgo.InteractionCreate) (*discordgo.Message, error) {
	return s.InteractionResponse(i.Interaction)
}

