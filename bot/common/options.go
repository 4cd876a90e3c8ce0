package common

import (
	"github.com/bwmarrin/discordgo"
)

// Options indexes the options of a slash command (or of its first
// sub-command) by name
type Options map[string]*discordgo.ApplicationCommandInteractionDataOption

// CommandOptions returns the options of the invoked command
func CommandOptions(i *discordgo.InteractionCreate) Options {
	opts := make(Options)
	data := i.ApplicationCommandData()
	list := data.Options
	if len(list) == 1 && list[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		list = list[0].Options
	}
	for _, opt := range list {
		opts[opt.Name] = opt
	}
	return opts
}

// Int returns an integer option, or fallback when absent
func (o Options) Int(name string, fallback int64) int64 {
	if opt, ok := o[name]; ok {
		return opt.IntValue()
	}
	return fallback
}

// String returns a string option, or fallback when absent
func (o Options) String(name, fallback string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return fallback
}

// UserID returns the snowflake of a user option, or "" when absent
func (o Options) UserID(name string) string {
	if opt, ok := o[name]; ok {
		if v, ok := opt.Value.(string); ok {
			return v
		}
	}
	return ""
}

// Focused returns the option being typed in an autocomplete interaction
func (o Options) Focused() (*discordgo.ApplicationCommandInteractionDataOption, bool) {
	for _, opt := range o {
		if opt.Focused {
			return opt, true
		}
	}
	return nil, false
}
