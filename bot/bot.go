package bot

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"guildgreeter/application"
	"guildgreeter/bot/common"
	"guildgreeter/bot/features/casino"
	"guildgreeter/bot/features/economy"
	"guildgreeter/bot/features/shop"
)

// Config holds bot configuration
type Config struct {
	Token string
	// GuildID registers the commands on a single guild when set
	GuildID       string
	SweepInterval time.Duration
	DebugAPIAddr  string
}

// Bot manages the Discord bot and all feature modules
type Bot struct {
	config  Config
	session *discordgo.Session

	casino *application.Casino

	// Feature modules
	economyFeature *economy.Feature
	casinoFeature  *casino.Feature
	shopFeature    *shop.Feature

	debugServer     *http.Server
	stopSweepWorker func()
	removeHandlers  []func()
	closeSession    func() error
}

// New creates the bot, opens the gateway connection and registers the
// slash commands
func New(config Config, economyApp *application.Economy, casinoApp *application.Casino) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	bot := &Bot{
		config:         config,
		session:        dg,
		casino:         casinoApp,
		economyFeature: economy.NewFeature(economyApp),
		casinoFeature:  casino.NewFeature(casinoApp, dg),
		shopFeature:    shop.NewFeature(economyApp, dg),
		closeSession:   dg.Close,
	}

	bot.removeHandlers = append(bot.removeHandlers,
		dg.AddHandler(bot.handleCommands),
		dg.AddHandler(bot.handleInteractions),
	)
	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Infof("Logged in as %s#%s", r.User.Username, r.User.Discriminator)
	})

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	bot.stopSweepWorker = bot.StartSessionSweepWorker(context.Background(), config.SweepInterval)
	log.Info("Background workers started")

	if config.DebugAPIAddr != "" {
		bot.debugServer = bot.StartDebugAPI(config.DebugAPIAddr)
	}

	return bot, nil
}

// Close stops taking interactions, refunds every game still in flight while
// its message can be edited, then stops the debug API and closes the gateway
// connection.
func (b *Bot) Close() error {
	for _, remove := range b.removeHandlers {
		remove()
	}
	if b.stopSweepWorker != nil {
		b.stopSweepWorker()
	}
	log.Info("Background workers stopped")

	refundCtx, cancelRefund := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelRefund()
	// sessions do not survive a restart
	if refunded := b.casino.Sessions().ExpireAll(refundCtx); len(refunded) > 0 {
		log.Infof("Refunded %d in-flight game sessions", len(refunded))
	}

	if b.debugServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.debugServer.Shutdown(ctx); err != nil {
			log.Warnf("Error shutting down debug API: %v", err)
		}
	}

	return b.closeSession()
}

// handleCommands routes slash commands to appropriate handlers
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	defer recoverHandler(s, i)

	switch i.ApplicationCommandData().Name {
	case "balance", "daily", "deposit", "withdraw", "transfer", "richest", "mystats":
		b.economyFeature.HandleCommand(s, i)
	case "coinflip", "dice", "blackjack", "cancelgame", "casino":
		b.casinoFeature.HandleCommand(s, i)
	case "shop", "items", "iteminfo", "buy", "inventory", "additem", "removeitem", "shopconfig":
		b.shopFeature.HandleCommand(s, i)
	}
}

// handleInteractions routes component and autocomplete interactions to
// appropriate features
func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		defer recoverHandler(s, i)
		b.routeComponentInteraction(s, i, i.MessageComponentData().CustomID)
	case discordgo.InteractionApplicationCommandAutocomplete:
		defer recoverHandler(s, i)
		b.routeAutocomplete(s, i)
	}
}

// routeAutocomplete routes option suggestions
func (b *Bot) routeAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "buy", "iteminfo", "removeitem":
		b.shopFeature.HandleAutocomplete(s, i)
	}
}

// routeComponentInteraction routes button interactions
func (b *Bot) routeComponentInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	switch {
	case strings.HasPrefix(customID, casino.CustomIDPrefix):
		b.casinoFeature.HandleInteraction(s, i)
	case strings.HasPrefix(customID, shop.CustomIDPrefix):
		b.shopFeature.HandleInteraction(s, i)
	default:
		log.WithField("customID", customID).Debug("Unrouted component interaction")
	}
}

// recoverHandler keeps a panicking handler from taking the gateway down
func recoverHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if r := recover(); r != nil {
		log.WithFields(log.Fields{
			"interaction": common.InteractionName(i),
			"user":        common.InteractionUserID(i),
			"panic":       r,
		}).Errorf("Recovered from panic in interaction handler\n%s", debug.Stack())
		common.RespondWithError(s, i, "Something went wrong. Please try again later.")
	}
}
