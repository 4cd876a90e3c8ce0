package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"guildgreeter/application"
	"guildgreeter/bot"
	"guildgreeter/config"
	"guildgreeter/database"
	"guildgreeter/domain/events"
	"guildgreeter/domain/interfaces"
	"guildgreeter/domain/sessions"
	"guildgreeter/infrastructure"
	"guildgreeter/infrastructure/observability"
)

// ConfigureLogging applies the log level and format of cfg to logrus
func ConfigureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)
	log.Info("Starting guildgreeter bot...")

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL(), cfg.DatabaseMaxConns)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	log.Infof("Initializing metrics (exporter: %s)...", cfg.MetricsExporter)
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics := observability.GetMetrics()

	// Events flow: unit of work -> local handlers (metrics) -> NATS
	var remote interfaces.EventPublisher = infrastructure.NewNoopEventPublisher()
	var natsClient *infrastructure.NATSClient
	if cfg.NATSEnabled() {
		natsClient, err = connectNATS(ctx, cfg.NATSServers)
		if err != nil {
			return err
		}
		remote = infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper()).WithRecorder(metrics)
	} else {
		log.Info("NATS_SERVERS not set, domain events stay local")
	}

	localPublisher := infrastructure.NewLocalEventPublisher(remote)
	for _, eventType := range []events.EventType{
		events.EventTypeBalanceChange,
		events.EventTypeAccountCreated,
		events.EventTypeWagerResolved,
	} {
		localPublisher.RegisterLocalHandler(eventType, metrics.HandleEvent)
	}

	uowFactory := infrastructure.NewUnitOfWorkFactoryWrapper(db, localPublisher)
	random := infrastructure.NewRandomSource(cfg.RandomSeed)
	settings := application.SettingsFromConfig(cfg)

	manager := sessions.NewManager(cfg.MaxSessions)
	escrow := application.NewEscrow(uowFactory, random, settings)
	casino := application.NewCasino(escrow, manager, random, settings)
	economy := application.NewEconomy(uowFactory, random, settings)
	if err := metrics.ObserveSessions(manager.CountByGame); err != nil {
		log.WithError(err).Warn("Failed to register session gauge")
	}

	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{
		Token:         cfg.DiscordToken,
		GuildID:       cfg.GuildID,
		SweepInterval: cfg.SessionSweepInterval,
		DebugAPIAddr:  cfg.DebugAPIAddr,
	}, economy, casino)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Info("Discord bot initialized successfully")

	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down bot...")
	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.Errorf("Error closing NATS connection: %v", err)
		}
	}
	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.Errorf("Error shutting down metrics: %v", err)
	}

	log.Info("Shutdown completed")
	return nil
}

func connectNATS(ctx context.Context, servers string) (*infrastructure.NATSClient, error) {
	log.Infof("Connecting to NATS at %s...", servers)
	client := infrastructure.NewNATSClient(servers)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Connect(connectCtx); err != nil {
		return nil, err
	}

	mapper := infrastructure.NewEventSubjectMapper()
	if err := client.EnsureStream(infrastructure.DomainEventStream, mapper.GetAllSubjects()); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ensure event stream: %w", err)
	}
	log.Info("NATS connection established successfully")
	return client, nil
}
