package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"guildgreeter/database"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string `env:"DISCORD_TOKEN"`
	GuildID      string `env:"GUILD_ID"` // Register commands on a single guild when set

	// Database configuration
	DatabaseURL      string `env:"DATABASE_URL"`
	DatabaseName     string `env:"DATABASE_NAME"`
	DatabaseMaxConns int32  `env:"DB_MAX_CONNS" envDefault:"10"`

	// Economy configuration
	StartingBalance int64         `env:"STARTING_BALANCE" envDefault:"100"`
	DailyCooldown   time.Duration `env:"DAILY_COOLDOWN" envDefault:"24h"`

	// Casino session configuration
	ChallengeTimeout     time.Duration `env:"CHALLENGE_TIMEOUT" envDefault:"60s"`
	DuelTimeout          time.Duration `env:"DUEL_TIMEOUT" envDefault:"120s"`
	SoloGameTimeout      time.Duration `env:"SOLO_GAME_TIMEOUT" envDefault:"30s"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"5s"`
	MaxSessions          int           `env:"MAX_SESSIONS" envDefault:"1000"`
	RandomSeed           uint64        `env:"RANDOM_SEED"` // zero seeds from the clock

	// NATS configuration (comma-separated); empty disables event publishing
	NATSServers string `env:"NATS_SERVERS"`

	// Observability
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"text"`
	MetricsExporter string        `env:"METRICS_EXPORTER" envDefault:"none"` // console, otlp or none
	MetricsInterval time.Duration `env:"METRICS_EXPORT_INTERVAL" envDefault:"30s"`
	OTLPEndpoint    string        `env:"OTLP_ENDPOINT" envDefault:"localhost:4317"`
	DebugAPIAddr    string        `env:"DEBUG_API_ADDR"` // empty disables the debug API

	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, production or test
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
				instance.DiscordToken = "test-token"
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// NATSEnabled reports whether domain events should be published over NATS
func (c *Config) NATSEnabled() bool {
	return strings.TrimSpace(c.NATSServers) != ""
}

// load reads an optional .env file and then the process environment
func load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.StartingBalance < 0 {
		return fmt.Errorf("STARTING_BALANCE cannot be negative")
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("MAX_SESSIONS must be positive")
	}
	for name, d := range map[string]time.Duration{
		"DAILY_COOLDOWN":          c.DailyCooldown,
		"CHALLENGE_TIMEOUT":       c.ChallengeTimeout,
		"DUEL_TIMEOUT":            c.DuelTimeout,
		"SOLO_GAME_TIMEOUT":       c.SoloGameTimeout,
		"SESSION_SWEEP_INTERVAL":  c.SessionSweepInterval,
		"METRICS_EXPORT_INTERVAL": c.MetricsInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	if c.Environment == "test" {
		return nil
	}
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:          "test",
		StartingBalance:      100,
		DailyCooldown:        24 * time.Hour,
		ChallengeTimeout:     60 * time.Second,
		DuelTimeout:          120 * time.Second,
		SoloGameTimeout:      30 * time.Second,
		SessionSweepInterval: time.Second,
		MaxSessions:          100,
		LogLevel:             "debug",
		LogFormat:            "text",
		MetricsExporter:      "none",
		MetricsInterval:      30 * time.Second,
	}
}
