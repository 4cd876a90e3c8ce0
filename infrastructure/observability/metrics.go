package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"guildgreeter/config"
	"guildgreeter/domain/entities"
	"guildgreeter/domain/events"
)

// SessionCounter reports the casino sessions in flight per game
type SessionCounter func() map[entities.GameType]int

// MetricsProvider manages OpenTelemetry metrics for the bot
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	enabled       bool
	mu            sync.RWMutex

	// Metric instruments
	balanceTransactionsCounter   metric.Int64Counter
	accountsCreatedCounter       metric.Int64Counter
	wagersResolvedCounter        metric.Int64Counter
	wagerVolumeCounter           metric.Int64Counter
	natsMessagesPublishedCounter metric.Int64Counter
	sessionsActiveGauge          metric.Int64ObservableGauge
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// NewMetricsProviderWithReader creates an initialized provider collecting
// into reader, without exporters or global registration
func NewMetricsProviderWithReader(reader sdkmetric.Reader) (*MetricsProvider, error) {
	mp := &MetricsProvider{
		meterProvider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}
	mp.meter = mp.meterProvider.Meter(MetricPrefix)
	if err := mp.createInstruments(); err != nil {
		return nil, fmt.Errorf("failed to create instruments: %w", err)
	}
	mp.initialized = true
	mp.enabled = true
	return mp, nil
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Info("Metrics provider already initialized")
		return nil
	}

	var (
		exporter sdkmetric.Exporter
		err      error
	)
	switch mp.config.MetricsExporter {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTLPEndpoint).Info("Using OTLP metric exporter")

	case "none", "":
		log.Info("Metrics export disabled")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.MetricsExporter)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(MetricPrefix),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(mp.config.MetricsInterval)),
		),
	)
	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter(MetricPrefix)

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.enabled = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.balanceTransactionsCounter, err = mp.meter.Int64Counter(
		BalanceTransactionsTotal,
		metric.WithDescription("Total number of balance transactions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create balance transactions counter: %w", err)
	}

	mp.accountsCreatedCounter, err = mp.meter.Int64Counter(
		AccountsCreatedTotal,
		metric.WithDescription("Total number of accounts opened"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create accounts created counter: %w", err)
	}

	mp.wagersResolvedCounter, err = mp.meter.Int64Counter(
		WagersResolvedTotal,
		metric.WithDescription("Total number of resolved wagers"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create wagers resolved counter: %w", err)
	}

	mp.wagerVolumeCounter, err = mp.meter.Int64Counter(
		WagerVolumeTotal,
		metric.WithDescription("Coins staked in resolved wagers"),
		metric.WithUnit("{coin}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create wager volume counter: %w", err)
	}

	mp.natsMessagesPublishedCounter, err = mp.meter.Int64Counter(
		NATSMessagesPublishedTotal,
		metric.WithDescription("Total number of NATS messages published"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create NATS messages published counter: %w", err)
	}

	mp.sessionsActiveGauge, err = mp.meter.Int64ObservableGauge(
		SessionsActive,
		metric.WithDescription("Current number of casino sessions in flight"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create sessions active gauge: %w", err)
	}

	return nil
}

// ObserveSessions reports counter on every collection of the sessions gauge
func (mp *MetricsProvider) ObserveSessions(counter SessionCounter) error {
	if !mp.isEnabled() {
		return nil
	}

	_, err := mp.meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		for game, count := range counter() {
			o.ObserveInt64(mp.sessionsActiveGauge, int64(count),
				metric.WithAttributes(attribute.String(LabelGame, string(game))),
			)
		}
		return nil
	}, mp.sessionsActiveGauge)
	if err != nil {
		return fmt.Errorf("failed to register sessions callback: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// HandleEvent records the metrics derived from a domain event
func (mp *MetricsProvider) HandleEvent(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.BalanceChangeEvent:
		mp.RecordBalanceTransaction(e.TransactionType)
	case events.AccountCreatedEvent:
		mp.RecordAccountCreated()
	case events.WagerResolvedEvent:
		mp.RecordWagerResolved(e)
	}
	return nil
}

// RecordBalanceTransaction records a balance transaction
func (mp *MetricsProvider) RecordBalanceTransaction(transactionType entities.TransactionType) {
	if !mp.isEnabled() {
		return
	}

	mp.balanceTransactionsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelType, string(transactionType)),
			attribute.String(LabelCategory, transactionType.Category()),
		),
	)
}

// RecordAccountCreated records a newly opened account
func (mp *MetricsProvider) RecordAccountCreated() {
	if !mp.isEnabled() {
		return
	}
	mp.accountsCreatedCounter.Add(context.Background(), 1)
}

// RecordWagerResolved records a wager reaching its terminal state
func (mp *MetricsProvider) RecordWagerResolved(e events.WagerResolvedEvent) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelGame, string(e.Game)),
		attribute.String(LabelOutcome, wagerOutcome(e)),
	)
	mp.wagersResolvedCounter.Add(context.Background(), 1, attrs)
	mp.wagerVolumeCounter.Add(context.Background(), e.Amount, attrs)
}

// RecordNATSMessagePublished records a NATS message being published
func (mp *MetricsProvider) RecordNATSMessagePublished(eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.natsMessagesPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelEventType, eventType),
		),
	)
}

func wagerOutcome(e events.WagerResolvedEvent) string {
	switch {
	case e.State == entities.WagerStateRefunded:
		return OutcomeRefunded
	case e.WinnerID == e.PlayerID:
		return OutcomeWon
	default:
		return OutcomeLost
	}
}

// isEnabled checks if metrics are enabled and initialized
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.enabled
}

// Global metrics provider instance
var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics != nil {
		return globalMetrics.Shutdown(ctx)
	}
	return nil
}
