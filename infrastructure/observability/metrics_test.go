package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"guildgreeter/domain/entities"
	"guildgreeter/domain/events"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	found := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = m.Data
		}
	}
	return found
}

func sumFor(t *testing.T, data metricdata.Aggregation, key, value string) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected an int64 sum, got %T", data)
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			return dp.Value
		}
	}
	return 0
}

func TestMetricsProvider_HandleEvent(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp, err := NewMetricsProviderWithReader(reader)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, mp.HandleEvent(ctx, events.BalanceChangeEvent{TransactionType: entities.TransactionTypeTransferIn}))
	require.NoError(t, mp.HandleEvent(ctx, events.BalanceChangeEvent{TransactionType: entities.TransactionTypeTransferIn}))
	require.NoError(t, mp.HandleEvent(ctx, events.AccountCreatedEvent{UserID: 1}))
	require.NoError(t, mp.HandleEvent(ctx, events.WagerResolvedEvent{
		PlayerID: 1, Game: entities.GameDice, Amount: 40, State: entities.WagerStatePaid, WinnerID: 1, Payout: 80,
	}))
	require.NoError(t, mp.HandleEvent(ctx, events.WagerResolvedEvent{
		PlayerID: 2, Game: entities.GameDice, Amount: 40, State: entities.WagerStatePaid, WinnerID: 1,
	}))
	require.NoError(t, mp.HandleEvent(ctx, events.WagerResolvedEvent{
		PlayerID: 3, Game: entities.GameCoinflip, Amount: 25, State: entities.WagerStateRefunded,
	}))

	found := collect(t, reader)

	assert.Equal(t, int64(2), sumFor(t, found[BalanceTransactionsTotal], LabelType, string(entities.TransactionTypeTransferIn)))
	assert.Equal(t, int64(2), sumFor(t, found[BalanceTransactionsTotal], LabelCategory, "transfer"))
	created, ok := found[AccountsCreatedTotal].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, created.DataPoints, 1)
	assert.Equal(t, int64(1), created.DataPoints[0].Value)

	assert.Equal(t, int64(1), sumFor(t, found[WagersResolvedTotal], LabelOutcome, OutcomeWon))
	assert.Equal(t, int64(1), sumFor(t, found[WagersResolvedTotal], LabelOutcome, OutcomeLost))
	assert.Equal(t, int64(1), sumFor(t, found[WagersResolvedTotal], LabelOutcome, OutcomeRefunded))
	assert.Equal(t, int64(25), sumFor(t, found[WagerVolumeTotal], LabelGame, string(entities.GameCoinflip)))
}

func TestMetricsProvider_ObserveSessions(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp, err := NewMetricsProviderWithReader(reader)
	require.NoError(t, err)

	require.NoError(t, mp.ObserveSessions(func() map[entities.GameType]int {
		return map[entities.GameType]int{entities.GameBlackjack: 3, entities.GameDice: 1}
	}))

	found := collect(t, reader)
	gauge, ok := found[SessionsActive].(metricdata.Gauge[int64])
	require.True(t, ok)

	values := make(map[string]int64)
	for _, dp := range gauge.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key(LabelGame))
		values[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"blackjack": 3, "dice": 1}, values)
}

func TestMetricsProvider_DisabledIsNoop(t *testing.T) {
	var mp *MetricsProvider
	assert.NotPanics(t, func() {
		mp.RecordBalanceTransaction("daily")
		mp.RecordNATSMessagePublished("balance_change")
	})

	idle := &MetricsProvider{}
	assert.NotPanics(t, func() {
		_ = idle.HandleEvent(context.Background(), events.AccountCreatedEvent{})
	})
	assert.NoError(t, idle.ObserveSessions(func() map[entities.GameType]int { return nil }))
}
