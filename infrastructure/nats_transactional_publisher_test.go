package infrastructure

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildgreeter/domain/entities"
	"guildgreeter/domain/events"
)

func TestNATSTransactionalPublisher_FlushPublishesInOrder(t *testing.T) {
	mockPublisher := &MockEventPublisher{}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	first := events.AccountCreatedEvent{UserID: 1, GuildID: 10, InitialBalance: 100}
	second := events.BalanceChangeEvent{UserID: 1, GuildID: 10, OldBalance: 100, NewBalance: 60, ChangeAmount: -40}

	require.NoError(t, transPublisher.Publish(first))
	require.NoError(t, transPublisher.Publish(second))

	// nothing leaves before the flush
	assert.Empty(t, mockPublisher.PublishedEvents)

	require.NoError(t, transPublisher.Flush(context.Background()))
	assert.Equal(t, []events.Event{first, second}, mockPublisher.PublishedEvents)

	// a second flush has nothing left to send
	require.NoError(t, transPublisher.Flush(context.Background()))
	assert.Len(t, mockPublisher.PublishedEvents, 2)
}

func TestNATSTransactionalPublisher_Discard(t *testing.T) {
	mockPublisher := &MockEventPublisher{}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	require.NoError(t, transPublisher.Publish(events.WagerResolvedEvent{WagerID: 7, State: entities.WagerStateRefunded}))
	transPublisher.Discard()

	require.NoError(t, transPublisher.Flush(context.Background()))
	assert.Empty(t, mockPublisher.PublishedEvents)
}

func TestNATSTransactionalPublisher_FlushSurvivesPublishErrors(t *testing.T) {
	mockPublisher := &MockEventPublisher{PublishError: errors.New("nats down")}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	require.NoError(t, transPublisher.Publish(events.AccountCreatedEvent{UserID: 1}))
	assert.NoError(t, transPublisher.Flush(context.Background()))
}

func TestLocalEventPublisher_HandlersThenForward(t *testing.T) {
	next := &MockEventPublisher{}
	local := NewLocalEventPublisher(next)

	var handled []events.EventType
	local.RegisterLocalHandler(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) error {
		handled = append(handled, event.Type())
		return nil
	})
	local.RegisterLocalHandler(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) error {
		return errors.New("handler failure")
	})
	local.RegisterLocalHandler(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) error {
		panic("boom")
	})

	event := events.BalanceChangeEvent{UserID: 3}
	require.NoError(t, local.Publish(event))
	require.NoError(t, local.Publish(events.AccountCreatedEvent{UserID: 3}))

	assert.Equal(t, []events.EventType{events.EventTypeBalanceChange}, handled)
	assert.Len(t, next.PublishedEvents, 2)
	assert.Equal(t, event, next.PublishedEvents[0])
}

func TestLocalEventPublisher_WithoutNext(t *testing.T) {
	local := NewLocalEventPublisher(nil)
	assert.NoError(t, local.Publish(events.AccountCreatedEvent{UserID: 1}))
	assert.NoError(t, NewNoopEventPublisher().Publish(events.AccountCreatedEvent{UserID: 1}))
}
