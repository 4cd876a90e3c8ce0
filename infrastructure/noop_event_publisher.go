package infrastructure

import (
	"guildgreeter/domain/events"
)

// NoopEventPublisher drops every event. It stands in for NATS when no
// servers are configured.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish does nothing with the event
func (n *NoopEventPublisher) Publish(event events.Event) error {
	return nil
}
