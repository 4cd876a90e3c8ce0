package interfaces

import (
	"context"

	"guildgreeter/domain/entities"
	"guildgreeter/domain/events"
)

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher queues events until the surrounding
// transaction commits
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes every queued event
	Flush(ctx context.Context) error

	// Discard drops every queued event
	Discard()
}

// RandomSource is the uniform random generator used by the casino and the
// daily reward. Tests substitute a scripted implementation.
type RandomSource interface {
	// IntN returns a uniform integer in [0, n)
	IntN(n int) int

	// Float64 returns a uniform float in [0.0, 1.0)
	Float64() float64

	// Shuffle pseudo-randomizes the order of n elements
	Shuffle(n int, swap func(i, j int))
}

// RoleGranter hands the Discord role of a shop item to a member
type RoleGranter interface {
	GrantRole(ctx context.Context, guildID, discordID int64, item entities.ShopItem) error
}
