package infrastructure

import (
	"fmt"

	"guildgreeter/domain/events"
)

// DomainEventStream is the JetStream stream holding every published domain event
const DomainEventStream = "guildgreeter_events"

const (
	SubjectBalanceChanged = "economy.balance.changed"
	SubjectAccountCreated = "economy.accounts.created"
	SubjectWagerResolved  = "casino.wagers.resolved"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeBalanceChange:
		return SubjectBalanceChanged
	case events.EventTypeAccountCreated:
		return SubjectAccountCreated
	case events.EventTypeWagerResolved:
		return SubjectWagerResolved
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case SubjectBalanceChanged:
		return events.EventTypeBalanceChange
	case SubjectAccountCreated:
		return events.EventTypeAccountCreated
	case SubjectWagerResolved:
		return events.EventTypeWagerResolved
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		SubjectBalanceChanged,
		SubjectAccountCreated,
		SubjectWagerResolved,
	}
}
