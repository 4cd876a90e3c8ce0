package infrastructure

import (
	"context"
	"sync"

	"guildgreeter/domain/events"
)

// MockEventPublisher records published events
type MockEventPublisher struct {
	PublishedEvents []events.Event
	PublishError    error
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, event)
	return nil
}

type publishedMessage struct {
	subject string
	data    []byte
}

// fakeMessagePublisher stands in for a JetStream connection
type fakeMessagePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (f *fakeMessagePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, publishedMessage{subject: subject, data: data})
	return nil
}

type countingRecorder struct {
	counts map[string]int
}

func (c *countingRecorder) RecordNATSMessagePublished(eventType string) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[eventType]++
}
