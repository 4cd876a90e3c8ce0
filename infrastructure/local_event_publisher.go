package infrastructure

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"guildgreeter/domain/events"
	"guildgreeter/domain/interfaces"
)

// LocalHandler reacts to an event in the publishing process
type LocalHandler func(ctx context.Context, event events.Event) error

// LocalEventPublisher runs in-process handlers for every event and then
// forwards it to the next publisher (NATS, or a no-op when NATS is off)
type LocalEventPublisher struct {
	mu            sync.RWMutex
	localHandlers map[events.EventType][]LocalHandler
	next          interfaces.EventPublisher
}

// NewLocalEventPublisher creates a publisher forwarding to next
func NewLocalEventPublisher(next interfaces.EventPublisher) *LocalEventPublisher {
	return &LocalEventPublisher{
		localHandlers: make(map[events.EventType][]LocalHandler),
		next:          next,
	}
}

// RegisterLocalHandler registers a handler invoked for every event of eventType
func (p *LocalEventPublisher) RegisterLocalHandler(eventType events.EventType, handler LocalHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.localHandlers[eventType] = append(p.localHandlers[eventType], handler)
	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(p.localHandlers[eventType]),
	}).Info("Registered local event handler")
}

// Publish invokes the local handlers, then forwards the event. Handler
// failures and panics are logged and do not stop delivery.
func (p *LocalEventPublisher) Publish(event events.Event) error {
	ctx := context.Background()

	p.mu.RLock()
	handlers := p.localHandlers[event.Type()]
	p.mu.RUnlock()

	for _, handler := range handlers {
		if err := runLocalHandler(ctx, handler, event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Local event handler failed")
		}
	}

	if p.next == nil {
		return nil
	}
	return p.next.Publish(event)
}

func runLocalHandler(ctx context.Context, handler LocalHandler, event events.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler(ctx, event)
}
