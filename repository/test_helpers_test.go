package repository

import (
	"context"
	"sync"
	"time"

	"guildgreeter/application"
	"guildgreeter/database"
	"guildgreeter/domain/events"
)

const (
	testGuildID = int64(555555555)
	otherGuild  = int64(777777777)
	testUser1ID = int64(100)
	testUser2ID = int64(200)
	testUser3ID = int64(300)
)

var testSettings = application.Settings{
	StartingBalance:  100,
	DailyCooldown:    24 * time.Hour,
	ChallengeTimeout: time.Minute,
	DuelTimeout:      2 * time.Minute,
	SoloTimeout:      30 * time.Second,
}

// queuedPublisher holds events until Flush, like the NATS transactional
// publisher, and remembers what reached the bus
type queuedPublisher struct {
	mu        sync.Mutex
	pending   []events.Event
	flushed   []events.Event
	discarded int
}

func (p *queuedPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, event)
	return nil
}

func (p *queuedPublisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.flushed = append(p.flushed, p.pending...)
	p.pending = nil
	return nil
}

func (p *queuedPublisher) Discard() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.discarded += len(p.pending)
	p.pending = nil
}

func (p *queuedPublisher) Flushed() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.flushed...)
}

// testUnitOfWorkFactory gives every unit of work its own queue feeding one
// shared bus
type testUnitOfWorkFactory struct {
	factory *UnitOfWorkFactory
	bus     *queuedPublisher
}

func newTestUnitOfWorkFactory(db *database.DB) *testUnitOfWorkFactory {
	return &testUnitOfWorkFactory{factory: NewUnitOfWorkFactory(db), bus: &queuedPublisher{}}
}

func (f *testUnitOfWorkFactory) CreateForGuild(guildID int64) application.UnitOfWork {
	return f.factory.CreateForGuildWithPublisher(guildID, &forwardingPublisher{bus: f.bus})
}

type forwardingPublisher struct {
	queuedPublisher
	bus *queuedPublisher
}

func (p *forwardingPublisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	for _, e := range pending {
		_ = p.bus.Publish(e)
	}
	return p.bus.Flush(ctx)
}
