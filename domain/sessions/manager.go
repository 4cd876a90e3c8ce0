// Package sessions owns the in-flight casino games of the process: pending
// challenges, blackjack tables and dice duels. Sessions live in memory only
// and are lost on restart.
package sessions

import (
	"context"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"guildgreeter/domain/entities"
)

// ExpiryHandler receives sessions removed by the sweep because their
// deadline passed. It is called outside the manager lock.
type ExpiryHandler func(ctx context.Context, session *entities.GameSession)

// Manager is a bounded, mutex-guarded table of game sessions keyed by their
// composite id. Every state transition runs under the lock, so two callbacks
// racing on one session observe each other's effects.
type Manager struct {
	mu          sync.Mutex
	sessions    map[string]*entities.GameSession
	maxSessions int
	now         func() time.Time
	onExpire    ExpiryHandler
}

// NewManager creates an empty manager holding at most maxSessions entries
func NewManager(maxSessions int) *Manager {
	return &Manager{
		sessions:    make(map[string]*entities.GameSession),
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

// SetClock replaces the time source used for expiry
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Now returns the manager's current time
func (m *Manager) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now()
}

// OnExpire registers the handler called for every expired session
func (m *Manager) OnExpire(handler ExpiryHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = handler
}

// Insert adds a session. It fails with ErrSessionExists if the key is taken
// and ErrCapacity if the table is full.
func (m *Manager) Insert(session *entities.GameSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[session.ID]; exists {
		return entities.ErrSessionExists
	}
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		return entities.ErrCapacity
	}
	m.sessions[session.ID] = session
	return nil
}

// Exists reports whether a session with this id is in flight
func (m *Manager) Exists(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	return ok
}

// MutateFunc is a state transition run under the manager lock. now is the
// manager's clock at the time of the call; the function must not call back
// into the manager.
type MutateFunc func(session *entities.GameSession, now time.Time) (done bool, err error)

// Mutate runs a state transition on the session under the lock. fn returns
// whether the game is finished; a finished session is removed and returned
// so that exactly one caller goes on to settle it. When fn fails it must
// leave the session unchanged.
func (m *Manager) Mutate(id string, fn MutateFunc) (*entities.GameSession, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, false, entities.ErrSessionNotFound
	}
	now := m.now()
	if session.IsExpired(now) {
		// the sweep owns it from here
		return nil, false, entities.ErrSessionNotFound
	}

	done, err := fn(session, now)
	if err != nil {
		return nil, false, err
	}
	if done {
		session.Status = entities.SessionResolved
		delete(m.sessions, id)
	}
	return session, done, nil
}

// TakeIf removes and returns the session when check accepts it. Only one of
// several concurrent callers can take a given session.
func (m *Manager) TakeIf(id string, check func(session *entities.GameSession) error) (*entities.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok || session.IsExpired(m.now()) {
		return nil, entities.ErrSessionNotFound
	}
	if check != nil {
		if err := check(session); err != nil {
			return nil, err
		}
	}
	delete(m.sessions, id)
	return session, nil
}

// TakeAllFor removes and returns every session of guildID in which
// discordID participates
func (m *Manager) TakeAllFor(guildID, discordID int64) []*entities.GameSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	var taken []*entities.GameSession
	for id, session := range m.sessions {
		if session.GuildID == guildID && session.IsParticipant(discordID) {
			taken = append(taken, session)
			delete(m.sessions, id)
		}
	}
	sortByCreation(taken)
	return taken
}

// Len returns the number of sessions in flight
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CountByGame returns the number of sessions in flight per game
func (m *Manager) CountByGame() map[entities.GameType]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[entities.GameType]int)
	for _, session := range m.sessions {
		counts[session.Game]++
	}
	return counts
}

// Sweep removes every expired session and passes it to the expiry handler.
// It returns the sessions it removed.
func (m *Manager) Sweep(ctx context.Context) []*entities.GameSession {
	return m.expire(ctx, false)
}

// ExpireAll removes every session regardless of its deadline and passes it
// to the expiry handler. Used on shutdown, as sessions do not survive a restart.
func (m *Manager) ExpireAll(ctx context.Context) []*entities.GameSession {
	return m.expire(ctx, true)
}

func (m *Manager) expire(ctx context.Context, all bool) []*entities.GameSession {
	m.mu.Lock()
	now := m.now()
	var expired []*entities.GameSession
	for id, session := range m.sessions {
		if all || session.IsExpired(now) {
			expired = append(expired, session)
			delete(m.sessions, id)
		}
	}
	handler := m.onExpire
	m.mu.Unlock()

	sortByCreation(expired)
	for _, session := range expired {
		log.WithFields(log.Fields{
			"sessionID": session.ID,
			"game":      session.Game,
			"guildID":   session.GuildID,
		}).Info("Game session expired")
		if handler != nil {
			handler(ctx, session)
		}
	}
	return expired
}

func sortByCreation(list []*entities.GameSession) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}
