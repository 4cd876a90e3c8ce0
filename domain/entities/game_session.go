package entities

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"guildgreeter/domain/games"
)

// ChallengeStatus tracks a proposed two-player wager
type ChallengeStatus string

const (
	ChallengePending  ChallengeStatus = "pending"
	ChallengeAccepted ChallengeStatus = "accepted"
	ChallengeRejected ChallengeStatus = "rejected"
	ChallengeExpired  ChallengeStatus = "expired"
)

// Challenge is a wager proposed by one player to another. Only the
// challenger's stake is escrowed while it is pending.
type Challenge struct {
	Game             GameType
	ChallengerID     int64
	OpponentID       int64
	Bet              int64
	ChallengerChoice games.Side
	OpponentChoice   games.Side
	CreatedAt        time.Time
	Status           ChallengeStatus
}

// SessionStatus tracks a game owned by the session manager
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionResolved   SessionStatus = "resolved"
)

// GameSession is an in-flight game: a pending challenge, a solo table or a
// duel. Participants are ordered by seat.
type GameSession struct {
	ID           string
	Game         GameType
	GuildID      int64
	Participants []int64
	Wagers       map[int64]*Wager
	Status       SessionStatus
	CreatedAt    time.Time
	ExpiresAt    time.Time

	// Challenge is set while the session awaits the opponent's answer
	Challenge *Challenge
	// Blackjack is the hand of a blackjack table
	Blackjack *games.BlackjackHand
	// Rolls holds the dice submitted so far, by participant
	Rolls map[int64]int

	// ChannelID and MessageID locate the message showing the game, so that
	// expiry can be reported where the game was played.
	ChannelID string
	MessageID string
}

// SessionKey builds the composite identifier of a session
func SessionKey(game GameType, guildID int64, participants ...int64) string {
	parts := make([]string, 0, len(participants)+2)
	parts = append(parts, string(game), fmt.Sprint(guildID))
	for _, p := range participants {
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, ":")
}

// NewGameSession builds an in-progress session keyed by its game, guild and
// participants
func NewGameSession(game GameType, guildID int64, participants []int64, now time.Time, timeout time.Duration) *GameSession {
	return &GameSession{
		ID:           SessionKey(game, guildID, participants...),
		Game:         game,
		GuildID:      guildID,
		Participants: append([]int64(nil), participants...),
		Wagers:       make(map[int64]*Wager),
		Status:       SessionInProgress,
		CreatedAt:    now,
		ExpiresAt:    now.Add(timeout),
	}
}

// IsParticipant reports whether discordID plays in this session
func (s *GameSession) IsParticipant(discordID int64) bool {
	return slices.Contains(s.Participants, discordID)
}

// SeatOf returns the seat of discordID
func (s *GameSession) SeatOf(discordID int64) (games.Seat, bool) {
	idx := slices.Index(s.Participants, discordID)
	if idx < 0 {
		return 0, false
	}
	return games.Seat(idx), true
}

// PlayerAt returns the participant sitting at seat
func (s *GameSession) PlayerAt(seat games.Seat) (int64, bool) {
	if seat < 0 || int(seat) >= len(s.Participants) {
		return 0, false
	}
	return s.Participants[seat], true
}

// IsPending reports whether the session is a challenge awaiting an answer
func (s *GameSession) IsPending() bool {
	return s.Challenge != nil && s.Challenge.Status == ChallengePending
}

// IsExpired reports whether the session deadline has passed
func (s *GameSession) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Extend pushes the deadline to now + timeout
func (s *GameSession) Extend(now time.Time, timeout time.Duration) {
	s.ExpiresAt = now.Add(timeout)
}

// HeldWagers returns the wagers still awaiting resolution, in seat order
func (s *GameSession) HeldWagers() []*Wager {
	held := make([]*Wager, 0, len(s.Wagers))
	for _, p := range s.Participants {
		if w, ok := s.Wagers[p]; ok && w.IsHeld() {
			held = append(held, w)
		}
	}
	return held
}

// RecordRoll stores the die of a participant. A non-participant or a second
// roll by the same participant is rejected without changing the session.
func (s *GameSession) RecordRoll(discordID int64, roll int) error {
	if !s.IsParticipant(discordID) {
		return ErrNotParticipant
	}
	if s.IsPending() {
		return ErrWrongPhase
	}
	if _, done := s.Rolls[discordID]; done {
		return ErrAlreadyActed
	}
	if err := games.ValidateDie(roll); err != nil {
		return err
	}
	if s.Rolls == nil {
		s.Rolls = make(map[int64]int)
	}
	s.Rolls[discordID] = roll
	return nil
}

// HasRolled reports whether discordID already submitted a die
func (s *GameSession) HasRolled(discordID int64) bool {
	_, ok := s.Rolls[discordID]
	return ok
}

// AllRolled reports whether every participant submitted a die
func (s *GameSession) AllRolled() bool {
	for _, p := range s.Participants {
		if !s.HasRolled(p) {
			return false
		}
	}
	return true
}

// Snapshot returns a copy that stays valid after the session changes
func (s *GameSession) Snapshot() *GameSession {
	c := *s
	c.Participants = slices.Clone(s.Participants)
	c.Wagers = make(map[int64]*Wager, len(s.Wagers))
	for id, w := range s.Wagers {
		copied := *w
		c.Wagers[id] = &copied
	}
	if s.Rolls != nil {
		c.Rolls = make(map[int64]int, len(s.Rolls))
		for id, r := range s.Rolls {
			c.Rolls[id] = r
		}
	}
	if s.Challenge != nil {
		challenge := *s.Challenge
		c.Challenge = &challenge
	}
	if s.Blackjack != nil {
		c.Blackjack = s.Blackjack.Clone()
	}
	return &c
}
