package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"guildgreeter/domain/entities"
	"guildgreeter/domain/games"
	"guildgreeter/domain/interfaces"
	"guildgreeter/domain/services"
	"guildgreeter/domain/sessions"
)

// ErrSelfChallenge is returned when a player challenges themselves
var ErrSelfChallenge = errors.New("cannot challenge yourself")

// ChallengeClosedError reports a challenge that ended while it was being
// accepted. Every stake it held was refunded.
type ChallengeClosedError struct {
	Session *entities.GameSession
	Err     error
}

func (e *ChallengeClosedError) Error() string {
	return fmt.Sprintf("challenge %s closed: %v", e.Session.ID, e.Err)
}

func (e *ChallengeClosedError) Unwrap() error {
	return e.Err
}

// ExpiryNotifier is told about sessions that timed out after their stakes
// were refunded
type ExpiryNotifier func(ctx context.Context, session *entities.GameSession)

// Casino drives the casino games: it opens stakes through the escrow, keeps
// multi-step games in the session manager and settles outcomes.
type Casino struct {
	escrow   *Escrow
	sessions *sessions.Manager
	random   interfaces.RandomSource
	settings Settings
	notify   ExpiryNotifier
}

// NewCasino creates the casino and registers it as the expiry handler of
// the session manager
func NewCasino(escrow *Escrow, manager *sessions.Manager, random interfaces.RandomSource, settings Settings) *Casino {
	c := &Casino{
		escrow:   escrow,
		sessions: manager,
		random:   random,
		settings: settings,
	}
	manager.OnExpire(c.HandleExpired)
	return c
}

// SetExpiryNotifier registers a callback run after an expired session was refunded
func (c *Casino) SetExpiryNotifier(notify ExpiryNotifier) {
	c.notify = notify
}

// Sessions returns the session manager
func (c *Casino) Sessions() *sessions.Manager {
	return c.sessions
}

// Settings returns the timeouts the casino runs with
func (c *Casino) Settings() Settings {
	return c.settings
}

// CoinflipResult is a resolved solo flip
type CoinflipResult struct {
	Choice     games.Side
	Drawn      games.Side
	Outcome    games.Outcome
	Settlement *services.Settlement
}

// CoinflipSolo flips a coin against the house
func (c *Casino) CoinflipSolo(ctx context.Context, guildID, playerID, bet int64, choice games.Side) (*CoinflipResult, error) {
	stake, err := c.escrow.Open(ctx, guildID, playerID, entities.GameCoinflip, bet)
	if err != nil {
		return nil, err
	}
	defer stake.Release(ctx)

	drawn := games.FlipCoin(c.random)
	outcome := games.ResolveCoinflipSolo(bet, choice, drawn)

	settlement, err := c.escrow.Settle(ctx, guildID, []*Stake{stake}, outcome)
	if err != nil {
		return nil, err
	}
	return &CoinflipResult{Choice: choice, Drawn: drawn, Outcome: outcome, Settlement: settlement}, nil
}

// StartDiceSolo escrows the bet and waits for the player's roll
func (c *Casino) StartDiceSolo(ctx context.Context, guildID, playerID, bet int64) (*entities.GameSession, error) {
	session := entities.NewGameSession(entities.GameDice, guildID, []int64{playerID}, c.sessions.Now(), c.settings.SoloTimeout)
	return c.startSession(ctx, session, playerID, bet)
}

func (c *Casino) startSession(ctx context.Context, session *entities.GameSession, playerID, bet int64) (*entities.GameSession, error) {
	if c.sessions.Exists(session.ID) {
		return nil, entities.ErrSessionExists
	}

	stake, err := c.escrow.Open(ctx, session.GuildID, playerID, session.Game, bet)
	if err != nil {
		return nil, err
	}
	defer stake.Release(ctx)

	session.Wagers[playerID] = stake.Wager()
	snapshot := session.Snapshot()
	if err := c.sessions.Insert(session); err != nil {
		return nil, err
	}
	stake.Keep()
	return snapshot, nil
}

// Challenge escrows the challenger's bet and proposes a game to opponent.
// choice is only used by coin flips.
func (c *Casino) Challenge(ctx context.Context, guildID int64, game entities.GameType, challengerID, opponentID, bet int64, choice games.Side) (*entities.GameSession, error) {
	if challengerID == opponentID {
		return nil, ErrSelfChallenge
	}
	if bet <= 0 {
		return nil, entities.ErrInvalidStake
	}
	if game != entities.GameCoinflip && game != entities.GameDice {
		return nil, fmt.Errorf("%s cannot be played as a challenge", game)
	}

	now := c.sessions.Now()
	session := entities.NewGameSession(game, guildID, []int64{challengerID, opponentID}, now, c.settings.ChallengeTimeout)
	session.Challenge = &entities.Challenge{
		Game:             game,
		ChallengerID:     challengerID,
		OpponentID:       opponentID,
		Bet:              bet,
		ChallengerChoice: choice,
		CreatedAt:        now,
		Status:           entities.ChallengePending,
	}
	return c.startSession(ctx, session, challengerID, bet)
}

// AcceptResult is the state after an accepted challenge. A coin flip is
// settled immediately; a dice challenge becomes a duel awaiting both rolls.
type AcceptResult struct {
	Session    *entities.GameSession
	Drawn      games.Side
	Outcome    *games.Outcome
	Settlement *services.Settlement
}

// Accept escrows the opponent's bet and starts the game. choice is the
// opponent's own call in a coin flip and is ignored by dice. When the
// opponent cannot cover the bet the challenge is rejected and the challenger
// refunded.
func (c *Casino) Accept(ctx context.Context, guildID int64, sessionID string, opponentID int64, choice games.Side) (*AcceptResult, error) {
	session, err := c.sessions.TakeIf(sessionID, func(s *entities.GameSession) error {
		if s.GuildID != guildID {
			return entities.ErrSessionNotFound
		}
		if !s.IsPending() {
			return entities.ErrWrongPhase
		}
		if s.Challenge.OpponentID != opponentID {
			return entities.ErrNotParticipant
		}
		if s.Game == entities.GameCoinflip && !choice.Valid() {
			return games.ErrInvalidSide
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	challenge := session.Challenge
	challengerStake := c.escrow.Adopt(guildID, session.Wagers[challenge.ChallengerID])[0]
	defer challengerStake.Release(ctx)

	opponentStake, err := c.escrow.Open(ctx, guildID, opponentID, challenge.Game, challenge.Bet)
	if err != nil {
		challenge.Status = entities.ChallengeRejected
		log.WithFields(log.Fields{
			"sessionID": session.ID,
			"opponent":  opponentID,
		}).WithError(err).Info("Challenge rejected, opponent stake could not be escrowed")
		return nil, &ChallengeClosedError{Session: session, Err: err}
	}
	defer opponentStake.Release(ctx)

	challenge.Status = entities.ChallengeAccepted
	session.Wagers[opponentID] = opponentStake.Wager()
	stakes := []*Stake{challengerStake, opponentStake}

	if challenge.Game == entities.GameCoinflip {
		challenge.OpponentChoice = choice
		drawn := games.FlipCoin(c.random)
		outcome := games.ResolveCoinflipPvP(challenge.Bet, challenge.ChallengerChoice, choice, drawn)
		settlement, err := c.escrow.Settle(ctx, guildID, stakes, outcome)
		if err != nil {
			challenge.Status = entities.ChallengeRejected
			return nil, &ChallengeClosedError{Session: session, Err: err}
		}
		session.Status = entities.SessionResolved
		session.Wagers[challenge.ChallengerID] = settlement.Wagers[0]
		session.Wagers[opponentID] = settlement.Wagers[1]
		return &AcceptResult{Session: session, Drawn: drawn, Outcome: &outcome, Settlement: settlement}, nil
	}

	session.Extend(c.sessions.Now(), c.settings.DuelTimeout)
	snapshot := session.Snapshot()
	if err := c.sessions.Insert(session); err != nil {
		challenge.Status = entities.ChallengeRejected
		return nil, &ChallengeClosedError{Session: session, Err: err}
	}
	challengerStake.Keep()
	opponentStake.Keep()
	return &AcceptResult{Session: snapshot}, nil
}

// Decline cancels a pending challenge. Both the opponent and the challenger
// may decline it.
func (c *Casino) Decline(ctx context.Context, guildID int64, sessionID string, actorID int64) (*entities.GameSession, error) {
	session, err := c.sessions.TakeIf(sessionID, func(s *entities.GameSession) error {
		if s.GuildID != guildID {
			return entities.ErrSessionNotFound
		}
		if !s.IsPending() {
			return entities.ErrWrongPhase
		}
		if !s.IsParticipant(actorID) {
			return entities.ErrNotParticipant
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	session.Challenge.Status = entities.ChallengeRejected
	session.Status = entities.SessionResolved
	if err := c.escrow.RefundAll(ctx, guildID, session.HeldWagers()); err != nil {
		return nil, err
	}
	return session, nil
}

// RollResult is the state after a die was rolled. Done is set once every
// participant rolled and the game was settled.
type RollResult struct {
	Session    *entities.GameSession
	Roll       int
	HouseRoll  int
	Done       bool
	Outcome    *games.Outcome
	Settlement *services.Settlement
}

// Roll rolls the die of playerID in a dice session. A second roll by the
// same player or a roll by a non-participant changes nothing.
func (c *Casino) Roll(ctx context.Context, guildID int64, sessionID string, playerID int64) (*RollResult, error) {
	result := &RollResult{}
	finished, done, err := c.sessions.Mutate(sessionID, func(s *entities.GameSession, _ time.Time) (bool, error) {
		switch {
		case s.GuildID != guildID || s.Game != entities.GameDice:
			return false, entities.ErrSessionNotFound
		case !s.IsParticipant(playerID):
			return false, entities.ErrNotParticipant
		case s.IsPending():
			return false, entities.ErrWrongPhase
		case s.HasRolled(playerID):
			return false, entities.ErrAlreadyActed
		}

		roll := games.RollDie(c.random)
		if err := s.RecordRoll(playerID, roll); err != nil {
			return false, err
		}
		result.Roll = roll
		result.Session = s.Snapshot()
		return s.AllRolled(), nil
	})
	if err != nil {
		return nil, err
	}
	if !done {
		return result, nil
	}

	held := finished.HeldWagers()
	if len(held) == 0 {
		return nil, fmt.Errorf("session %s has no held wager", finished.ID)
	}
	bet := held[0].Amount

	var outcome games.Outcome
	if len(finished.Participants) == 1 {
		result.HouseRoll = games.RollDie(c.random)
		outcome, err = games.ResolveDiceSolo(bet, finished.Rolls[playerID], result.HouseRoll)
	} else {
		outcome, err = games.ResolveDiceDuel(bet, finished.Rolls[finished.Participants[0]], finished.Rolls[finished.Participants[1]])
	}
	if err != nil {
		c.refundAbandoned(ctx, finished, err)
		return nil, err
	}

	settlement, err := c.settle(ctx, finished, outcome)
	if err != nil {
		return nil, err
	}
	result.Session = finished.Snapshot()
	result.Done = true
	result.Outcome = &outcome
	result.Settlement = settlement
	return result, nil
}

// BlackjackResult is the state of a blackjack table after an action
type BlackjackResult struct {
	Session    *entities.GameSession
	Done       bool
	Outcome    *games.Outcome
	Settlement *services.Settlement
}

// StartBlackjack escrows the bet and deals a hand. A natural 21 is settled
// right away.
func (c *Casino) StartBlackjack(ctx context.Context, guildID, playerID, bet int64) (*BlackjackResult, error) {
	session := entities.NewGameSession(entities.GameBlackjack, guildID, []int64{playerID}, c.sessions.Now(), c.settings.ChallengeTimeout)
	if c.sessions.Exists(session.ID) {
		return nil, entities.ErrSessionExists
	}

	stake, err := c.escrow.Open(ctx, guildID, playerID, entities.GameBlackjack, bet)
	if err != nil {
		return nil, err
	}
	defer stake.Release(ctx)

	hand, err := games.DealBlackjack(games.ShuffledShoe(c.random), bet)
	if err != nil {
		return nil, err
	}
	session.Blackjack = hand
	session.Wagers[playerID] = stake.Wager()

	if hand.Finished {
		outcome, err := hand.Outcome()
		if err != nil {
			return nil, err
		}
		settlement, err := c.escrow.Settle(ctx, guildID, []*Stake{stake}, outcome)
		if err != nil {
			return nil, err
		}
		session.Status = entities.SessionResolved
		session.Wagers[playerID] = settlement.Wagers[0]
		return &BlackjackResult{Session: session, Done: true, Outcome: &outcome, Settlement: settlement}, nil
	}

	snapshot := session.Snapshot()
	if err := c.sessions.Insert(session); err != nil {
		return nil, err
	}
	stake.Keep()
	return &BlackjackResult{Session: snapshot}, nil
}

// Hit draws a card for the player of the table
func (c *Casino) Hit(ctx context.Context, guildID int64, sessionID string, playerID int64) (*BlackjackResult, error) {
	return c.playBlackjack(ctx, guildID, sessionID, playerID, (*games.BlackjackHand).Hit)
}

// Stand ends the player's turn and settles the table
func (c *Casino) Stand(ctx context.Context, guildID int64, sessionID string, playerID int64) (*BlackjackResult, error) {
	return c.playBlackjack(ctx, guildID, sessionID, playerID, (*games.BlackjackHand).Stand)
}

func (c *Casino) playBlackjack(ctx context.Context, guildID int64, sessionID string, playerID int64, action func(*games.BlackjackHand) error) (*BlackjackResult, error) {
	result := &BlackjackResult{}
	finished, done, err := c.sessions.Mutate(sessionID, func(s *entities.GameSession, now time.Time) (bool, error) {
		if s.GuildID != guildID || s.Blackjack == nil {
			return false, entities.ErrSessionNotFound
		}
		if !s.IsParticipant(playerID) {
			return false, entities.ErrNotParticipant
		}
		if err := action(s.Blackjack); err != nil {
			return false, err
		}
		if !s.Blackjack.Finished {
			s.Extend(now, c.settings.ChallengeTimeout)
		}
		result.Session = s.Snapshot()
		return s.Blackjack.Finished, nil
	})
	if err != nil {
		return nil, err
	}
	if !done {
		return result, nil
	}

	outcome, err := finished.Blackjack.Outcome()
	if err != nil {
		c.refundAbandoned(ctx, finished, err)
		return nil, err
	}
	settlement, err := c.settle(ctx, finished, outcome)
	if err != nil {
		return nil, err
	}
	result.Session = finished.Snapshot()
	result.Done = true
	result.Outcome = &outcome
	result.Settlement = settlement
	return result, nil
}

// settle resolves a finished session. Stakes that could not be settled are
// refunded.
func (c *Casino) settle(ctx context.Context, session *entities.GameSession, outcome games.Outcome) (*services.Settlement, error) {
	stakes := c.escrow.Adopt(session.GuildID, session.HeldWagers()...)
	settlement, err := c.escrow.Settle(ctx, session.GuildID, stakes, outcome)
	if err != nil {
		c.refundAbandoned(ctx, session, err)
		return nil, err
	}
	for _, w := range settlement.Wagers {
		session.Wagers[w.DiscordID] = w
	}
	return settlement, nil
}

func (c *Casino) refundAbandoned(ctx context.Context, session *entities.GameSession, cause error) {
	log.WithFields(log.Fields{
		"sessionID": session.ID,
		"guildID":   session.GuildID,
	}).WithError(cause).Error("Failed to settle game session, refunding stakes")

	ctx = context.WithoutCancel(ctx)
	if err := c.escrow.RefundAll(ctx, session.GuildID, session.HeldWagers()); err != nil {
		log.WithField("sessionID", session.ID).WithError(err).Error("Failed to refund stakes of abandoned session")
	}
}

// CancelGames refunds and removes every game of playerID in the guild. It
// returns the cancelled sessions.
func (c *Casino) CancelGames(ctx context.Context, guildID, playerID int64) ([]*entities.GameSession, error) {
	cancelled := c.sessions.TakeAllFor(guildID, playerID)

	var errs []error
	for _, session := range cancelled {
		if session.Challenge != nil && session.Challenge.Status == entities.ChallengePending {
			session.Challenge.Status = entities.ChallengeRejected
		}
		session.Status = entities.SessionResolved
		if err := c.escrow.RefundAll(ctx, guildID, session.HeldWagers()); err != nil {
			errs = append(errs, err)
		}
	}

	log.WithFields(log.Fields{
		"userID":    playerID,
		"guildID":   guildID,
		"cancelled": len(cancelled),
	}).Info("Cancelled game sessions")

	return cancelled, errors.Join(errs...)
}

// HandleExpired refunds the stakes of a session that timed out
func (c *Casino) HandleExpired(ctx context.Context, session *entities.GameSession) {
	if session.Challenge != nil && session.Challenge.Status == entities.ChallengePending {
		session.Challenge.Status = entities.ChallengeExpired
	}
	session.Status = entities.SessionResolved

	if err := c.escrow.RefundAll(ctx, session.GuildID, session.HeldWagers()); err != nil {
		log.WithFields(log.Fields{
			"sessionID": session.ID,
			"guildID":   session.GuildID,
		}).WithError(err).Error("Failed to refund expired session")
	}

	if c.notify != nil {
		c.notify(ctx, session)
	}
}

// Locate records where the session is displayed
func (c *Casino) Locate(sessionID, channelID, messageID string) {
	_, _, err := c.sessions.Mutate(sessionID, func(s *entities.GameSession, _ time.Time) (bool, error) {
		s.ChannelID = channelID
		s.MessageID = messageID
		return false, nil
	})
	if err != nil && !errors.Is(err, entities.ErrSessionNotFound) {
		log.WithField("sessionID", sessionID).WithError(err).Warn("Failed to record session message")
	}
}
