package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"guildgreeter/domain/entities"
	"guildgreeter/domain/games"
	"guildgreeter/domain/interfaces"
	"guildgreeter/domain/services"
)

// releaseTimeout bounds the refund issued by Release, which may run after
// the caller's context is gone
const releaseTimeout = 10 * time.Second

// Escrow opens and resolves wagers, each operation in its own unit of work
type Escrow struct {
	uowFactory UnitOfWorkFactory
	random     interfaces.RandomSource
	settings   Settings
}

// NewEscrow creates the escrow handler
func NewEscrow(uowFactory UnitOfWorkFactory, random interfaces.RandomSource, settings Settings) *Escrow {
	return &Escrow{
		uowFactory: uowFactory,
		random:     random,
		settings:   settings,
	}
}

// Stake is the handle of an open wager. The code that opens a stake owns it
// until it resolves it or hands it to a session with Keep, and must defer
// Release so that an abandoned stake is refunded.
type Stake struct {
	escrow  *Escrow
	guildID int64

	mu       sync.Mutex
	wager    *entities.Wager
	resolved bool
	kept     bool
}

// Open debits amount from the player's wallet and holds it
func (e *Escrow) Open(ctx context.Context, guildID, playerID int64, game entities.GameType, amount int64) (*Stake, error) {
	var wager *entities.Wager
	err := runInUnitOfWork(ctx, e.uowFactory, guildID, func(uow UnitOfWork) error {
		var err error
		wager, err = newDomainServices(uow, e.random, e.settings).escrow.OpenWager(ctx, playerID, game, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Stake{escrow: e, guildID: guildID, wager: wager}, nil
}

// Adopt wraps wagers that are already held, such as the stakes stored in a
// session, into handles
func (e *Escrow) Adopt(guildID int64, wagers ...*entities.Wager) []*Stake {
	stakes := make([]*Stake, len(wagers))
	for i, w := range wagers {
		stakes[i] = &Stake{escrow: e, guildID: guildID, wager: w}
	}
	return stakes
}

// Wager returns the wager behind the handle
func (s *Stake) Wager() *entities.Wager {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wager
}

// PlayerID is the owner of the stake
func (s *Stake) PlayerID() int64 {
	return s.Wager().DiscordID
}

// Amount is the amount held
func (s *Stake) Amount() int64 {
	return s.Wager().Amount
}

// Keep hands the stake to a longer-lived owner; Release no longer refunds it
func (s *Stake) Keep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kept = true
}

// Pay resolves the stake to winner
func (s *Stake) Pay(ctx context.Context, winnerID, payout int64) error {
	return s.resolve(ctx, func(escrow *services.EscrowService, id int64) (*entities.Wager, error) {
		return escrow.ResolvePaid(ctx, id, winnerID, payout)
	})
}

// Refund returns the stake to its owner
func (s *Stake) Refund(ctx context.Context) error {
	return s.resolve(ctx, func(escrow *services.EscrowService, id int64) (*entities.Wager, error) {
		return escrow.ResolveRefunded(ctx, id)
	})
}

func (s *Stake) resolve(ctx context.Context, fn func(escrow *services.EscrowService, id int64) (*entities.Wager, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resolved {
		return fmt.Errorf("wager %d: %w", s.wager.ID, entities.ErrAlreadyResolved)
	}

	var resolved *entities.Wager
	err := runInUnitOfWork(ctx, s.escrow.uowFactory, s.guildID, func(uow UnitOfWork) error {
		var err error
		resolved, err = fn(newDomainServices(uow, s.escrow.random, s.escrow.settings).escrow, s.wager.ID)
		return err
	})
	if errors.Is(err, entities.ErrAlreadyResolved) {
		s.resolved = true
	}
	if err != nil {
		return err
	}
	s.wager = resolved
	s.resolved = true
	return nil
}

// Release refunds the stake unless it was resolved or kept. It is meant to
// be deferred and uses its own deadline so that a cancelled request still
// returns the money.
func (s *Stake) Release(ctx context.Context) {
	s.mu.Lock()
	skip := s.resolved || s.kept
	s.mu.Unlock()
	if skip {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := s.Refund(ctx); err != nil && !errors.Is(err, entities.ErrAlreadyResolved) {
		w := s.Wager()
		log.WithFields(log.Fields{
			"wagerID": w.ID,
			"userID":  w.DiscordID,
			"guildID": s.guildID,
			"amount":  w.Amount,
		}).WithError(err).Error("Failed to refund released stake, wager stays held")
	}
}

func (s *Stake) markResolved(w *entities.Wager) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wager = w
	s.resolved = true
}

// Settle resolves every stake of one game in a single unit of work. stakes
// are in seat order.
func (e *Escrow) Settle(ctx context.Context, guildID int64, stakes []*Stake, outcome games.Outcome) (*services.Settlement, error) {
	wagers := make([]*entities.Wager, len(stakes))
	for i, s := range stakes {
		wagers[i] = s.Wager()
	}

	var settlement *services.Settlement
	err := runInUnitOfWork(ctx, e.uowFactory, guildID, func(uow UnitOfWork) error {
		var err error
		settlement, err = newDomainServices(uow, e.random, e.settings).escrow.Settle(ctx, wagers, outcome)
		return err
	})
	if err != nil {
		return nil, err
	}

	for i, s := range stakes {
		s.markResolved(settlement.Wagers[i])
	}
	return settlement, nil
}

// RefundAll refunds every wager independently so that one failure does not
// block the others. Wagers resolved elsewhere in the meantime are skipped.
func (e *Escrow) RefundAll(ctx context.Context, guildID int64, wagers []*entities.Wager) error {
	var errs []error
	for _, stake := range e.Adopt(guildID, wagers...) {
		if err := stake.Refund(ctx); err != nil && !errors.Is(err, entities.ErrAlreadyResolved) {
			errs = append(errs, fmt.Errorf("refund wager %d: %w", stake.Wager().ID, err))
		}
	}
	return errors.Join(errs...)
}
