package services

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"guildgreeter/domain/entities"
	"guildgreeter/domain/events"
	"guildgreeter/domain/games"
	"guildgreeter/domain/interfaces"
)

// EscrowService holds casino stakes between the moment they are committed
// and the moment the game is decided. Every wager it opens ends exactly once
// in paid or refunded.
type EscrowService struct {
	ledger         *LedgerService
	wagerRepo      interfaces.WagerRepository
	eventPublisher interfaces.EventPublisher
}

// NewEscrowService creates an escrow on top of ledger
func NewEscrowService(ledger *LedgerService, wagerRepo interfaces.WagerRepository, eventPublisher interfaces.EventPublisher) *EscrowService {
	return &EscrowService{
		ledger:         ledger,
		wagerRepo:      wagerRepo,
		eventPublisher: eventPublisher,
	}
}

// OpenWager debits amount from the player's wallet and holds it
func (s *EscrowService) OpenWager(ctx context.Context, playerID int64, game entities.GameType, amount int64) (*entities.Wager, error) {
	if amount <= 0 {
		return nil, entities.ErrInvalidStake
	}

	account, err := s.ledger.Debit(ctx, playerID, Change{
		Kind:     entities.BalanceWallet,
		Amount:   amount,
		Type:     entities.TransactionTypeWagerStake,
		Metadata: map[string]any{"game": string(game)},
	})
	if err != nil {
		return nil, err
	}

	wager, err := entities.NewWager(playerID, account.GuildID, game, amount)
	if err != nil {
		return nil, err
	}
	if err := s.wagerRepo.Create(ctx, wager); err != nil {
		return nil, fmt.Errorf("failed to create wager: %w", err)
	}

	log.WithFields(log.Fields{
		"wagerID": wager.ID,
		"userID":  playerID,
		"guildID": wager.GuildID,
		"game":    game,
		"amount":  amount,
	}).Debug("Wager opened")

	return wager, nil
}

// loadHeld fetches a wager that must still be held
func (s *EscrowService) loadHeld(ctx context.Context, wagerID int64) (*entities.Wager, error) {
	wager, err := s.wagerRepo.GetByID(ctx, wagerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}
	if wager == nil {
		return nil, fmt.Errorf("wager %d: %w", wagerID, entities.ErrWagerNotFound)
	}
	if !wager.IsHeld() {
		return nil, s.alreadyResolved(wager)
	}
	return wager, nil
}

func (s *EscrowService) alreadyResolved(wager *entities.Wager) error {
	log.WithFields(log.Fields{
		"wagerID": wager.ID,
		"userID":  wager.DiscordID,
		"state":   wager.State,
	}).Error("Refusing to resolve a wager twice")
	return fmt.Errorf("wager %d is %s: %w", wager.ID, wager.State, entities.ErrAlreadyResolved)
}

// ResolvePaid credits payout to winner and marks the wager paid. The house
// (entities.HouseID) is recorded as winner with no credit.
func (s *EscrowService) ResolvePaid(ctx context.Context, wagerID, winnerID, payout int64) (*entities.Wager, error) {
	if payout < 0 {
		return nil, fmt.Errorf("payout cannot be negative: %d", payout)
	}

	wager, err := s.loadHeld(ctx, wagerID)
	if err != nil {
		return nil, err
	}

	ok, err := s.wagerRepo.MarkPaid(ctx, wager.ID, winnerID, payout)
	if err != nil {
		return nil, fmt.Errorf("failed to mark wager paid: %w", err)
	}
	if !ok {
		return nil, s.alreadyResolved(wager)
	}

	if winnerID != entities.HouseID && payout > 0 {
		relatedType := entities.RelatedTypeWager
		_, err := s.ledger.Credit(ctx, winnerID, Change{
			Kind:        entities.BalanceWallet,
			Amount:      payout,
			Type:        entities.TransactionTypeWagerPayout,
			Metadata:    map[string]any{"game": string(wager.Game), "stake_owner": wager.DiscordID},
			RelatedID:   &wager.ID,
			RelatedType: &relatedType,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := wager.MarkPaid(winnerID, payout, s.ledger.now()); err != nil {
		return nil, err
	}
	s.publishResolved(wager)
	return wager, nil
}

// ResolveRefunded returns the stake to its owner and marks the wager refunded
func (s *EscrowService) ResolveRefunded(ctx context.Context, wagerID int64) (*entities.Wager, error) {
	wager, err := s.loadHeld(ctx, wagerID)
	if err != nil {
		return nil, err
	}

	ok, err := s.wagerRepo.MarkRefunded(ctx, wager.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark wager refunded: %w", err)
	}
	if !ok {
		return nil, s.alreadyResolved(wager)
	}

	relatedType := entities.RelatedTypeWager
	_, err = s.ledger.Credit(ctx, wager.DiscordID, Change{
		Kind:        entities.BalanceWallet,
		Amount:      wager.Amount,
		Type:        entities.TransactionTypeWagerRefund,
		Metadata:    map[string]any{"game": string(wager.Game)},
		RelatedID:   &wager.ID,
		RelatedType: &relatedType,
	})
	if err != nil {
		return nil, err
	}

	if err := wager.MarkRefunded(s.ledger.now()); err != nil {
		return nil, err
	}
	s.publishResolved(wager)
	return wager, nil
}

func (s *EscrowService) publishResolved(wager *entities.Wager) {
	event := events.WagerResolvedEvent{
		WagerID:  wager.ID,
		GuildID:  wager.GuildID,
		PlayerID: wager.DiscordID,
		Game:     wager.Game,
		Amount:   wager.Amount,
		State:    wager.State,
	}
	if wager.WinnerDiscordID != nil {
		event.WinnerID = *wager.WinnerDiscordID
	}
	if wager.Payout != nil {
		event.Payout = *wager.Payout
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish wager resolved event")
	}
}

// Settlement describes how a game's wagers were resolved
type Settlement struct {
	Outcome games.Outcome
	// WinnerID is the winning player, or entities.HouseID
	WinnerID int64
	// Credits is the amount credited to each player by the settlement
	Credits map[int64]int64
	Wagers  []*entities.Wager
}

// Settle resolves the wagers of one game according to outcome. wagers are
// in seat order: wagers[i] belongs to the player sitting at seat i.
//
// On a push every stake is refunded. When the house wins every wager is paid
// to the house. When a player wins, their own wager carries the whole of
// outcome.Payout and the other wagers are marked paid to them with nothing
// credited, so per-player stats see the full pot on the winner's row.
func (s *EscrowService) Settle(ctx context.Context, wagers []*entities.Wager, outcome games.Outcome) (*Settlement, error) {
	if len(wagers) == 0 {
		return nil, errors.New("no wagers to settle")
	}

	settlement := &Settlement{
		Outcome:  outcome,
		WinnerID: entities.HouseID,
		Credits:  make(map[int64]int64, len(wagers)),
		Wagers:   make([]*entities.Wager, 0, len(wagers)),
	}

	switch {
	case outcome.Push:
		for _, w := range wagers {
			resolved, err := s.ResolveRefunded(ctx, w.ID)
			if err != nil {
				return nil, err
			}
			settlement.Credits[w.DiscordID] += w.Amount
			settlement.Wagers = append(settlement.Wagers, resolved)
		}

	case outcome.HouseWins():
		for _, w := range wagers {
			resolved, err := s.ResolvePaid(ctx, w.ID, entities.HouseID, 0)
			if err != nil {
				return nil, err
			}
			settlement.Wagers = append(settlement.Wagers, resolved)
		}

	default:
		if int(outcome.Winner) >= len(wagers) || outcome.Winner < 0 {
			return nil, fmt.Errorf("winning seat %d has no wager", outcome.Winner)
		}
		winner := wagers[outcome.Winner]
		settlement.WinnerID = winner.DiscordID

		var others int64
		for i, w := range wagers {
			if games.Seat(i) != outcome.Winner {
				others += w.Amount
			}
		}
		if outcome.Payout < others {
			return nil, fmt.Errorf("payout %d does not cover the losing stakes %d", outcome.Payout, others)
		}

		for i, w := range wagers {
			var payout int64
			if games.Seat(i) == outcome.Winner {
				payout = outcome.Payout
			}
			resolved, err := s.ResolvePaid(ctx, w.ID, winner.DiscordID, payout)
			if err != nil {
				return nil, err
			}
			settlement.Credits[winner.DiscordID] += payout
			settlement.Wagers = append(settlement.Wagers, resolved)
		}
	}

	return settlement, nil
}

// HeldWagers returns the wagers of a player still awaiting resolution
func (s *EscrowService) HeldWagers(ctx context.Context, playerID int64) ([]*entities.Wager, error) {
	wagers, err := s.wagerRepo.GetHeldByUser(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get held wagers: %w", err)
	}
	return wagers, nil
}

// Stats aggregates the resolved wagers of a player
func (s *EscrowService) Stats(ctx context.Context, playerID int64) (*entities.CasinoStats, error) {
	stats, err := s.wagerRepo.GetStats(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get casino stats: %w", err)
	}
	if stats == nil {
		stats = &entities.CasinoStats{}
	}
	return stats, nil
}
