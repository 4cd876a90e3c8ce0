package utils

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"guildgreeter/domain/entities"
	"guildgreeter/domain/events"
	"guildgreeter/domain/interfaces"
)

// RecordBalanceChange records a balance history entry and emits the matching
// events. Every balance mutation of the ledger goes through here.
func RecordBalanceChange(ctx context.Context, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher, history *entities.BalanceHistory) error {
	if err := history.ValidateTransaction(); err != nil {
		return fmt.Errorf("invalid balance change for user %d: %w", history.DiscordID, err)
	}

	if err := balanceHistoryRepo.Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	event := events.BalanceChangeEvent{
		UserID:          history.DiscordID,
		GuildID:         history.GuildID,
		BalanceKind:     history.BalanceKind,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		ChangeAmount:    history.ChangeAmount,
		TransactionType: history.TransactionType,
	}
	log.WithFields(log.Fields{
		"userID":          event.UserID,
		"guildID":         event.GuildID,
		"balanceKind":     event.BalanceKind,
		"oldBalance":      event.OldBalance,
		"newBalance":      event.NewBalance,
		"transactionType": event.TransactionType,
		"changeAmount":    event.ChangeAmount,
	}).Debug("Publishing BalanceChangeEvent")
	if err := eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	if history.TransactionType == entities.TransactionTypeInitial {
		created := events.AccountCreatedEvent{
			UserID:         history.DiscordID,
			GuildID:        history.GuildID,
			InitialBalance: history.BalanceAfter,
		}
		if err := eventPublisher.Publish(created); err != nil {
			log.WithError(err).Error("Failed to publish account created event")
		}
	}

	return nil
}
