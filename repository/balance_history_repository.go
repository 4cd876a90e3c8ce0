package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"guildgreeter/database"
	"guildgreeter/domain/entities"
)

// BalanceHistoryRepository implements the BalanceHistoryRepository interface
type BalanceHistoryRepository struct {
	q       Queryable
	guildID int64
}

// NewBalanceHistoryRepository creates a balance history repository on the pool
func NewBalanceHistoryRepository(db *database.DB, guildID int64) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{q: db.Pool, guildID: guildID}
}

// newBalanceHistoryRepository creates a balance history repository with a transaction and guild scope
func newBalanceHistoryRepository(tx Queryable, guildID int64) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{
		q:       tx,
		guildID: guildID,
	}
}

// Record creates a new balance history entry
func (r *BalanceHistoryRepository) Record(ctx context.Context, history *entities.BalanceHistory) error {
	var metadataJSON []byte
	if history.TransactionMetadata != nil {
		var err error
		metadataJSON, err = json.Marshal(history.TransactionMetadata)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction metadata: %w", err)
		}
	}

	var relatedType *string
	if history.RelatedType != nil {
		s := string(*history.RelatedType)
		relatedType = &s
	}

	query := `
		INSERT INTO balance_history
		(discord_id, guild_id, balance_kind, balance_before, balance_after, change_amount,
		 transaction_type, transaction_metadata, related_id, related_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		history.DiscordID,
		r.guildID,
		string(history.BalanceKind),
		history.BalanceBefore,
		history.BalanceAfter,
		history.ChangeAmount,
		string(history.TransactionType),
		metadataJSON,
		history.RelatedID,
		relatedType,
	).Scan(&history.ID, &history.CreatedAt)
	if err != nil {
		return entities.NewPersistenceError(fmt.Sprintf("record balance history for user %d", history.DiscordID), err)
	}

	history.GuildID = r.guildID
	return nil
}

// GetByUser returns the latest balance history entries of a user
func (r *BalanceHistoryRepository) GetByUser(ctx context.Context, discordID int64, limit int) ([]*entities.BalanceHistory, error) {
	query := `
		SELECT id, discord_id, guild_id, balance_kind, balance_before, balance_after, change_amount,
		       transaction_type, transaction_metadata, related_id, related_type, created_at
		FROM balance_history
		WHERE discord_id = $1 AND guild_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`
	rows, err := r.q.Query(ctx, query, discordID, r.guildID, limit)
	if err != nil {
		return nil, entities.NewPersistenceError(fmt.Sprintf("get balance history for user %d", discordID), err)
	}
	defer rows.Close()

	histories := []*entities.BalanceHistory{}
	for rows.Next() {
		var history entities.BalanceHistory
		var kind, transactionType string
		var relatedType *string
		var metadataJSON []byte

		err := rows.Scan(
			&history.ID,
			&history.DiscordID,
			&history.GuildID,
			&kind,
			&history.BalanceBefore,
			&history.BalanceAfter,
			&history.ChangeAmount,
			&transactionType,
			&metadataJSON,
			&history.RelatedID,
			&relatedType,
			&history.CreatedAt,
		)
		if err != nil {
			return nil, entities.NewPersistenceError("scan balance history", err)
		}

		history.BalanceKind = entities.BalanceKind(kind)
		history.TransactionType = entities.TransactionType(transactionType)
		if relatedType != nil {
			rt := entities.RelatedType(*relatedType)
			history.RelatedType = &rt
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &history.TransactionMetadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal transaction metadata: %w", err)
			}
		}

		histories = append(histories, &history)
	}
	if err := rows.Err(); err != nil {
		return nil, entities.NewPersistenceError("iterate balance history", err)
	}
	return histories, nil
}
