package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"guildgreeter/database"
	"guildgreeter/domain/entities"
)

const wagerColumns = `id, discord_id, guild_id, game, amount, state, winner_discord_id, payout, created_at, resolved_at`

// WagerRepository implements escrowed wager persistence
type WagerRepository struct {
	q       Queryable
	guildID int64
}

// NewWagerRepository creates a wager repository on the pool
func NewWagerRepository(db *database.DB, guildID int64) *WagerRepository {
	return &WagerRepository{q: db.Pool, guildID: guildID}
}

// newWagerRepository creates a wager repository with a transaction and guild scope
func newWagerRepository(tx Queryable, guildID int64) *WagerRepository {
	return &WagerRepository{
		q:       tx,
		guildID: guildID,
	}
}

func scanWager(row pgx.Row) (*entities.Wager, error) {
	var wager entities.Wager
	var game, state string
	err := row.Scan(
		&wager.ID,
		&wager.DiscordID,
		&wager.GuildID,
		&game,
		&wager.Amount,
		&state,
		&wager.WinnerDiscordID,
		&wager.Payout,
		&wager.CreatedAt,
		&wager.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	wager.Game = entities.GameType(game)
	wager.State = entities.WagerState(state)
	return &wager, nil
}

// Create inserts a held wager
func (r *WagerRepository) Create(ctx context.Context, wager *entities.Wager) error {
	query := `
		INSERT INTO wagers (discord_id, guild_id, game, amount, state)
		VALUES ($1, $2, $3, $4, 'held')
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		wager.DiscordID,
		r.guildID,
		string(wager.Game),
		wager.Amount,
	).Scan(&wager.ID, &wager.CreatedAt)
	if err != nil {
		return entities.NewPersistenceError(fmt.Sprintf("create wager for user %d", wager.DiscordID), err)
	}

	wager.GuildID = r.guildID
	wager.State = entities.WagerStateHeld
	return nil
}

// GetByID returns the wager or nil if it does not exist in this guild
func (r *WagerRepository) GetByID(ctx context.Context, id int64) (*entities.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE id = $1 AND guild_id = $2`

	wager, err := scanWager(r.q.QueryRow(ctx, query, id, r.guildID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, entities.NewPersistenceError(fmt.Sprintf("get wager %d", id), err)
	}
	return wager, nil
}

// MarkPaid moves a held wager to paid. The state guard in the WHERE clause
// makes the transition happen at most once.
func (r *WagerRepository) MarkPaid(ctx context.Context, id int64, winnerID int64, payout int64) (bool, error) {
	query := `
		UPDATE wagers
		SET state = 'paid', winner_discord_id = $1, payout = $2, resolved_at = NOW()
		WHERE id = $3 AND guild_id = $4 AND state = 'held'
	`
	result, err := r.q.Exec(ctx, query, winnerID, payout, id, r.guildID)
	if err != nil {
		return false, entities.NewPersistenceError(fmt.Sprintf("mark wager %d paid", id), err)
	}
	return result.RowsAffected() == 1, nil
}

// MarkRefunded moves a held wager to refunded, at most once
func (r *WagerRepository) MarkRefunded(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE wagers
		SET state = 'refunded', resolved_at = NOW()
		WHERE id = $1 AND guild_id = $2 AND state = 'held'
	`
	result, err := r.q.Exec(ctx, query, id, r.guildID)
	if err != nil {
		return false, entities.NewPersistenceError(fmt.Sprintf("mark wager %d refunded", id), err)
	}
	return result.RowsAffected() == 1, nil
}

// GetHeldByUser returns the unresolved wagers of a user, oldest first
func (r *WagerRepository) GetHeldByUser(ctx context.Context, discordID int64) ([]*entities.Wager, error) {
	query := `
		SELECT ` + wagerColumns + `
		FROM wagers
		WHERE discord_id = $1 AND guild_id = $2 AND state = 'held'
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.q.Query(ctx, query, discordID, r.guildID)
	if err != nil {
		return nil, entities.NewPersistenceError(fmt.Sprintf("get held wagers for user %d", discordID), err)
	}
	defer rows.Close()

	wagers := []*entities.Wager{}
	for rows.Next() {
		wager, err := scanWager(rows)
		if err != nil {
			return nil, entities.NewPersistenceError("scan wager", err)
		}
		wagers = append(wagers, wager)
	}
	if err := rows.Err(); err != nil {
		return nil, entities.NewPersistenceError("iterate wagers", err)
	}
	return wagers, nil
}

// GetStats aggregates the resolved wagers of a user. A refund counts as a
// push; a paid wager is won when its payout went to the user.
func (r *WagerRepository) GetStats(ctx context.Context, discordID int64) (*entities.CasinoStats, error) {
	query := `
		SELECT
			COUNT(*) AS games_played,
			COUNT(*) FILTER (WHERE state = 'paid' AND winner_discord_id = $1) AS games_won,
			COUNT(*) FILTER (WHERE state = 'paid' AND winner_discord_id IS DISTINCT FROM $1) AS games_lost,
			COUNT(*) FILTER (WHERE state = 'refunded') AS games_pushed,
			COALESCE(SUM(amount) FILTER (WHERE state = 'paid'), 0) AS total_wagered,
			COALESCE(SUM(payout) FILTER (WHERE state = 'paid' AND winner_discord_id = $1), 0) AS total_payout,
			COALESCE(MAX(payout) FILTER (WHERE state = 'paid' AND winner_discord_id = $1), 0) AS biggest_win
		FROM wagers
		WHERE discord_id = $1 AND guild_id = $2 AND state <> 'held'
	`
	var stats entities.CasinoStats
	err := r.q.QueryRow(ctx, query, discordID, r.guildID).Scan(
		&stats.GamesPlayed,
		&stats.GamesWon,
		&stats.GamesLost,
		&stats.GamesPushed,
		&stats.TotalWagered,
		&stats.TotalPayout,
		&stats.BiggestWin,
	)
	if err != nil {
		return nil, entities.NewPersistenceError(fmt.Sprintf("get casino stats for user %d", discordID), err)
	}

	favorite := `
		SELECT game
		FROM wagers
		WHERE discord_id = $1 AND guild_id = $2 AND state <> 'held'
		GROUP BY game
		ORDER BY COUNT(*) DESC, game ASC
		LIMIT 1
	`
	var game string
	err = r.q.QueryRow(ctx, favorite, discordID, r.guildID).Scan(&game)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, entities.NewPersistenceError(fmt.Sprintf("get favorite game for user %d", discordID), err)
	default:
		stats.FavoriteGame = entities.GameType(game)
	}

	return &stats, nil
}
