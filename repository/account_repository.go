package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"guildgreeter/database"
	"guildgreeter/domain/entities"
)

const accountColumns = `discord_id, guild_id, wallet, bank, daily_claimed_at, created_at, updated_at`

// AccountRepository implements guild-scoped account persistence
type AccountRepository struct {
	q       Queryable
	guildID int64
}

// NewAccountRepository creates an account repository on the pool, outside
// any transaction
func NewAccountRepository(db *database.DB, guildID int64) *AccountRepository {
	return &AccountRepository{q: db.Pool, guildID: guildID}
}

// newAccountRepository creates an account repository with a transaction and guild scope
func newAccountRepository(tx Queryable, guildID int64) *AccountRepository {
	return &AccountRepository{
		q:       tx,
		guildID: guildID,
	}
}

func scanAccount(row pgx.Row) (*entities.Account, error) {
	var account entities.Account
	err := row.Scan(
		&account.DiscordID,
		&account.GuildID,
		&account.Wallet,
		&account.Bank,
		&account.DailyClaimedAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetOrCreate inserts the account with the starting wallet unless it exists,
// then reads it. Two concurrent first accesses resolve to the same row.
func (r *AccountRepository) GetOrCreate(ctx context.Context, discordID int64, startingWallet int64) (*entities.Account, bool, error) {
	insert := `
		INSERT INTO accounts (discord_id, guild_id, wallet, bank)
		VALUES ($1, $2, $3, 0)
		ON CONFLICT (discord_id, guild_id) DO NOTHING
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, insert, discordID, r.guildID, startingWallet))
	if err == nil {
		return account, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, entities.NewPersistenceError(fmt.Sprintf("create account %d in guild %d", discordID, r.guildID), err)
	}

	account, err = r.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, false, err
	}
	if account == nil {
		return nil, false, fmt.Errorf("account %d in guild %d vanished after insert: %w", discordID, r.guildID, entities.ErrAccountNotFound)
	}
	return account, false, nil
}

// GetByDiscordID returns the account or nil if it does not exist
func (r *AccountRepository) GetByDiscordID(ctx context.Context, discordID int64) (*entities.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE discord_id = $1 AND guild_id = $2`

	account, err := scanAccount(r.q.QueryRow(ctx, query, discordID, r.guildID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, entities.NewPersistenceError(fmt.Sprintf("get account %d in guild %d", discordID, r.guildID), err)
	}
	return account, nil
}

// GetForUpdate reads the account and holds a row lock until the transaction ends
func (r *AccountRepository) GetForUpdate(ctx context.Context, discordID int64) (*entities.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE discord_id = $1 AND guild_id = $2 FOR UPDATE`

	account, err := scanAccount(r.q.QueryRow(ctx, query, discordID, r.guildID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, entities.NewPersistenceError(fmt.Sprintf("lock account %d in guild %d", discordID, r.guildID), err)
	}
	return account, nil
}

// Save writes both balances and the daily claim time in one statement
func (r *AccountRepository) Save(ctx context.Context, account *entities.Account) error {
	if err := account.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE accounts
		SET wallet = $1, bank = $2, daily_claimed_at = $3, updated_at = NOW()
		WHERE discord_id = $4 AND guild_id = $5
		RETURNING updated_at
	`
	err := r.q.QueryRow(ctx, query,
		account.Wallet,
		account.Bank,
		account.DailyClaimedAt,
		account.DiscordID,
		r.guildID,
	).Scan(&account.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("account %d in guild %d: %w", account.DiscordID, r.guildID, entities.ErrAccountNotFound)
	}
	if err != nil {
		return entities.NewPersistenceError(fmt.Sprintf("save account %d in guild %d", account.DiscordID, r.guildID), err)
	}
	return nil
}

// Top returns a page of accounts ordered by net worth. Ties are broken by
// discord id so pages are stable.
func (r *AccountRepository) Top(ctx context.Context, limit, offset int) ([]*entities.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE guild_id = $1
		ORDER BY wallet + bank DESC, discord_id ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.q.Query(ctx, query, r.guildID, limit, offset)
	if err != nil {
		return nil, entities.NewPersistenceError(fmt.Sprintf("list top accounts in guild %d", r.guildID), err)
	}
	defer rows.Close()

	accounts := []*entities.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, entities.NewPersistenceError("scan account", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, entities.NewPersistenceError("iterate accounts", err)
	}
	return accounts, nil
}

// Count returns the number of accounts in the guild
func (r *AccountRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE guild_id = $1`, r.guildID).Scan(&count)
	if err != nil {
		return 0, entities.NewPersistenceError(fmt.Sprintf("count accounts in guild %d", r.guildID), err)
	}
	return count, nil
}

// RankOf returns the leaderboard position of discordID, 0 when unknown
func (r *AccountRepository) RankOf(ctx context.Context, discordID int64) (int, error) {
	query := `
		SELECT rank FROM (
			SELECT discord_id, ROW_NUMBER() OVER (ORDER BY wallet + bank DESC, discord_id ASC) AS rank
			FROM accounts
			WHERE guild_id = $1
		) ranked
		WHERE discord_id = $2
	`
	var rank int
	err := r.q.QueryRow(ctx, query, r.guildID, discordID).Scan(&rank)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, entities.NewPersistenceError(fmt.Sprintf("rank account %d in guild %d", discordID, r.guildID), err)
	}
	return rank, nil
}
