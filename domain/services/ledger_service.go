package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"guildgreeter/domain/entities"
	"guildgreeter/domain/interfaces"
	"guildgreeter/domain/utils"
)

const (
	// DailyMinReward and DailyMaxReward bound the base daily reward
	DailyMinReward int64 = 100
	DailyMaxReward int64 = 500
	// DailyBonusChance is the probability of adding a bonus in [0, DailyBonusMax]
	DailyBonusChance       = 0.30
	DailyBonusMax    int64 = 100

	// LeaderboardPageSize is the number of accounts per leaderboard page
	LeaderboardPageSize = 10
)

// LedgerConfig holds the economy settings of the ledger
type LedgerConfig struct {
	StartingBalance int64
	DailyCooldown   time.Duration
}

// Change describes one mutation of one balance
type Change struct {
	Kind        entities.BalanceKind
	Amount      int64
	Type        entities.TransactionType
	Metadata    map[string]any
	RelatedID   *int64
	RelatedType *entities.RelatedType
}

// LedgerService moves coins between wallets and banks of a single guild.
// It must run inside a transaction: every mutation locks the account row
// first, so that concurrent operations on one account are serialized.
type LedgerService struct {
	accountRepo        interfaces.AccountRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
	random             interfaces.RandomSource
	config             LedgerConfig
	now                func() time.Time
}

// NewLedgerService creates a ledger over guild-scoped repositories
func NewLedgerService(accountRepo interfaces.AccountRepository, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher, random interfaces.RandomSource, config LedgerConfig) *LedgerService {
	return &LedgerService{
		accountRepo:        accountRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
		random:             random,
		config:             config,
		now:                time.Now,
	}
}

// GetAccount returns the account of discordID, creating it with the
// starting balance on first access.
func (s *LedgerService) GetAccount(ctx context.Context, discordID int64) (*entities.Account, error) {
	account, created, err := s.accountRepo.GetOrCreate(ctx, discordID, s.config.StartingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %d: %w", discordID, entities.ErrAccountNotFound)
	}

	if created && account.Wallet > 0 {
		history := &entities.BalanceHistory{
			DiscordID:       discordID,
			GuildID:         account.GuildID,
			BalanceKind:     entities.BalanceWallet,
			BalanceBefore:   0,
			BalanceAfter:    account.Wallet,
			ChangeAmount:    account.Wallet,
			TransactionType: entities.TransactionTypeInitial,
		}
		if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
			return nil, err
		}
	}
	return account, nil
}

// lockAccount returns the account holding its row lock for the rest of the
// transaction, creating it first if needed.
func (s *LedgerService) lockAccount(ctx context.Context, discordID int64) (*entities.Account, error) {
	if _, err := s.GetAccount(ctx, discordID); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.GetForUpdate(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %d: %w", discordID, entities.ErrAccountNotFound)
	}
	return account, nil
}

// Credit adds change.Amount to the selected balance
func (s *LedgerService) Credit(ctx context.Context, discordID int64, change Change) (*entities.Account, error) {
	return s.apply(ctx, discordID, change, false)
}

// Debit removes change.Amount from the selected balance, failing with
// InsufficientFunds when it does not cover the amount.
func (s *LedgerService) Debit(ctx context.Context, discordID int64, change Change) (*entities.Account, error) {
	return s.apply(ctx, discordID, change, true)
}

func (s *LedgerService) apply(ctx context.Context, discordID int64, change Change, debit bool) (*entities.Account, error) {
	if change.Amount <= 0 {
		return nil, entities.ErrInvalidAmount
	}
	if change.Kind == "" {
		change.Kind = entities.BalanceWallet
	}
	if !change.Kind.Valid() {
		return nil, fmt.Errorf("unknown balance kind %q", change.Kind)
	}

	account, err := s.lockAccount(ctx, discordID)
	if err != nil {
		return nil, err
	}

	before := account.Balance(change.Kind)
	delta := change.Amount
	if debit {
		if err := account.Debit(change.Kind, change.Amount); err != nil {
			return nil, err
		}
		delta = -change.Amount
	} else if err := account.Credit(change.Kind, change.Amount); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	history := &entities.BalanceHistory{
		DiscordID:           discordID,
		GuildID:             account.GuildID,
		BalanceKind:         change.Kind,
		BalanceBefore:       before,
		BalanceAfter:        account.Balance(change.Kind),
		ChangeAmount:        delta,
		TransactionType:     change.Type,
		TransactionMetadata: change.Metadata,
		RelatedID:           change.RelatedID,
		RelatedType:         change.RelatedType,
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return nil, err
	}

	return account, nil
}

// TransferResult contains both accounts after a transfer
type TransferResult struct {
	From   *entities.Account
	To     *entities.Account
	Amount int64
}

// Transfer moves amount from the sender's wallet to the recipient's wallet.
// When the credit fails after a successful debit the debit is reversed.
func (s *LedgerService) Transfer(ctx context.Context, fromID, toID, amount int64) (*TransferResult, error) {
	if fromID == toID {
		return nil, entities.ErrSelfTransfer
	}
	if amount <= 0 {
		return nil, entities.ErrInvalidAmount
	}

	// Lock in a stable order so opposing transfers cannot deadlock
	first, second := fromID, toID
	if first > second {
		first, second = second, first
	}
	if _, err := s.lockAccount(ctx, first); err != nil {
		return nil, err
	}
	if _, err := s.lockAccount(ctx, second); err != nil {
		return nil, err
	}

	from, err := s.Debit(ctx, fromID, Change{
		Kind:     entities.BalanceWallet,
		Amount:   amount,
		Type:     entities.TransactionTypeTransferOut,
		Metadata: map[string]any{"recipient_discord_id": toID},
	})
	if err != nil {
		return nil, err
	}

	to, err := s.Credit(ctx, toID, Change{
		Kind:     entities.BalanceWallet,
		Amount:   amount,
		Type:     entities.TransactionTypeTransferIn,
		Metadata: map[string]any{"sender_discord_id": fromID},
	})
	if err != nil {
		return nil, s.reverse(ctx, fromID, entities.BalanceWallet, amount, err)
	}

	log.WithFields(log.Fields{
		"from":    fromID,
		"to":      toID,
		"guildID": from.GuildID,
		"amount":  amount,
	}).Info("Transfer completed")

	return &TransferResult{From: from, To: to, Amount: amount}, nil
}

// reverse credits back a debit whose counterpart failed and returns the
// error to report to the caller.
func (s *LedgerService) reverse(ctx context.Context, discordID int64, kind entities.BalanceKind, amount int64, cause error) error {
	_, err := s.Credit(ctx, discordID, Change{
		Kind:     kind,
		Amount:   amount,
		Type:     entities.TransactionTypeReversal,
		Metadata: map[string]any{"reason": cause.Error()},
	})
	if err != nil {
		log.WithFields(log.Fields{
			"userID": discordID,
			"amount": amount,
			"kind":   kind,
		}).WithError(err).Error("Failed to reverse debit")
		return errors.Join(fmt.Errorf("operation failed after debit: %w", cause), fmt.Errorf("reversal failed: %w", err))
	}
	return fmt.Errorf("operation failed after debit, debit reversed: %w", cause)
}

// MoveResult reports a wallet/bank move
type MoveResult struct {
	Amount  int64
	Account *entities.Account
}

// Deposit moves coins from the wallet to the bank
func (s *LedgerService) Deposit(ctx context.Context, discordID int64, amount utils.Amount) (*MoveResult, error) {
	return s.move(ctx, discordID, amount, entities.BalanceWallet, entities.BalanceBank, entities.TransactionTypeDeposit)
}

// Withdraw moves coins from the bank to the wallet
func (s *LedgerService) Withdraw(ctx context.Context, discordID int64, amount utils.Amount) (*MoveResult, error) {
	return s.move(ctx, discordID, amount, entities.BalanceBank, entities.BalanceWallet, entities.TransactionTypeWithdraw)
}

func (s *LedgerService) move(ctx context.Context, discordID int64, amount utils.Amount, from, to entities.BalanceKind, txType entities.TransactionType) (*MoveResult, error) {
	account, err := s.lockAccount(ctx, discordID)
	if err != nil {
		return nil, err
	}

	value, err := amount.Resolve(account.Balance(from))
	if err != nil {
		return nil, err
	}

	if _, err := s.Debit(ctx, discordID, Change{Kind: from, Amount: value, Type: txType}); err != nil {
		return nil, err
	}
	account, err = s.Credit(ctx, discordID, Change{Kind: to, Amount: value, Type: txType})
	if err != nil {
		return nil, s.reverse(ctx, discordID, from, value, err)
	}

	return &MoveResult{Amount: value, Account: account}, nil
}

// DailyReward describes a successful daily claim
type DailyReward struct {
	Base        int64
	Bonus       int64
	Account     *entities.Account
	NextClaimAt time.Time
}

// Total is the amount credited
func (r *DailyReward) Total() int64 {
	return r.Base + r.Bonus
}

// ClaimDaily credits the daily reward once per cooldown period
func (s *LedgerService) ClaimDaily(ctx context.Context, discordID int64) (*DailyReward, error) {
	account, err := s.lockAccount(ctx, discordID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if remaining := account.DailyRemaining(now, s.config.DailyCooldown); remaining > 0 {
		return nil, &entities.AlreadyClaimedError{Remaining: remaining}
	}

	reward := &DailyReward{
		Base: DailyMinReward + int64(s.random.IntN(int(DailyMaxReward-DailyMinReward+1))),
	}
	if s.random.Float64() < DailyBonusChance {
		reward.Bonus = int64(s.random.IntN(int(DailyBonusMax + 1)))
	}

	before := account.Wallet
	if err := account.Credit(entities.BalanceWallet, reward.Total()); err != nil {
		return nil, err
	}
	account.DailyClaimedAt = &now

	// wallet and claim time are written together
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	history := &entities.BalanceHistory{
		DiscordID:       discordID,
		GuildID:         account.GuildID,
		BalanceKind:     entities.BalanceWallet,
		BalanceBefore:   before,
		BalanceAfter:    account.Wallet,
		ChangeAmount:    reward.Total(),
		TransactionType: entities.TransactionTypeDaily,
		TransactionMetadata: map[string]any{
			"base":  reward.Base,
			"bonus": reward.Bonus,
		},
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return nil, err
	}

	reward.Account = account
	reward.NextClaimAt = now.Add(s.config.DailyCooldown)
	return reward, nil
}

// LeaderboardEntry is one ranked account
type LeaderboardEntry struct {
	Rank    int
	Account *entities.Account
}

// Leaderboard is one page of the richest accounts of a guild
type Leaderboard struct {
	Entries       []LeaderboardEntry
	Page          int
	TotalPages    int
	TotalAccounts int
	CallerRank    int
	Caller        *entities.Account
}

// Leaderboard returns page (1-based) of accounts ranked by wallet + bank,
// along with the caller's own rank. Out of range pages are clamped.
func (s *LedgerService) Leaderboard(ctx context.Context, callerID int64, page int) (*Leaderboard, error) {
	caller, err := s.GetAccount(ctx, callerID)
	if err != nil {
		return nil, err
	}

	total, err := s.accountRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}

	totalPages := (total + LeaderboardPageSize - 1) / LeaderboardPageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	offset := (page - 1) * LeaderboardPageSize
	accounts, err := s.accountRepo.Top(ctx, LeaderboardPageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	rank, err := s.accountRepo.RankOf(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to rank account: %w", err)
	}

	board := &Leaderboard{
		Entries:       make([]LeaderboardEntry, len(accounts)),
		Page:          page,
		TotalPages:    totalPages,
		TotalAccounts: total,
		CallerRank:    rank,
		Caller:        caller,
	}
	for i, account := range accounts {
		board.Entries[i] = LeaderboardEntry{Rank: offset + i + 1, Account: account}
	}
	return board, nil
}
