package entities

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds returned by the ledger, the escrow and the session manager.
// Callers match them with errors.Is; the typed errors below carry details
// and can be extracted with errors.As.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidStake      = errors.New("stake must be a positive amount")
	ErrInvalidAmount     = errors.New("amount must be a positive amount")
	ErrAlreadyClaimed    = errors.New("daily reward already claimed")
	ErrAlreadyResolved   = errors.New("wager already resolved")
	ErrAccountNotFound   = errors.New("account not found")
	ErrWagerNotFound     = errors.New("wager not found")
	ErrPersistence       = errors.New("persistence failure")
	ErrSelfTransfer      = errors.New("cannot transfer to yourself")
	ErrUnknownItem       = errors.New("unknown shop item")
	ErrItemExists        = errors.New("shop item already exists")
	ErrInvalidItem       = errors.New("invalid shop item")

	ErrSessionNotFound = errors.New("game session not found")
	ErrSessionExists   = errors.New("a game session already exists")
	ErrNotParticipant  = errors.New("not a participant of this game")
	ErrAlreadyActed    = errors.New("already acted on this step")
	ErrCapacity        = errors.New("too many active game sessions")
	ErrWrongPhase      = errors.New("action not allowed in the current phase")
)

// InsufficientFundsError reports how short a debit fell
type InsufficientFundsError struct {
	Source    BalanceKind
	Available int64
	Required  int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in %s: have %d, need %d", e.Source, e.Available, e.Required)
}

// Shortfall is the amount missing to cover the debit
func (e *InsufficientFundsError) Shortfall() int64 {
	return e.Required - e.Available
}

// Is lets errors.Is match the sentinel
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// AlreadyClaimedError reports when the daily reward becomes available again
type AlreadyClaimedError struct {
	Remaining time.Duration
}

func (e *AlreadyClaimedError) Error() string {
	return fmt.Sprintf("daily reward already claimed, available again in %s", e.Remaining.Round(time.Second))
}

// Is lets errors.Is match the sentinel
func (e *AlreadyClaimedError) Is(target error) bool {
	return target == ErrAlreadyClaimed
}

// PersistenceError wraps a storage driver error with the failing operation
type PersistenceError struct {
	Op  string
	Err error
}

// NewPersistenceError wraps err, returning nil for a nil err
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the sentinel
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
