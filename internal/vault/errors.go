package vault

import (
	"errors"
	"fmt"
	"math/big"
)

// Sentinel errors shared across the vault core. Operations fail fast on the
// first violated check; no partial state is ever visible to the caller.
var (
	ErrZeroAmount        = errors.New("amount must be greater than zero")
	ErrPaused            = errors.New("vault is paused")
	ErrInvalidPercentage = errors.New("fee must be between 0 and 1000 basis points")
	ErrZeroAddress       = errors.New("destination account must not be empty")
	ErrSelfTransfer      = errors.New("cannot transfer to the same account")
	ErrUnauthorized      = errors.New("caller is not the vault administrator")
	ErrTransferFailed    = errors.New("external transfer failed")
)

// CapacityExceededError reports a deposit that would push the balance over the
// per-account cap.
type CapacityExceededError struct {
	Current   *big.Int
	Attempted *big.Int
	Max       *big.Int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("deposit exceeds max balance: current=%s attempted=%s max=%s",
		e.Current, e.Attempted, e.Max)
}

// InsufficientBalanceError reports a withdrawal or transfer larger than the
// available balance.
type InsufficientBalanceError struct {
	Available *big.Int
	Requested *big.Int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available=%s requested=%s", e.Available, e.Requested)
}

// DailyLimitExceededError reports a withdrawal that would exceed the rolling
// daily cap.
type DailyLimitExceededError struct {
	WithdrawnToday *big.Int
	Limit          *big.Int
}

func (e *DailyLimitExceededError) Error() string {
	return fmt.Sprintf("daily withdrawal limit exceeded: withdrawn_today=%s limit=%s",
		e.WithdrawnToday, e.Limit)
}

// FundsLockedError reports a withdrawal attempted before the lock expires.
type FundsLockedError struct {
	UnlockTime int64
	Now        int64
}

func (e *FundsLockedError) Error() string {
	return fmt.Sprintf("funds are locked until %d (now %d)", e.UnlockTime, e.Now)
}

// BlacklistedError reports an operation touching a blacklisted account.
type BlacklistedError struct {
	AccountID string
}

func (e *BlacklistedError) Error() string {
	return fmt.Sprintf("account %s is blacklisted", e.AccountID)
}

// AccountNotActiveError reports an operation on a frozen or closed account.
type AccountNotActiveError struct {
	AccountID string
	Status    string
}

func (e *AccountNotActiveError) Error() string {
	return fmt.Sprintf("account %s is not active (status %s)", e.AccountID, e.Status)
}
