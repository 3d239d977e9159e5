package store

import (
	"context"
	"errors"
	"math/big"

	"vault-ledger-go/internal/models"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrDuplicateTransaction   = errors.New("duplicate transaction")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrAccountNotFound        = errors.New("no account found for identifier")
)

// Transferer is the abstract external payment primitive. It is invoked only
// after all internal state for the operation has been staged; a returned
// error aborts the entire operation.
type Transferer interface {
	Transfer(ctx context.Context, destination string, amount *big.Int) error
}

// TierOracle is the raw external loyalty oracle. Both reads may fail per
// call; the adapter in internal/oracle owns the fallback policy, so vault
// backends never see these errors.
type TierOracle interface {
	DiscountOf(ctx context.Context, accountID string) (uint64, error)
	TierOf(ctx context.Context, accountID string) (uint8, error)
}

// EventMirror receives committed vault events for best-effort audit
// mirroring. Mirror failures must never affect the committed operation.
type EventMirror interface {
	Record(ctx context.Context, ev models.VaultEvent) error
}

// DepositParams captures a deposit of already-received value into an account.
type DepositParams struct {
	AccountID  string
	Amount     *big.Int
	LockPeriod models.LockPeriod
	Now        int64
	Reference  string // external reference for idempotency, optional
}

// WithdrawParams captures a withdrawal paid out to an external destination.
type WithdrawParams struct {
	AccountID   string
	Amount      *big.Int
	Destination string
	Now         int64
	Reference   string
}

// EmergencyWithdrawParams captures a full-balance exit that bypasses the lock.
type EmergencyWithdrawParams struct {
	AccountID   string
	Destination string
	Now         int64
	Reference   string
}

// TransferParams captures an internal balance move between two accounts.
type TransferParams struct {
	FromID    string
	ToID      string
	Amount    *big.Int
	Now       int64
	Reference string
}

// ClaimParams captures an interest claim.
type ClaimParams struct {
	AccountID string
	Now       int64
	Reference string
}

// VaultStore defines the contract that every vault backend must satisfy.
type VaultStore interface {
	// --- Operations ---
	Deposit(ctx context.Context, params DepositParams) (*models.OperationResult, error)
	Withdraw(ctx context.Context, params WithdrawParams) (*models.OperationResult, error)
	EmergencyWithdraw(ctx context.Context, params EmergencyWithdrawParams) (*models.OperationResult, error)
	InternalTransfer(ctx context.Context, params TransferParams) (*models.OperationResult, error)
	ClaimInterest(ctx context.Context, params ClaimParams) (*models.ClaimResult, error)

	// --- Queries ---
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)
	PendingInterestAt(ctx context.Context, accountID string, now int64) (*big.Int, error)
	EffectiveFeeBps(ctx context.Context, accountID string) (uint64, error)
	GetLockStatus(ctx context.Context, accountID string, now int64) (*models.LockStatus, error)
	GetTransactionCount(ctx context.Context, accountID string) (int64, error)
	GetTransactionByIndex(ctx context.Context, accountID string, index int64) (*models.TransactionRecord, error)
	GetTransactionHistory(ctx context.Context, accountID string, limit, offset int) ([]models.TransactionRecord, error)
	GetParams(ctx context.Context) (*models.VaultParams, error)
	IsBlacklisted(ctx context.Context, accountID string) (bool, error)
	ReconcileAccount(ctx context.Context, accountID string) error

	// --- Lifecycle ---
	Close()
}
