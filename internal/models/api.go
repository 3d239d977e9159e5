package models

import "math/big"

// OperationResult summarizes a committed vault operation for callers.
type OperationResult struct {
	AccountID  string          `json:"account_id"`
	Type       TransactionType `json:"type"`
	Amount     *big.Int        `json:"amount"`
	Fee        *big.Int        `json:"fee"`
	NewBalance *big.Int        `json:"new_balance"`
	RecordID   string          `json:"record_id,omitempty"`
}

// ClaimResult breaks an interest claim down into base interest and tier bonus
// so callers can notify the account holder.
type ClaimResult struct {
	AccountID  string   `json:"account_id"`
	Interest   *big.Int `json:"interest"`
	Bonus      *big.Int `json:"bonus"`
	NewBalance *big.Int `json:"new_balance"`
}

// AccountSnapshot is the read-only view of an account exposed by the query
// surface.
type AccountSnapshot struct {
	ID              string        `json:"id"`
	Balance         *big.Int      `json:"balance"`
	PendingInterest *big.Int      `json:"pending_interest"`
	TotalDeposited  *big.Int      `json:"total_deposited"`
	TotalWithdrawn  *big.Int      `json:"total_withdrawn"`
	LockEndTime     int64         `json:"lock_end_time"`
	LockPeriod      LockPeriod    `json:"lock_period"`
	Status          AccountStatus `json:"status"`
	Tier            uint8         `json:"tier"`
}

// LockStatus reports whether an account is currently locked and until when.
type LockStatus struct {
	Locked     bool       `json:"locked"`
	UnlockTime int64      `json:"unlock_time"`
	LockPeriod LockPeriod `json:"lock_period"`
}
