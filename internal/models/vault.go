package models

import (
	"fmt"
	"math/big"
	"time"
)

// LockPeriod selects the withdrawal lock class for a deposit. Longer locks earn
// a higher interest multiplier.
type LockPeriod uint8

const (
	LockFlexible LockPeriod = iota
	LockShort
	LockMedium
	LockLong
)

func (p LockPeriod) String() string {
	switch p {
	case LockFlexible:
		return "flexible"
	case LockShort:
		return "short"
	case LockMedium:
		return "medium"
	case LockLong:
		return "long"
	}
	return fmt.Sprintf("unknown(%d)", uint8(p))
}

// ParseLockPeriod maps a CLI/user string to a LockPeriod.
func ParseLockPeriod(s string) (LockPeriod, error) {
	switch s {
	case "flexible", "":
		return LockFlexible, nil
	case "short":
		return LockShort, nil
	case "medium":
		return LockMedium, nil
	case "long":
		return LockLong, nil
	}
	return LockFlexible, fmt.Errorf("invalid lock period %q (want flexible, short, medium or long)", s)
}

// AccountStatus is the lifecycle state of a vault account. Only Inactive and
// Active accounts may perform normal operations; Inactive flips to Active on
// the first balance-increasing event and is never reverted automatically.
type AccountStatus uint8

const (
	StatusInactive AccountStatus = iota
	StatusActive
	StatusFrozen
	StatusClosed
)

func (s AccountStatus) String() string {
	switch s {
	case StatusInactive:
		return "inactive"
	case StatusActive:
		return "active"
	case StatusFrozen:
		return "frozen"
	case StatusClosed:
		return "closed"
	}
	return fmt.Sprintf("unknown(%d)", uint8(s))
}

// CanTransact reports whether normal vault operations are permitted.
func (s AccountStatus) CanTransact() bool {
	return s == StatusInactive || s == StatusActive
}

// TransactionType tags entries in the append-only per-account history.
type TransactionType string

const (
	TxDeposit          TransactionType = "deposit"
	TxWithdrawal       TransactionType = "withdrawal"
	TxInterestClaim    TransactionType = "interest-claim"
	TxInternalTransfer TransactionType = "internal-transfer"
)

// Account is one vault ledger entry, keyed by account identifier and created
// lazily on first deposit or transfer-in. All amounts are in the smallest
// currency unit.
type Account struct {
	ID                     string        `db:"id"`
	Balance                *big.Int      `db:"balance"`
	TotalDeposited         *big.Int      `db:"total_deposited"`
	TotalWithdrawn         *big.Int      `db:"total_withdrawn"`
	PendingInterest        *big.Int      `db:"pending_interest"`
	LastInterestCheckpoint int64         `db:"last_interest_checkpoint"` // 0 = unset
	LockEndTime            int64         `db:"lock_end_time"`            // 0 = never locked
	WithdrawnToday         *big.Int      `db:"withdrawn_today"`          // valid only when LastWithdrawDay is current
	LastWithdrawDay        int64         `db:"last_withdraw_day"`
	LockPeriod             LockPeriod    `db:"lock_period"`
	Status                 AccountStatus `db:"status"`
	Tier                   uint8         `db:"tier"` // cached loyalty tier 0-3
	Version                int64         `db:"version"`
	CreatedAt              time.Time     `db:"created_at"`
	UpdatedAt              time.Time     `db:"updated_at"`
}

// NewAccount returns a fresh Inactive account with zeroed counters.
func NewAccount(id string) *Account {
	return &Account{
		ID:              id,
		Balance:         new(big.Int),
		TotalDeposited:  new(big.Int),
		TotalWithdrawn:  new(big.Int),
		PendingInterest: new(big.Int),
		WithdrawnToday:  new(big.Int),
		LockPeriod:      LockFlexible,
		Status:          StatusInactive,
		Version:         1,
	}
}

// TransactionRecord is one immutable entry in an account's history.
// Amount is the gross amount moved; Fee is the portion retained by the vault.
type TransactionRecord struct {
	ID           string          `db:"id"`
	AccountID    string          `db:"account_id"`
	Type         TransactionType `db:"tx_type"`
	Amount       *big.Int        `db:"amount"`
	Fee          *big.Int        `db:"fee"`
	BalanceAfter *big.Int        `db:"balance_after"`
	Timestamp    int64           `db:"ts"`
	Reference    string          `db:"reference"`
	CreatedAt    time.Time       `db:"created_at"`
}

// VaultParams holds the global tunables and lifetime counters. It is stored as
// a singleton row and mutated only through the admin surface.
type VaultParams struct {
	MaxBalance                *big.Int `db:"max_balance"`           // per-account cap, > 0
	DailyWithdrawLimit        *big.Int `db:"daily_withdraw_limit"`  // 0 = unlimited
	BaseFeeBps                uint64   `db:"base_fee_bps"`          // 0-1000
	BaseInterestRateBps       uint64   `db:"base_interest_rate_bps"` // per year
	EarlyWithdrawalPenaltyBps uint64   `db:"early_withdrawal_penalty_bps"`
	Paused                    bool     `db:"paused"`
	FeePool                   *big.Int `db:"fee_pool"`
	TotalDeposited            *big.Int `db:"total_deposited"`
	TotalFeesCollected        *big.Int `db:"total_fees_collected"`
	Version                   int64    `db:"version"`
}

// VaultSeed is the YAML shape of the initial vault parameters file. Amounts
// are decimal strings in the smallest currency unit.
type VaultSeed struct {
	MaxBalance                string `yaml:"max_balance"`
	DailyWithdrawLimit        string `yaml:"daily_withdraw_limit"`
	BaseFeeBps                uint64 `yaml:"base_fee_bps"`
	BaseInterestRateBps       uint64 `yaml:"base_interest_rate_bps"`
	EarlyWithdrawalPenaltyBps uint64 `yaml:"early_withdrawal_penalty_bps"`
}

// Params converts the seed into runtime parameters, validating the amounts.
func (s VaultSeed) Params() (*VaultParams, error) {
	maxBalance, ok := new(big.Int).SetString(s.MaxBalance, 10)
	if !ok || maxBalance.Sign() <= 0 {
		return nil, fmt.Errorf("invalid max_balance %q", s.MaxBalance)
	}
	dailyLimit := new(big.Int)
	if s.DailyWithdrawLimit != "" {
		dailyLimit, ok = new(big.Int).SetString(s.DailyWithdrawLimit, 10)
		if !ok || dailyLimit.Sign() < 0 {
			return nil, fmt.Errorf("invalid daily_withdraw_limit %q", s.DailyWithdrawLimit)
		}
	}
	return &VaultParams{
		MaxBalance:                maxBalance,
		DailyWithdrawLimit:        dailyLimit,
		BaseFeeBps:                s.BaseFeeBps,
		BaseInterestRateBps:       s.BaseInterestRateBps,
		EarlyWithdrawalPenaltyBps: s.EarlyWithdrawalPenaltyBps,
		FeePool:                   new(big.Int),
		TotalDeposited:            new(big.Int),
		TotalFeesCollected:        new(big.Int),
		Version:                   1,
	}, nil
}
