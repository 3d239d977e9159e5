package models

import "math/big"

// Event types mirrored to the audit ledger. The first four match the
// transaction record types; fee sweeps have no per-account record.
const (
	EventDeposit          = string(TxDeposit)
	EventWithdrawal       = string(TxWithdrawal)
	EventInterestClaim    = string(TxInterestClaim)
	EventInternalTransfer = string(TxInternalTransfer)
	EventFeeSweep         = "fee-sweep"
)

// VaultEvent is a committed ledger-affecting event, handed to the optional
// audit mirror after the backing store transaction has committed.
type VaultEvent struct {
	Type           string
	AccountID      string
	CounterpartyID string // credited account for internal transfers
	Destination    string // external destination for withdrawals/sweeps
	Amount         *big.Int
	Fee            *big.Int
	Timestamp      int64
	Reference      string
}
