package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"vault-ledger-go/internal/models"
	"vault-ledger-go/internal/store"
	"vault-ledger-go/internal/vault"

	"go.uber.org/zap"
)

// GetAccount returns the current ledger entry for an identifier.
func (s *Service) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	acct, err := scanAccount(s.db.QueryRowContext(ctx, queryGetAccount, accountID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", accountID, err)
	}
	return acct, nil
}

// GetParams returns the current global tunables and lifetime counters.
func (s *Service) GetParams(ctx context.Context) (*models.VaultParams, error) {
	params, err := scanParams(s.db.QueryRowContext(ctx, queryGetParams))
	if err != nil {
		return nil, fmt.Errorf("failed to load vault parameters: %w", err)
	}
	return params, nil
}

// PendingInterestAt projects an account's pending interest as of now without
// mutating any state.
func (s *Service) PendingInterestAt(ctx context.Context, accountID string, now int64) (*big.Int, error) {
	acct, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	params, err := s.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	return vault.PendingAt(acct, params, now), nil
}

// EffectiveFeeBps reports the withdrawal fee rate an account would currently
// pay, including any oracle discount.
func (s *Service) EffectiveFeeBps(ctx context.Context, accountID string) (uint64, error) {
	params, err := s.GetParams(ctx)
	if err != nil {
		return 0, err
	}
	discount := s.tiers.Discount(ctx, accountID)
	return vault.EffectiveFeeBps(params.BaseFeeBps, discount), nil
}

// GetLockStatus reports whether an account is locked as of now.
func (s *Service) GetLockStatus(ctx context.Context, accountID string, now int64) (*models.LockStatus, error) {
	acct, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &models.LockStatus{
		Locked:     now < acct.LockEndTime,
		UnlockTime: acct.LockEndTime,
		LockPeriod: acct.LockPeriod,
	}, nil
}

// IsBlacklisted reports blacklist membership.
func (s *Service) IsBlacklisted(ctx context.Context, accountID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, queryIsBlacklisted, accountID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return true, nil
}

// GetTransactionCount returns how many records an account's history holds.
func (s *Service) GetTransactionCount(ctx context.Context, accountID string) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, queryCountTransactions, accountID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func scanTransaction(row rowScanner) (*models.TransactionRecord, error) {
	var rec models.TransactionRecord
	var txType, amount, fee, balanceAfter string
	err := row.Scan(&rec.ID, &rec.AccountID, &txType, &amount, &fee, &balanceAfter,
		&rec.Timestamp, &rec.Reference, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	rec.Type = models.TransactionType(txType)
	if rec.Amount, err = parseBig(amount); err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	if rec.Fee, err = parseBig(fee); err != nil {
		return nil, fmt.Errorf("failed to parse fee: %w", err)
	}
	if rec.BalanceAfter, err = parseBig(balanceAfter); err != nil {
		return nil, fmt.Errorf("failed to parse balance_after: %w", err)
	}
	return &rec, nil
}

// GetTransactionByIndex returns the index-th record of an account's history
// in append order.
func (s *Service) GetTransactionByIndex(ctx context.Context, accountID string, index int64) (*models.TransactionRecord, error) {
	if index < 0 {
		return nil, fmt.Errorf("transaction index cannot be negative")
	}
	rec, err := scanTransaction(s.db.QueryRowContext(ctx, queryGetTransactionByIndex, accountID, index))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no transaction at index %d for account %s", index, accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction by index: %w", err)
	}
	return rec, nil
}

// GetTransactionHistory returns paginated history, newest first.
func (s *Service) GetTransactionHistory(ctx context.Context, accountID string, limit, offset int) ([]models.TransactionRecord, error) {
	rows, err := s.db.QueryContext(ctx, queryGetTransactionHistory, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var records []models.TransactionRecord
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return records, nil
}

// ReconcileAccount verifies that the stored balance matches the balance
// implied by replaying the account's full history. Interest claims and
// deposits credit the balance; withdrawals and internal-transfer debits
// reduce it by the gross amount (fees are part of the gross).
func (s *Service) ReconcileAccount(ctx context.Context, accountID string) error {
	acct, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}

	rows, err := s.db.QueryContext(ctx, queryReconcileAccount, accountID)
	if err != nil {
		return fmt.Errorf("failed to load transactions for reconcile: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	calculated := new(big.Int)
	for rows.Next() {
		var txType, amountStr, feeStr string
		if err := rows.Scan(&txType, &amountStr, &feeStr); err != nil {
			return fmt.Errorf("failed to scan transaction: %w", err)
		}
		amount, err := parseBig(amountStr)
		if err != nil {
			return err
		}
		switch models.TransactionType(txType) {
		case models.TxDeposit, models.TxInterestClaim:
			calculated.Add(calculated, amount)
		case models.TxWithdrawal, models.TxInternalTransfer:
			calculated.Sub(calculated, amount)
		default:
			return fmt.Errorf("unknown transaction type %q", txType)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating transaction rows: %w", err)
	}

	if acct.Balance.Cmp(calculated) != 0 {
		zap.L().Error("Balance reconciliation failed",
			zap.String("account_id", accountID),
			zap.String("current_balance", acct.Balance.String()),
			zap.String("calculated_balance", calculated.String()))
		return fmt.Errorf("balance mismatch: current=%s, calculated=%s", acct.Balance, calculated)
	}

	zap.L().Info("Balance reconciliation successful",
		zap.String("account_id", accountID),
		zap.String("balance", acct.Balance.String()))
	return nil
}
