package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"vault-ledger-go/internal/models"
	"vault-ledger-go/internal/store"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func parseBig(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer amount %q", s)
	}
	return v, nil
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var acct models.Account
	var balance, deposited, withdrawn, pending, today string
	var lockPeriod, status, tier int64
	err := row.Scan(&acct.ID, &balance, &deposited, &withdrawn, &pending,
		&acct.LastInterestCheckpoint, &acct.LockEndTime, &today, &acct.LastWithdrawDay,
		&lockPeriod, &status, &tier, &acct.Version, &acct.CreatedAt, &acct.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if acct.Balance, err = parseBig(balance); err != nil {
		return nil, fmt.Errorf("failed to parse balance: %w", err)
	}
	if acct.TotalDeposited, err = parseBig(deposited); err != nil {
		return nil, fmt.Errorf("failed to parse total_deposited: %w", err)
	}
	if acct.TotalWithdrawn, err = parseBig(withdrawn); err != nil {
		return nil, fmt.Errorf("failed to parse total_withdrawn: %w", err)
	}
	if acct.PendingInterest, err = parseBig(pending); err != nil {
		return nil, fmt.Errorf("failed to parse pending_interest: %w", err)
	}
	if acct.WithdrawnToday, err = parseBig(today); err != nil {
		return nil, fmt.Errorf("failed to parse withdrawn_today: %w", err)
	}
	acct.LockPeriod = models.LockPeriod(lockPeriod)
	acct.Status = models.AccountStatus(status)
	acct.Tier = uint8(tier)
	return &acct, nil
}

// getAccountTx loads an account row inside a transaction, or nil when the
// identifier has never been touched.
func getAccountTx(ctx context.Context, tx *sql.Tx, accountID string) (*models.Account, error) {
	acct, err := scanAccount(tx.QueryRowContext(ctx, queryGetAccount, accountID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", accountID, err)
	}
	return acct, nil
}

// insertAccountTx creates a fresh account row.
func insertAccountTx(ctx context.Context, tx *sql.Tx, acct *models.Account) error {
	_, err := tx.ExecContext(ctx, queryInsertAccount,
		acct.ID, acct.Balance.String(), acct.TotalDeposited.String(),
		acct.TotalWithdrawn.String(), acct.PendingInterest.String(),
		acct.LastInterestCheckpoint, acct.LockEndTime, acct.WithdrawnToday.String(),
		acct.LastWithdrawDay, int64(acct.LockPeriod), int64(acct.Status),
		int64(acct.Tier), acct.Version)
	if err != nil {
		return fmt.Errorf("failed to create account %s: %w", acct.ID, err)
	}
	return nil
}

// updateAccountTx persists a mutated account with optimistic locking on the
// version read when the row was loaded.
func updateAccountTx(ctx context.Context, tx *sql.Tx, acct *models.Account) error {
	result, err := tx.ExecContext(ctx, queryUpdateAccount,
		acct.Balance.String(), acct.TotalDeposited.String(), acct.TotalWithdrawn.String(),
		acct.PendingInterest.String(), acct.LastInterestCheckpoint, acct.LockEndTime,
		acct.WithdrawnToday.String(), acct.LastWithdrawDay, int64(acct.LockPeriod),
		int64(acct.Status), int64(acct.Tier), acct.ID, acct.Version)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", acct.ID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("account update failed - %w", store.ErrConcurrentModification)
	}
	return nil
}

func scanParams(row rowScanner) (*models.VaultParams, error) {
	var p models.VaultParams
	var maxBalance, dailyLimit, feePool, deposited, fees string
	var paused int64
	err := row.Scan(&maxBalance, &dailyLimit, &p.BaseFeeBps, &p.BaseInterestRateBps,
		&p.EarlyWithdrawalPenaltyBps, &paused, &feePool, &deposited, &fees, &p.Version)
	if err != nil {
		return nil, err
	}
	if p.MaxBalance, err = parseBig(maxBalance); err != nil {
		return nil, fmt.Errorf("failed to parse max_balance: %w", err)
	}
	if p.DailyWithdrawLimit, err = parseBig(dailyLimit); err != nil {
		return nil, fmt.Errorf("failed to parse daily_withdraw_limit: %w", err)
	}
	if p.FeePool, err = parseBig(feePool); err != nil {
		return nil, fmt.Errorf("failed to parse fee_pool: %w", err)
	}
	if p.TotalDeposited, err = parseBig(deposited); err != nil {
		return nil, fmt.Errorf("failed to parse total_deposited: %w", err)
	}
	if p.TotalFeesCollected, err = parseBig(fees); err != nil {
		return nil, fmt.Errorf("failed to parse total_fees_collected: %w", err)
	}
	p.Paused = paused != 0
	return &p, nil
}

func loadParamsTx(ctx context.Context, tx *sql.Tx) (*models.VaultParams, error) {
	params, err := scanParams(tx.QueryRowContext(ctx, queryGetParams))
	if err != nil {
		return nil, fmt.Errorf("failed to load vault parameters: %w", err)
	}
	return params, nil
}

// saveParamsTx persists mutated vault parameters with optimistic locking.
func saveParamsTx(ctx context.Context, tx *sql.Tx, p *models.VaultParams) error {
	paused := 0
	if p.Paused {
		paused = 1
	}
	result, err := tx.ExecContext(ctx, queryUpdateParams,
		p.MaxBalance.String(), p.DailyWithdrawLimit.String(), p.BaseFeeBps,
		p.BaseInterestRateBps, p.EarlyWithdrawalPenaltyBps, paused,
		p.FeePool.String(), p.TotalDeposited.String(), p.TotalFeesCollected.String(),
		p.Version)
	if err != nil {
		return fmt.Errorf("failed to update vault parameters: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("parameter update failed - %w", store.ErrConcurrentModification)
	}
	return nil
}

func isBlacklistedTx(ctx context.Context, tx *sql.Tx, accountID string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, queryIsBlacklisted, accountID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return true, nil
}
