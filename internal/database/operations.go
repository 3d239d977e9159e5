/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

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

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// checkDuplicateReferenceTx rejects a reuse of an external reference so
// retried calls stay idempotent.
func checkDuplicateReferenceTx(ctx context.Context, tx *sql.Tx, reference string) error {
	if reference == "" {
		return nil
	}
	var existing string
	err := tx.QueryRowContext(ctx, queryCheckDuplicateReference, reference).Scan(&existing)
	if err == nil {
		return fmt.Errorf("%w: reference %s already exists", store.ErrDuplicateTransaction, reference)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check for duplicate reference: %w", err)
	}
	return nil
}

// insertTransactionTx appends one immutable record to an account's history.
func insertTransactionTx(ctx context.Context, tx *sql.Tx, accountID string, txType models.TransactionType,
	amount, fee, balanceAfter *big.Int, ts int64, reference string) (*models.TransactionRecord, error) {

	rec := &models.TransactionRecord{
		ID:           uuid.New().String(),
		AccountID:    accountID,
		Type:         txType,
		Amount:       new(big.Int).Set(amount),
		Fee:          new(big.Int).Set(fee),
		BalanceAfter: new(big.Int).Set(balanceAfter),
		Timestamp:    ts,
		Reference:    reference,
	}
	_, err := tx.ExecContext(ctx, queryInsertTransaction,
		rec.ID, rec.AccountID, string(rec.Type), rec.Amount.String(), rec.Fee.String(),
		rec.BalanceAfter.String(), rec.Timestamp, rec.Reference)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return rec, nil
}

// Deposit credits already-received value to an account, setting the lock
// clock for the selected period. Selecting a new lock period on a top-up
// always overwrites the previous unlock time, even when that shortens it.
func (s *Service) Deposit(ctx context.Context, p store.DepositParams) (*models.OperationResult, error) {
	if p.Amount == nil || p.Amount.Sign() <= 0 {
		return nil, vault.ErrZeroAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	params, err := loadParamsTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	if params.Paused {
		return nil, vault.ErrPaused
	}
	if blocked, err := isBlacklistedTx(ctx, tx, p.AccountID); err != nil {
		return nil, err
	} else if blocked {
		return nil, &vault.BlacklistedError{AccountID: p.AccountID}
	}
	if err := checkDuplicateReferenceTx(ctx, tx, p.Reference); err != nil {
		return nil, err
	}

	acct, err := getAccountTx(ctx, tx, p.AccountID)
	if err != nil {
		return nil, err
	}
	created := acct == nil
	if created {
		acct = models.NewAccount(p.AccountID)
	}

	newBalance := new(big.Int).Add(acct.Balance, p.Amount)
	if newBalance.Cmp(params.MaxBalance) > 0 {
		return nil, &vault.CapacityExceededError{
			Current:   new(big.Int).Set(acct.Balance),
			Attempted: new(big.Int).Set(p.Amount),
			Max:       new(big.Int).Set(params.MaxBalance),
		}
	}

	// Fold in interest earned on the prior balance before it changes.
	vault.Accrue(acct, params, p.Now)

	if acct.Status == models.StatusInactive {
		acct.Status = models.StatusActive
	}
	acct.LockPeriod = p.LockPeriod
	acct.LockEndTime = vault.LockEndTime(p.LockPeriod, p.Now)
	acct.Balance = newBalance
	acct.TotalDeposited.Add(acct.TotalDeposited, p.Amount)
	params.TotalDeposited.Add(params.TotalDeposited, p.Amount)

	// Opportunistic tier refresh; a failing oracle keeps the cached tier.
	acct.Tier = s.tiers.Tier(ctx, p.AccountID, acct.Tier)

	if created {
		err = insertAccountTx(ctx, tx, acct)
	} else {
		err = updateAccountTx(ctx, tx, acct)
	}
	if err != nil {
		return nil, err
	}
	if err := saveParamsTx(ctx, tx, params); err != nil {
		return nil, err
	}

	rec, err := insertTransactionTx(ctx, tx, p.AccountID, models.TxDeposit,
		p.Amount, new(big.Int), acct.Balance, p.Now, p.Reference)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.recordMirror(ctx, models.VaultEvent{
		Type:      models.EventDeposit,
		AccountID: p.AccountID,
		Amount:    rec.Amount,
		Fee:       rec.Fee,
		Timestamp: p.Now,
		Reference: p.Reference,
	})

	zap.L().Info("Deposit processed successfully",
		zap.String("account_id", p.AccountID),
		zap.String("amount", p.Amount.String()),
		zap.String("lock_period", p.LockPeriod.String()),
		zap.String("new_balance", acct.Balance.String()))

	return &models.OperationResult{
		AccountID:  p.AccountID,
		Type:       models.TxDeposit,
		Amount:     rec.Amount,
		Fee:        rec.Fee,
		NewBalance: new(big.Int).Set(acct.Balance),
		RecordID:   rec.ID,
	}, nil
}

// DepositFlexible is the convenience entry point for plain deposits: it
// credits the caller's own account with no lock.
func (s *Service) DepositFlexible(ctx context.Context, accountID string, amount *big.Int, now int64, reference string) (*models.OperationResult, error) {
	return s.Deposit(ctx, store.DepositParams{
		AccountID:  accountID,
		Amount:     amount,
		LockPeriod: models.LockFlexible,
		Now:        now,
		Reference:  reference,
	})
}

// Withdraw debits an unlocked account and pays out amount minus fee to an
// external destination. The external transfer runs after all internal state
// is staged; if it fails, nothing commits.
func (s *Service) Withdraw(ctx context.Context, p store.WithdrawParams) (*models.OperationResult, error) {
	if p.Amount == nil || p.Amount.Sign() <= 0 {
		return nil, vault.ErrZeroAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	params, err := loadParamsTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	if params.Paused {
		return nil, vault.ErrPaused
	}
	if blocked, err := isBlacklistedTx(ctx, tx, p.AccountID); err != nil {
		return nil, err
	} else if blocked {
		return nil, &vault.BlacklistedError{AccountID: p.AccountID}
	}
	if err := checkDuplicateReferenceTx(ctx, tx, p.Reference); err != nil {
		return nil, err
	}

	acct, err := getAccountTx(ctx, tx, p.AccountID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, store.ErrAccountNotFound
	}
	if !acct.Status.CanTransact() {
		return nil, &vault.AccountNotActiveError{AccountID: p.AccountID, Status: acct.Status.String()}
	}
	if p.Now < acct.LockEndTime {
		return nil, &vault.FundsLockedError{UnlockTime: acct.LockEndTime, Now: p.Now}
	}
	if acct.Balance.Cmp(p.Amount) < 0 {
		return nil, &vault.InsufficientBalanceError{
			Available: new(big.Int).Set(acct.Balance),
			Requested: new(big.Int).Set(p.Amount),
		}
	}
	if err := vault.CheckDailyLimit(acct, params, p.Amount, p.Now); err != nil {
		return nil, err
	}

	vault.Accrue(acct, params, p.Now)

	discount := s.tiers.Discount(ctx, p.AccountID)
	fee := vault.Fee(p.Amount, vault.EffectiveFeeBps(params.BaseFeeBps, discount))

	acct.Balance.Sub(acct.Balance, p.Amount)
	acct.TotalWithdrawn.Add(acct.TotalWithdrawn, p.Amount)
	vault.ApplyDailyWithdrawal(acct, p.Amount, p.Now)
	params.FeePool.Add(params.FeePool, fee)
	params.TotalFeesCollected.Add(params.TotalFeesCollected, fee)

	if err := updateAccountTx(ctx, tx, acct); err != nil {
		return nil, err
	}
	if err := saveParamsTx(ctx, tx, params); err != nil {
		return nil, err
	}

	rec, err := insertTransactionTx(ctx, tx, p.AccountID, models.TxWithdrawal,
		p.Amount, fee, acct.Balance, p.Now, p.Reference)
	if err != nil {
		return nil, err
	}

	net := new(big.Int).Sub(p.Amount, fee)
	if err := s.transfer(ctx, p.Destination, net); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.recordMirror(ctx, models.VaultEvent{
		Type:        models.EventWithdrawal,
		AccountID:   p.AccountID,
		Destination: p.Destination,
		Amount:      rec.Amount,
		Fee:         rec.Fee,
		Timestamp:   p.Now,
		Reference:   p.Reference,
	})

	zap.L().Info("Withdrawal processed successfully",
		zap.String("account_id", p.AccountID),
		zap.String("amount", p.Amount.String()),
		zap.String("fee", fee.String()),
		zap.String("destination", p.Destination),
		zap.String("new_balance", acct.Balance.String()))

	return &models.OperationResult{
		AccountID:  p.AccountID,
		Type:       models.TxWithdrawal,
		Amount:     rec.Amount,
		Fee:        rec.Fee,
		NewBalance: new(big.Int).Set(acct.Balance),
		RecordID:   rec.ID,
	}, nil
}

// EmergencyWithdraw pays out the full balance immediately, bypassing the
// lock. A still-locked exit is charged the early-withdrawal penalty on top of
// the normal fee; the deduction is clamped so the payout never goes negative.
func (s *Service) EmergencyWithdraw(ctx context.Context, p store.EmergencyWithdrawParams) (*models.OperationResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	params, err := loadParamsTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := checkDuplicateReferenceTx(ctx, tx, p.Reference); err != nil {
		return nil, err
	}

	acct, err := getAccountTx(ctx, tx, p.AccountID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, store.ErrAccountNotFound
	}
	if !acct.Status.CanTransact() {
		return nil, &vault.AccountNotActiveError{AccountID: p.AccountID, Status: acct.Status.String()}
	}
	if acct.Balance.Sign() == 0 {
		return nil, vault.ErrZeroAmount
	}

	vault.Accrue(acct, params, p.Now)

	gross := new(big.Int).Set(acct.Balance)
	discount := s.tiers.Discount(ctx, p.AccountID)
	deduction := vault.Fee(gross, vault.EffectiveFeeBps(params.BaseFeeBps, discount))
	if p.Now < acct.LockEndTime {
		deduction.Add(deduction, vault.Penalty(gross, params.EarlyWithdrawalPenaltyBps))
	}
	deduction = vault.ClampDeduction(deduction, gross)
	net := new(big.Int).Sub(gross, deduction)

	acct.Balance = new(big.Int)
	acct.TotalWithdrawn.Add(acct.TotalWithdrawn, gross)
	acct.LockEndTime = 0
	acct.LockPeriod = models.LockFlexible
	params.FeePool.Add(params.FeePool, deduction)
	params.TotalFeesCollected.Add(params.TotalFeesCollected, deduction)

	if err := updateAccountTx(ctx, tx, acct); err != nil {
		return nil, err
	}
	if err := saveParamsTx(ctx, tx, params); err != nil {
		return nil, err
	}

	rec, err := insertTransactionTx(ctx, tx, p.AccountID, models.TxWithdrawal,
		gross, deduction, acct.Balance, p.Now, p.Reference)
	if err != nil {
		return nil, err
	}

	if net.Sign() > 0 {
		if err := s.transfer(ctx, p.Destination, net); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.recordMirror(ctx, models.VaultEvent{
		Type:        models.EventWithdrawal,
		AccountID:   p.AccountID,
		Destination: p.Destination,
		Amount:      rec.Amount,
		Fee:         rec.Fee,
		Timestamp:   p.Now,
		Reference:   p.Reference,
	})

	zap.L().Info("Emergency withdrawal processed",
		zap.String("account_id", p.AccountID),
		zap.String("gross", gross.String()),
		zap.String("deduction", deduction.String()),
		zap.String("net", net.String()),
		zap.String("destination", p.Destination))

	return &models.OperationResult{
		AccountID:  p.AccountID,
		Type:       models.TxWithdrawal,
		Amount:     rec.Amount,
		Fee:        rec.Fee,
		NewBalance: new(big.Int),
		RecordID:   rec.ID,
	}, nil
}

// InternalTransfer moves balance between two ledger entries in one atomic
// unit. No fee is charged and no external transfer happens.
func (s *Service) InternalTransfer(ctx context.Context, p store.TransferParams) (*models.OperationResult, error) {
	if p.Amount == nil || p.Amount.Sign() <= 0 {
		return nil, vault.ErrZeroAmount
	}
	if p.ToID == "" {
		return nil, vault.ErrZeroAddress
	}
	if p.ToID == p.FromID {
		return nil, vault.ErrSelfTransfer
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	params, err := loadParamsTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	for _, id := range []string{p.FromID, p.ToID} {
		if blocked, err := isBlacklistedTx(ctx, tx, id); err != nil {
			return nil, err
		} else if blocked {
			return nil, &vault.BlacklistedError{AccountID: id}
		}
	}
	if err := checkDuplicateReferenceTx(ctx, tx, p.Reference); err != nil {
		return nil, err
	}

	from, err := getAccountTx(ctx, tx, p.FromID)
	if err != nil {
		return nil, err
	}
	if from == nil {
		return nil, store.ErrAccountNotFound
	}
	if !from.Status.CanTransact() {
		return nil, &vault.AccountNotActiveError{AccountID: p.FromID, Status: from.Status.String()}
	}
	if p.Now < from.LockEndTime {
		return nil, &vault.FundsLockedError{UnlockTime: from.LockEndTime, Now: p.Now}
	}
	if from.Balance.Cmp(p.Amount) < 0 {
		return nil, &vault.InsufficientBalanceError{
			Available: new(big.Int).Set(from.Balance),
			Requested: new(big.Int).Set(p.Amount),
		}
	}

	to, err := getAccountTx(ctx, tx, p.ToID)
	if err != nil {
		return nil, err
	}
	toCreated := to == nil
	if toCreated {
		to = models.NewAccount(p.ToID)
	}

	// Checkpoint both sides against their pre-transfer balances.
	vault.Accrue(from, params, p.Now)
	vault.Accrue(to, params, p.Now)

	from.Balance.Sub(from.Balance, p.Amount)
	to.Balance.Add(to.Balance, p.Amount)
	if to.Status == models.StatusInactive {
		to.Status = models.StatusActive
	}

	if err := updateAccountTx(ctx, tx, from); err != nil {
		return nil, err
	}
	if toCreated {
		err = insertAccountTx(ctx, tx, to)
	} else {
		err = updateAccountTx(ctx, tx, to)
	}
	if err != nil {
		return nil, err
	}

	zero := new(big.Int)
	rec, err := insertTransactionTx(ctx, tx, p.FromID, models.TxInternalTransfer,
		p.Amount, zero, from.Balance, p.Now, p.Reference)
	if err != nil {
		return nil, err
	}
	creditRef := ""
	if p.Reference != "" {
		creditRef = p.Reference + "-credit"
	}
	if _, err := insertTransactionTx(ctx, tx, p.ToID, models.TxDeposit,
		p.Amount, zero, to.Balance, p.Now, creditRef); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.recordMirror(ctx, models.VaultEvent{
		Type:           models.EventInternalTransfer,
		AccountID:      p.FromID,
		CounterpartyID: p.ToID,
		Amount:         rec.Amount,
		Fee:            zero,
		Timestamp:      p.Now,
		Reference:      p.Reference,
	})

	zap.L().Info("Internal transfer processed",
		zap.String("from", p.FromID),
		zap.String("to", p.ToID),
		zap.String("amount", p.Amount.String()))

	return &models.OperationResult{
		AccountID:  p.FromID,
		Type:       models.TxInternalTransfer,
		Amount:     rec.Amount,
		Fee:        zero,
		NewBalance: new(big.Int).Set(from.Balance),
		RecordID:   rec.ID,
	}, nil
}

// ClaimInterest folds accrued interest plus the loyalty tier bonus into the
// balance and zeroes the pending amount.
func (s *Service) ClaimInterest(ctx context.Context, p store.ClaimParams) (*models.ClaimResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	params, err := loadParamsTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := checkDuplicateReferenceTx(ctx, tx, p.Reference); err != nil {
		return nil, err
	}

	acct, err := getAccountTx(ctx, tx, p.AccountID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, store.ErrAccountNotFound
	}
	if !acct.Status.CanTransact() {
		return nil, &vault.AccountNotActiveError{AccountID: p.AccountID, Status: acct.Status.String()}
	}

	vault.Accrue(acct, params, p.Now)
	if acct.PendingInterest.Sign() == 0 {
		return nil, vault.ErrZeroAmount
	}

	interest := new(big.Int).Set(acct.PendingInterest)
	bonus := vault.ClaimBonus(interest, acct.Tier)
	payout := new(big.Int).Add(interest, bonus)

	acct.Balance.Add(acct.Balance, payout)
	acct.PendingInterest = new(big.Int)

	if err := updateAccountTx(ctx, tx, acct); err != nil {
		return nil, err
	}

	rec, err := insertTransactionTx(ctx, tx, p.AccountID, models.TxInterestClaim,
		payout, new(big.Int), acct.Balance, p.Now, p.Reference)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.recordMirror(ctx, models.VaultEvent{
		Type:      models.EventInterestClaim,
		AccountID: p.AccountID,
		Amount:    rec.Amount,
		Fee:       rec.Fee,
		Timestamp: p.Now,
		Reference: p.Reference,
	})

	zap.L().Info("Interest claim processed",
		zap.String("account_id", p.AccountID),
		zap.String("interest", interest.String()),
		zap.String("bonus", bonus.String()),
		zap.String("new_balance", acct.Balance.String()))

	return &models.ClaimResult{
		AccountID:  p.AccountID,
		Interest:   interest,
		Bonus:      bonus,
		NewBalance: new(big.Int).Set(acct.Balance),
	}, nil
}

// transfer invokes the external settlement backend.
func (s *Service) transfer(ctx context.Context, destination string, amount *big.Int) error {
	if s.transferer == nil {
		return fmt.Errorf("%w: no settlement backend configured", vault.ErrTransferFailed)
	}
	if err := s.transferer.Transfer(ctx, destination, amount); err != nil {
		return fmt.Errorf("%w: %v", vault.ErrTransferFailed, err)
	}
	return nil
}
