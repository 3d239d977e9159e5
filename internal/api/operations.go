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

package api

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"vault-ledger-go/internal/models"
	"vault-ledger-go/internal/store"
	"vault-ledger-go/internal/vault"

	"go.uber.org/zap"
)

// Deposit credits value into an account, optionally committing it to a lock
// period. An empty reference disables idempotency checking.
func (s *VaultService) Deposit(ctx context.Context, accountID, amount, lockPeriod, reference string) (*models.OperationResult, error) {
	if accountID == "" {
		return nil, fmt.Errorf("account_id is required")
	}
	value, err := parseBaseUnits(amount)
	if err != nil {
		return nil, err
	}
	period, err := models.ParseLockPeriod(lockPeriod)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Processing deposit",
		zap.String("account_id", accountID),
		zap.String("amount", value.String()),
		zap.String("lock_period", period.String()))

	result, err := s.store.Deposit(ctx, store.DepositParams{
		AccountID:  accountID,
		Amount:     value,
		LockPeriod: period,
		Now:        time.Now().Unix(),
		Reference:  reference,
	})
	if err != nil {
		zap.L().Error("Deposit failed",
			zap.String("account_id", accountID),
			zap.Error(err))
		return nil, err
	}
	return result, nil
}

// Withdraw pays value out of an account to an external destination, subject
// to lock, daily limit and fee rules.
func (s *VaultService) Withdraw(ctx context.Context, accountID, amount, destination, reference string) (*models.OperationResult, error) {
	if accountID == "" || destination == "" {
		return nil, fmt.Errorf("account_id and destination are required")
	}
	value, err := parseBaseUnits(amount)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Processing withdrawal",
		zap.String("account_id", accountID),
		zap.String("amount", value.String()),
		zap.String("destination", destination))

	result, err := s.store.Withdraw(ctx, store.WithdrawParams{
		AccountID:   accountID,
		Amount:      value,
		Destination: destination,
		Now:         time.Now().Unix(),
		Reference:   reference,
	})
	if err != nil {
		zap.L().Error("Withdrawal failed",
			zap.String("account_id", accountID),
			zap.Error(err))
		return nil, err
	}
	return result, nil
}

// EmergencyWithdraw exits the full balance immediately, paying the penalty if
// the account is still locked.
func (s *VaultService) EmergencyWithdraw(ctx context.Context, accountID, destination, reference string) (*models.OperationResult, error) {
	if accountID == "" || destination == "" {
		return nil, fmt.Errorf("account_id and destination are required")
	}

	zap.L().Warn("Processing emergency withdrawal",
		zap.String("account_id", accountID),
		zap.String("destination", destination))

	result, err := s.store.EmergencyWithdraw(ctx, store.EmergencyWithdrawParams{
		AccountID:   accountID,
		Destination: destination,
		Now:         time.Now().Unix(),
		Reference:   reference,
	})
	if err != nil {
		zap.L().Error("Emergency withdrawal failed",
			zap.String("account_id", accountID),
			zap.Error(err))
		return nil, err
	}
	return result, nil
}

// Transfer moves value between two accounts inside the vault.
func (s *VaultService) Transfer(ctx context.Context, fromID, toID, amount, reference string) (*models.OperationResult, error) {
	if fromID == "" {
		return nil, fmt.Errorf("from account_id is required")
	}
	value, err := parseBaseUnits(amount)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Processing internal transfer",
		zap.String("from", fromID),
		zap.String("to", toID),
		zap.String("amount", value.String()))

	result, err := s.store.InternalTransfer(ctx, store.TransferParams{
		FromID:    fromID,
		ToID:      toID,
		Amount:    value,
		Now:       time.Now().Unix(),
		Reference: reference,
	})
	if err != nil {
		zap.L().Error("Internal transfer failed",
			zap.String("from", fromID),
			zap.String("to", toID),
			zap.Error(err))
		return nil, err
	}
	return result, nil
}

// ClaimInterest settles an account's accrued interest plus tier bonus into
// its balance.
func (s *VaultService) ClaimInterest(ctx context.Context, accountID, reference string) (*models.ClaimResult, error) {
	if accountID == "" {
		return nil, fmt.Errorf("account_id is required")
	}

	result, err := s.store.ClaimInterest(ctx, store.ClaimParams{
		AccountID: accountID,
		Now:       time.Now().Unix(),
		Reference: reference,
	})
	if err != nil {
		zap.L().Error("Interest claim failed",
			zap.String("account_id", accountID),
			zap.Error(err))
		return nil, err
	}

	zap.L().Info("Interest claimed",
		zap.String("account_id", accountID),
		zap.String("interest", result.Interest.String()),
		zap.String("bonus", result.Bonus.String()))
	return result, nil
}

func parseBaseUnits(amount string) (*big.Int, error) {
	value, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q: expected base-unit integer", amount)
	}
	if value.Sign() <= 0 {
		return nil, vault.ErrZeroAmount
	}
	return value, nil
}
