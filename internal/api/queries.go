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

	"go.uber.org/zap"
)

// Snapshot returns the read-only view of an account, including the pending
// interest projected to now.
func (s *VaultService) Snapshot(ctx context.Context, accountID string) (*models.AccountSnapshot, error) {
	if accountID == "" {
		return nil, fmt.Errorf("account_id is required")
	}

	now := time.Now().Unix()
	acct, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		zap.L().Error("Failed to get account",
			zap.String("account_id", accountID),
			zap.Error(err))
		return nil, err
	}
	pending, err := s.store.PendingInterestAt(ctx, accountID, now)
	if err != nil {
		return nil, err
	}

	return &models.AccountSnapshot{
		ID:              acct.ID,
		Balance:         acct.Balance,
		PendingInterest: pending,
		TotalDeposited:  acct.TotalDeposited,
		TotalWithdrawn:  acct.TotalWithdrawn,
		LockEndTime:     acct.LockEndTime,
		LockPeriod:      acct.LockPeriod,
		Status:          acct.Status,
		Tier:            acct.Tier,
	}, nil
}

// LockStatus reports whether an account's funds are currently time-locked.
func (s *VaultService) LockStatus(ctx context.Context, accountID string) (*models.LockStatus, error) {
	if accountID == "" {
		return nil, fmt.Errorf("account_id is required")
	}
	return s.store.GetLockStatus(ctx, accountID, time.Now().Unix())
}

// EffectiveFeeBps reports the withdrawal fee rate the account currently pays.
func (s *VaultService) EffectiveFeeBps(ctx context.Context, accountID string) (uint64, error) {
	if accountID == "" {
		return 0, fmt.Errorf("account_id is required")
	}
	return s.store.EffectiveFeeBps(ctx, accountID)
}

// PendingInterest projects the interest an account would receive if it
// claimed right now.
func (s *VaultService) PendingInterest(ctx context.Context, accountID string) (*big.Int, error) {
	if accountID == "" {
		return nil, fmt.Errorf("account_id is required")
	}
	return s.store.PendingInterestAt(ctx, accountID, time.Now().Unix())
}

// TransactionHistory returns paginated transaction history for an account.
func (s *VaultService) TransactionHistory(ctx context.Context, accountID string, limit, offset int) ([]models.TransactionRecord, error) {
	if accountID == "" {
		return nil, fmt.Errorf("account_id is required")
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	records, err := s.store.GetTransactionHistory(ctx, accountID, limit, offset)
	if err != nil {
		zap.L().Error("Failed to get transaction history",
			zap.String("account_id", accountID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve transaction history")
	}
	return records, nil
}

// Reconcile replays an account's history against its stored balance.
func (s *VaultService) Reconcile(ctx context.Context, accountID string) error {
	if accountID == "" {
		return fmt.Errorf("account_id is required")
	}
	return s.store.ReconcileAccount(ctx, accountID)
}
