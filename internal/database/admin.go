package database

import (
	"context"
	"crypto/subtle"
	"fmt"
	"math/big"

	"vault-ledger-go/internal/models"
	"vault-ledger-go/internal/store"
	"vault-ledger-go/internal/vault"

	"go.uber.org/zap"
)

// authorize gates the single-writer admin surface behind the shared admin
// key. An unset key leaves the surface fully closed.
func (s *Service) authorize(principal string) error {
	if s.adminKey == "" || subtle.ConstantTimeCompare([]byte(principal), []byte(s.adminKey)) != 1 {
		return vault.ErrUnauthorized
	}
	return nil
}

// mutateParams loads, mutates and saves the parameter row in one atomic unit.
func (s *Service) mutateParams(ctx context.Context, mutate func(*models.VaultParams) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	params, err := loadParamsTx(ctx, tx)
	if err != nil {
		return err
	}
	if err := mutate(params); err != nil {
		return err
	}
	if err := saveParamsTx(ctx, tx, params); err != nil {
		return err
	}
	return tx.Commit()
}

// SetPaused toggles the global pause flag.
func (s *Service) SetPaused(ctx context.Context, principal string, paused bool) error {
	if err := s.authorize(principal); err != nil {
		return err
	}
	err := s.mutateParams(ctx, func(p *models.VaultParams) error {
		p.Paused = paused
		return nil
	})
	if err != nil {
		return err
	}
	zap.L().Info("Vault pause flag updated", zap.Bool("paused", paused))
	return nil
}

// SetMaxBalance updates the per-account balance cap.
func (s *Service) SetMaxBalance(ctx context.Context, principal string, maxBalance *big.Int) error {
	if err := s.authorize(principal); err != nil {
		return err
	}
	if maxBalance == nil || maxBalance.Sign() <= 0 {
		return vault.ErrZeroAmount
	}
	return s.mutateParams(ctx, func(p *models.VaultParams) error {
		p.MaxBalance = new(big.Int).Set(maxBalance)
		return nil
	})
}

// SetDailyWithdrawLimit updates the rolling daily cap. Zero disables it.
func (s *Service) SetDailyWithdrawLimit(ctx context.Context, principal string, limit *big.Int) error {
	if err := s.authorize(principal); err != nil {
		return err
	}
	if limit == nil || limit.Sign() < 0 {
		return vault.ErrZeroAmount
	}
	return s.mutateParams(ctx, func(p *models.VaultParams) error {
		p.DailyWithdrawLimit = new(big.Int).Set(limit)
		return nil
	})
}

// SetBaseFee updates the base withdrawal fee, bounded at 10%.
func (s *Service) SetBaseFee(ctx context.Context, principal string, feeBps uint64) error {
	if err := s.authorize(principal); err != nil {
		return err
	}
	if feeBps > vault.MaxBaseFeeBps {
		return vault.ErrInvalidPercentage
	}
	return s.mutateParams(ctx, func(p *models.VaultParams) error {
		p.BaseFeeBps = feeBps
		return nil
	})
}

// AddToBlacklist blocks an account from all normal operations.
func (s *Service) AddToBlacklist(ctx context.Context, principal, accountID string) error {
	if err := s.authorize(principal); err != nil {
		return err
	}
	if accountID == "" {
		return vault.ErrZeroAddress
	}
	if _, err := s.db.ExecContext(ctx, queryInsertBlacklist, accountID); err != nil {
		return fmt.Errorf("failed to add to blacklist: %w", err)
	}
	zap.L().Info("Account blacklisted", zap.String("account_id", accountID))
	return nil
}

// RemoveFromBlacklist lifts a block.
func (s *Service) RemoveFromBlacklist(ctx context.Context, principal, accountID string) error {
	if err := s.authorize(principal); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, queryDeleteBlacklist, accountID); err != nil {
		return fmt.Errorf("failed to remove from blacklist: %w", err)
	}
	zap.L().Info("Account removed from blacklist", zap.String("account_id", accountID))
	return nil
}

// SetAccountFrozen freezes or unfreezes an account. Frozen accounts keep
// their balance and history but refuse every normal operation.
func (s *Service) SetAccountFrozen(ctx context.Context, principal, accountID string, frozen bool) error {
	if err := s.authorize(principal); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	acct, err := getAccountTx(ctx, tx, accountID)
	if err != nil {
		return err
	}
	if acct == nil {
		return store.ErrAccountNotFound
	}
	if frozen {
		acct.Status = models.StatusFrozen
	} else if acct.Status == models.StatusFrozen {
		acct.Status = models.StatusActive
	}
	if err := updateAccountTx(ctx, tx, acct); err != nil {
		return err
	}
	return tx.Commit()
}

// SwapOracle replaces the loyalty tier oracle. Pass nil to detach it; ledger
// operations then degrade to defaults per the adapter contract.
func (s *Service) SwapOracle(principal string, client store.TierOracle) error {
	if err := s.authorize(principal); err != nil {
		return err
	}
	s.tiers.Swap(client)
	zap.L().Info("Tier oracle swapped", zap.Bool("configured", client != nil))
	return nil
}

// SweepFees transfers the whole collected fee pool to an external
// destination. The pool is zeroed first inside the unit; a failed transfer
// rolls the zeroing back.
func (s *Service) SweepFees(ctx context.Context, principal, destination string, now int64) (*big.Int, error) {
	if err := s.authorize(principal); err != nil {
		return nil, err
	}
	if destination == "" {
		return nil, vault.ErrZeroAddress
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
	if params.FeePool.Sign() == 0 {
		return nil, vault.ErrZeroAmount
	}

	swept := new(big.Int).Set(params.FeePool)
	params.FeePool = new(big.Int)
	if err := saveParamsTx(ctx, tx, params); err != nil {
		return nil, err
	}

	if err := s.transfer(ctx, destination, swept); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.recordMirror(ctx, models.VaultEvent{
		Type:        models.EventFeeSweep,
		Destination: destination,
		Amount:      swept,
		Fee:         new(big.Int),
		Timestamp:   now,
	})

	zap.L().Info("Fee pool swept",
		zap.String("amount", swept.String()),
		zap.String("destination", destination))
	return swept, nil
}
