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
	"fmt"

	"vault-ledger-go/internal/models"
	"vault-ledger-go/internal/oracle"
	"vault-ledger-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.VaultStore.
var _ store.VaultStore = (*Service)(nil)

// Service is the SQLite-backed vault ledger. Every public operation runs as
// one database transaction: checks, then effects, then (for money-moving
// operations) the external transfer, and only then the commit. A failed
// transfer rolls the whole unit back.
type Service struct {
	db         *sql.DB
	transferer store.Transferer
	tiers      *oracle.Adapter
	mirror     store.EventMirror
	adminKey   string
}

// Option configures optional collaborators on the service.
type Option func(*Service)

// WithTransferer attaches the external settlement backend.
func WithTransferer(t store.Transferer) Option {
	return func(s *Service) { s.transferer = t }
}

// WithTierOracle attaches the loyalty tier oracle adapter.
func WithTierOracle(a *oracle.Adapter) Option {
	return func(s *Service) { s.tiers = a }
}

// WithMirror attaches the best-effort audit mirror.
func WithMirror(m store.EventMirror) Option {
	return func(s *Service) { s.mirror = m }
}

// WithAdminKey sets the shared key authorizing the admin surface. An empty
// key leaves every admin call unauthorized.
func WithAdminKey(key string) Option {
	return func(s *Service) { s.adminKey = key }
}

// NewService opens the SQLite store, initializes the schema and seeds the
// vault parameters row if it does not exist yet.
func NewService(ctx context.Context, cfg models.DatabaseConfig, seed *models.VaultParams, opts ...Option) (*Service, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}
	if seed == nil {
		return nil, fmt.Errorf("vault parameter seed cannot be nil")
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db, tiers: oracle.NewAdapter(nil)}
	for _, opt := range opts {
		opt(service)
	}

	if err := service.initSchema(seed); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Vault store initialized successfully")
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) initSchema(seed *models.VaultParams) error {
	schema := `
	-- Accounts Table (Current State - Hot Data)
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		balance TEXT NOT NULL DEFAULT '0',
		total_deposited TEXT NOT NULL DEFAULT '0',
		total_withdrawn TEXT NOT NULL DEFAULT '0',
		pending_interest TEXT NOT NULL DEFAULT '0',
		last_interest_checkpoint INTEGER NOT NULL DEFAULT 0,
		lock_end_time INTEGER NOT NULL DEFAULT 0,
		withdrawn_today TEXT NOT NULL DEFAULT '0',
		last_withdraw_day INTEGER NOT NULL DEFAULT 0,
		lock_period INTEGER NOT NULL DEFAULT 0,
		status INTEGER NOT NULL DEFAULT 0,
		tier INTEGER NOT NULL DEFAULT 0,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Transactions Table (Append-Only Audit Trail - Cold Data)
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		tx_type TEXT NOT NULL,
		amount TEXT NOT NULL,
		fee TEXT NOT NULL DEFAULT '0',
		balance_after TEXT NOT NULL,
		ts INTEGER NOT NULL,
		reference TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_reference ON transactions(reference);
	CREATE INDEX IF NOT EXISTS idx_transactions_ts ON transactions(ts);

	-- Global Vault Parameters (singleton row)
	CREATE TABLE IF NOT EXISTS vault_params (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		max_balance TEXT NOT NULL,
		daily_withdraw_limit TEXT NOT NULL,
		base_fee_bps INTEGER NOT NULL,
		base_interest_rate_bps INTEGER NOT NULL,
		early_withdrawal_penalty_bps INTEGER NOT NULL,
		paused INTEGER NOT NULL DEFAULT 0,
		fee_pool TEXT NOT NULL DEFAULT '0',
		total_deposited TEXT NOT NULL DEFAULT '0',
		total_fees_collected TEXT NOT NULL DEFAULT '0',
		version INTEGER NOT NULL DEFAULT 1,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Blacklist membership set
	CREATE TABLE IF NOT EXISTS blacklist (
		account_id TEXT PRIMARY KEY,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Seed the parameters row only on first run; later runs keep whatever the
	// admin surface has configured since.
	_, err := s.db.Exec(queryInsertParams,
		seed.MaxBalance.String(),
		seed.DailyWithdrawLimit.String(),
		seed.BaseFeeBps,
		seed.BaseInterestRateBps,
		seed.EarlyWithdrawalPenaltyBps,
	)
	return err
}

// recordMirror hands a committed event to the audit mirror, if configured.
// Mirror failures are logged and swallowed; the operation already committed.
func (s *Service) recordMirror(ctx context.Context, ev models.VaultEvent) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Record(ctx, ev); err != nil {
		zap.L().Warn("Audit mirror record failed",
			zap.String("event_type", ev.Type),
			zap.String("account_id", ev.AccountID),
			zap.Error(err))
	}
}
