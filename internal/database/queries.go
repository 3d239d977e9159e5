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

const (
	// Account queries
	queryGetAccount = `
		SELECT id, balance, total_deposited, total_withdrawn, pending_interest,
		       last_interest_checkpoint, lock_end_time, withdrawn_today, last_withdraw_day,
		       lock_period, status, tier, version, created_at, updated_at
		FROM accounts
		WHERE id = ?`

	queryInsertAccount = `
		INSERT INTO accounts (
			id, balance, total_deposited, total_withdrawn, pending_interest,
			last_interest_checkpoint, lock_end_time, withdrawn_today, last_withdraw_day,
			lock_period, status, tier, version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryUpdateAccount = `
		UPDATE accounts
		SET balance = ?, total_deposited = ?, total_withdrawn = ?, pending_interest = ?,
		    last_interest_checkpoint = ?, lock_end_time = ?, withdrawn_today = ?,
		    last_withdraw_day = ?, lock_period = ?, status = ?, tier = ?,
		    version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (id, account_id, tx_type, amount, fee, balance_after, ts, reference)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	queryCheckDuplicateReference = `
		SELECT id FROM transactions WHERE reference = ? LIMIT 1`

	queryCountTransactions = `
		SELECT COUNT(*) FROM transactions WHERE account_id = ?`

	queryGetTransactionByIndex = `
		SELECT id, account_id, tx_type, amount, fee, balance_after, ts, reference, created_at
		FROM transactions
		WHERE account_id = ?
		ORDER BY rowid
		LIMIT 1 OFFSET ?`

	queryGetTransactionHistory = `
		SELECT id, account_id, tx_type, amount, fee, balance_after, ts, reference, created_at
		FROM transactions
		WHERE account_id = ?
		ORDER BY rowid DESC
		LIMIT ? OFFSET ?`

	queryReconcileAccount = `
		SELECT tx_type, amount, fee
		FROM transactions
		WHERE account_id = ?
		ORDER BY rowid`

	// Vault parameter queries (singleton row, id = 1)
	queryGetParams = `
		SELECT max_balance, daily_withdraw_limit, base_fee_bps, base_interest_rate_bps,
		       early_withdrawal_penalty_bps, paused, fee_pool, total_deposited,
		       total_fees_collected, version
		FROM vault_params
		WHERE id = 1`

	queryInsertParams = `
		INSERT OR IGNORE INTO vault_params (
			id, max_balance, daily_withdraw_limit, base_fee_bps, base_interest_rate_bps,
			early_withdrawal_penalty_bps, paused, fee_pool, total_deposited,
			total_fees_collected, version
		) VALUES (1, ?, ?, ?, ?, ?, 0, '0', '0', '0', 1)`

	queryUpdateParams = `
		UPDATE vault_params
		SET max_balance = ?, daily_withdraw_limit = ?, base_fee_bps = ?,
		    base_interest_rate_bps = ?, early_withdrawal_penalty_bps = ?, paused = ?,
		    fee_pool = ?, total_deposited = ?, total_fees_collected = ?,
		    version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = 1 AND version = ?`

	// Blacklist queries
	queryIsBlacklisted = `
		SELECT 1 FROM blacklist WHERE account_id = ? LIMIT 1`

	queryInsertBlacklist = `
		INSERT OR IGNORE INTO blacklist (account_id) VALUES (?)`

	queryDeleteBlacklist = `
		DELETE FROM blacklist WHERE account_id = ?`
)
