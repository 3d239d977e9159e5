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

package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"vault-ledger-go/internal/api"
	"vault-ledger-go/internal/common"
	"vault-ledger-go/internal/config"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	accountFlag := flag.String("account", "", "Account identifier (required)")
	historyFlag := flag.Bool("history", false, "Also print recent transaction history")
	limitFlag := flag.Int("limit", 20, "History page size")
	offsetFlag := flag.Int("offset", 0, "History page offset")
	reconcileFlag := flag.Bool("reconcile", false, "Replay history and verify the stored balance")
	flag.Parse()

	if *accountFlag == "" {
		zap.L().Fatal("Invalid flags", zap.Error(fmt.Errorf("required flag: --account")))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer dbService.Close()

	vaultService := api.NewVaultService(dbService)

	snapshot, err := vaultService.Snapshot(ctx, *accountFlag)
	if err != nil {
		zap.L().Fatal("Failed to get account snapshot", zap.Error(err))
	}
	feeBps, err := vaultService.EffectiveFeeBps(ctx, *accountFlag)
	if err != nil {
		zap.L().Fatal("Failed to get effective fee", zap.Error(err))
	}
	lock, err := vaultService.LockStatus(ctx, *accountFlag)
	if err != nil {
		zap.L().Fatal("Failed to get lock status", zap.Error(err))
	}

	symbol := cfg.Asset.Symbol
	decimals := cfg.Asset.Decimals

	common.PrintHeader("ACCOUNT SNAPSHOT", common.DefaultWidth)
	fmt.Printf("Account:          %s\n", snapshot.ID)
	fmt.Printf("Status:           %s\n", snapshot.Status)
	fmt.Printf("Balance:          %s %s\n", common.FormatAmount(snapshot.Balance, decimals), symbol)
	fmt.Printf("Pending Interest: %s %s\n", common.FormatAmount(snapshot.PendingInterest, decimals), symbol)
	fmt.Printf("Total Deposited:  %s %s\n", common.FormatAmount(snapshot.TotalDeposited, decimals), symbol)
	fmt.Printf("Total Withdrawn:  %s %s\n", common.FormatAmount(snapshot.TotalWithdrawn, decimals), symbol)
	fmt.Printf("Loyalty Tier:     %d\n", snapshot.Tier)
	fmt.Printf("Withdrawal Fee:   %d bps\n", feeBps)
	if lock.Locked {
		fmt.Printf("Lock:             %s until %s\n",
			lock.LockPeriod, time.Unix(lock.UnlockTime, 0).UTC().Format("2006-01-02 15:04:05"))
	} else {
		fmt.Printf("Lock:             none\n")
	}
	common.PrintSeparator("=", common.DefaultWidth)

	if *reconcileFlag {
		if err := vaultService.Reconcile(ctx, *accountFlag); err != nil {
			zap.L().Fatal("Reconciliation failed", zap.Error(err))
		}
		fmt.Println("Reconciliation passed: stored balance matches replayed history")
	}

	if *historyFlag {
		records, err := vaultService.TransactionHistory(ctx, *accountFlag, *limitFlag, *offsetFlag)
		if err != nil {
			zap.L().Fatal("Failed to get transaction history", zap.Error(err))
		}

		common.PrintHeader("TRANSACTION HISTORY", common.DefaultWidth)
		if len(records) == 0 {
			fmt.Println("No transactions found")
		}
		for _, rec := range records {
			fmt.Printf("%s  %-18s %12s %s  fee=%s  balance=%s\n",
				time.Unix(rec.Timestamp, 0).UTC().Format("2006-01-02 15:04:05"),
				rec.Type,
				common.FormatAmount(rec.Amount, decimals), symbol,
				common.FormatAmount(rec.Fee, decimals),
				common.FormatAmount(rec.BalanceAfter, decimals))
		}
		common.PrintSeparator("=", common.DefaultWidth)
	}
}
