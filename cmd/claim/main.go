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
	"errors"
	"flag"
	"fmt"

	"vault-ledger-go/internal/api"
	"vault-ledger-go/internal/common"
	"vault-ledger-go/internal/config"
	"vault-ledger-go/internal/vault"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	accountFlag := flag.String("account", "", "Account identifier (required)")
	referenceFlag := flag.String("reference", "", "External reference for idempotency (optional)")
	dryRunFlag := flag.Bool("dry-run", false, "Only show the pending interest, do not claim")
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

	if *dryRunFlag {
		pending, err := vaultService.PendingInterest(ctx, *accountFlag)
		if err != nil {
			zap.L().Fatal("Failed to project pending interest", zap.Error(err))
		}
		common.PrintHeader("PENDING INTEREST", common.DefaultWidth)
		fmt.Printf("Account: %s\n", *accountFlag)
		fmt.Printf("Pending: %s %s\n", common.FormatAmount(pending, cfg.Asset.Decimals), cfg.Asset.Symbol)
		common.PrintSeparator("=", common.DefaultWidth)
		return
	}

	result, err := vaultService.ClaimInterest(ctx, *accountFlag, *referenceFlag)
	if err != nil {
		if errors.Is(err, vault.ErrZeroAmount) {
			fmt.Println("Nothing to claim: no interest has accrued yet")
			return
		}
		common.PrintHeader("CLAIM FAILED", common.DefaultWidth)
		fmt.Printf("Account: %s\n", *accountFlag)
		fmt.Printf("Error:   %v\n", err)
		common.PrintSeparator("=", common.DefaultWidth)
		zap.L().Fatal("Interest claim failed", zap.Error(err))
	}

	common.PrintHeader("INTEREST CLAIMED", common.DefaultWidth)
	fmt.Printf("Account:     %s\n", result.AccountID)
	fmt.Printf("Interest:    %s %s\n", common.FormatAmount(result.Interest, cfg.Asset.Decimals), cfg.Asset.Symbol)
	fmt.Printf("Tier Bonus:  %s %s\n", common.FormatAmount(result.Bonus, cfg.Asset.Decimals), cfg.Asset.Symbol)
	fmt.Printf("New Balance: %s %s\n", common.FormatAmount(result.NewBalance, cfg.Asset.Decimals), cfg.Asset.Symbol)
	common.PrintSeparator("=", common.DefaultWidth)
}
