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

	"vault-ledger-go/internal/api"
	"vault-ledger-go/internal/common"
	"vault-ledger-go/internal/config"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	fromFlag := flag.String("from", "", "Source account identifier (required)")
	toFlag := flag.String("to", "", "Destination account identifier (required)")
	amountFlag := flag.String("amount", "", "Amount to transfer, e.g. 1.5 (required)")
	referenceFlag := flag.String("reference", "", "External reference for idempotency (optional)")
	flag.Parse()

	if *fromFlag == "" || *toFlag == "" || *amountFlag == "" {
		zap.L().Fatal("Invalid flags", zap.Error(fmt.Errorf("required flags: --from, --to, --amount")))
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

	baseUnits, err := common.ParseAmount(*amountFlag, cfg.Asset.Decimals)
	if err != nil {
		zap.L().Fatal("Invalid amount", zap.String("amount", *amountFlag), zap.Error(err))
	}

	vaultService := api.NewVaultService(dbService)
	result, err := vaultService.Transfer(ctx, *fromFlag, *toFlag, baseUnits.String(), *referenceFlag)
	if err != nil {
		common.PrintHeader("TRANSFER FAILED", common.DefaultWidth)
		fmt.Printf("From:  %s\n", *fromFlag)
		fmt.Printf("To:    %s\n", *toFlag)
		fmt.Printf("Error: %v\n", err)
		common.PrintSeparator("=", common.DefaultWidth)
		zap.L().Fatal("Internal transfer failed", zap.Error(err))
	}

	common.PrintHeader("TRANSFER COMPLETED", common.DefaultWidth)
	fmt.Printf("From:        %s\n", *fromFlag)
	fmt.Printf("To:          %s\n", *toFlag)
	fmt.Printf("Amount:      %s %s\n", common.FormatAmount(result.Amount, cfg.Asset.Decimals), cfg.Asset.Symbol)
	fmt.Printf("New Balance: %s %s\n", common.FormatAmount(result.NewBalance, cfg.Asset.Decimals), cfg.Asset.Symbol)
	common.PrintSeparator("=", common.DefaultWidth)
}
