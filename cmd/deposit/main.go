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

type depositRequest struct {
	accountID string
	amount    string
	lock      string
	reference string
}

func parseAndValidateFlags() (*depositRequest, error) {
	accountFlag := flag.String("account", "", "Account identifier (required)")
	amountFlag := flag.String("amount", "", "Amount to deposit, e.g. 1.5 (required)")
	lockFlag := flag.String("lock", "flexible", "Lock period: flexible, short, medium, long")
	referenceFlag := flag.String("reference", "", "External reference for idempotency (optional)")
	flag.Parse()

	if *accountFlag == "" || *amountFlag == "" {
		return nil, fmt.Errorf("required flags: --account, --amount")
	}

	return &depositRequest{
		accountID: *accountFlag,
		amount:    *amountFlag,
		lock:      *lockFlag,
		reference: *referenceFlag,
	}, nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	req, err := parseAndValidateFlags()
	if err != nil {
		zap.L().Fatal("Invalid flags", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	dbService, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer dbService.Close()

	baseUnits, err := common.ParseAmount(req.amount, cfg.Asset.Decimals)
	if err != nil {
		zap.L().Fatal("Invalid amount", zap.String("amount", req.amount), zap.Error(err))
	}

	vaultService := api.NewVaultService(dbService)
	result, err := vaultService.Deposit(ctx, req.accountID, baseUnits.String(), req.lock, req.reference)
	if err != nil {
		common.PrintHeader("DEPOSIT FAILED", common.DefaultWidth)
		fmt.Printf("Account: %s\n", req.accountID)
		fmt.Printf("Error:   %v\n", err)
		common.PrintSeparator("=", common.DefaultWidth)
		zap.L().Fatal("Deposit failed", zap.Error(err))
	}

	common.PrintHeader("DEPOSIT COMPLETED", common.DefaultWidth)
	fmt.Printf("Account:     %s\n", result.AccountID)
	fmt.Printf("Amount:      %s %s\n", common.FormatAmount(result.Amount, cfg.Asset.Decimals), cfg.Asset.Symbol)
	fmt.Printf("Lock Period: %s\n", req.lock)
	fmt.Printf("New Balance: %s %s\n", common.FormatAmount(result.NewBalance, cfg.Asset.Decimals), cfg.Asset.Symbol)
	common.PrintSeparator("=", common.DefaultWidth)
}
