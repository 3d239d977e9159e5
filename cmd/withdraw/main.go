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
	"vault-ledger-go/internal/models"
	"vault-ledger-go/internal/vault"

	"go.uber.org/zap"
)

type withdrawRequest struct {
	accountID   string
	amount      string
	destination string
	reference   string
	emergency   bool
}

func parseAndValidateFlags() (*withdrawRequest, error) {
	accountFlag := flag.String("account", "", "Account identifier (required)")
	amountFlag := flag.String("amount", "", "Amount to withdraw, e.g. 1.5 (required unless --emergency)")
	destinationFlag := flag.String("destination", "", "Destination address (required)")
	referenceFlag := flag.String("reference", "", "External reference for idempotency (optional)")
	emergencyFlag := flag.Bool("emergency", false, "Exit the full balance immediately, paying the penalty if locked")
	flag.Parse()

	if *accountFlag == "" || *destinationFlag == "" {
		return nil, fmt.Errorf("required flags: --account, --destination")
	}
	if !*emergencyFlag && *amountFlag == "" {
		return nil, fmt.Errorf("--amount is required unless --emergency is set")
	}

	return &withdrawRequest{
		accountID:   *accountFlag,
		amount:      *amountFlag,
		destination: *destinationFlag,
		reference:   *referenceFlag,
		emergency:   *emergencyFlag,
	}, nil
}

func explainFailure(err error) {
	var locked *vault.FundsLockedError
	var insufficient *vault.InsufficientBalanceError
	var daily *vault.DailyLimitExceededError

	switch {
	case errors.As(err, &locked):
		fmt.Printf("Funds are locked until unix time %d\n", locked.UnlockTime)
		fmt.Println("Use --emergency to exit early and pay the penalty")
	case errors.As(err, &insufficient):
		fmt.Printf("Insufficient balance: available=%s, requested=%s\n",
			insufficient.Available, insufficient.Requested)
	case errors.As(err, &daily):
		fmt.Printf("Daily withdrawal limit exceeded: withdrawn today=%s, limit=%s\n",
			daily.WithdrawnToday, daily.Limit)
		fmt.Println("Try again after the day rolls over")
	case errors.Is(err, vault.ErrPaused):
		fmt.Println("The vault is paused")
	}
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

	vaultService := api.NewVaultService(dbService)

	var result *models.OperationResult
	if req.emergency {
		result, err = vaultService.EmergencyWithdraw(ctx, req.accountID, req.destination, req.reference)
	} else {
		baseUnits, parseErr := common.ParseAmount(req.amount, cfg.Asset.Decimals)
		if parseErr != nil {
			zap.L().Fatal("Invalid amount", zap.String("amount", req.amount), zap.Error(parseErr))
		}
		result, err = vaultService.Withdraw(ctx, req.accountID, baseUnits.String(), req.destination, req.reference)
	}
	if err != nil {
		common.PrintHeader("WITHDRAWAL FAILED", common.DefaultWidth)
		fmt.Printf("Account:     %s\n", req.accountID)
		fmt.Printf("Destination: %s\n", req.destination)
		fmt.Printf("Error:       %v\n", err)
		explainFailure(err)
		common.PrintSeparator("=", common.DefaultWidth)
		zap.L().Fatal("Withdrawal failed", zap.Error(err))
	}

	title := "WITHDRAWAL COMPLETED"
	if req.emergency {
		title = "EMERGENCY WITHDRAWAL COMPLETED"
	}
	common.PrintHeader(title, common.DefaultWidth)
	fmt.Printf("Account:     %s\n", result.AccountID)
	fmt.Printf("Gross:       %s %s\n", common.FormatAmount(result.Amount, cfg.Asset.Decimals), cfg.Asset.Symbol)
	fmt.Printf("Fee:         %s %s\n", common.FormatAmount(result.Fee, cfg.Asset.Decimals), cfg.Asset.Symbol)
	fmt.Printf("Destination: %s\n", req.destination)
	fmt.Printf("New Balance: %s %s\n", common.FormatAmount(result.NewBalance, cfg.Asset.Decimals), cfg.Asset.Symbol)
	common.PrintSeparator("=", common.DefaultWidth)
}
