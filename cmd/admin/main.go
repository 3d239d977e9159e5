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

	"vault-ledger-go/internal/common"
	"vault-ledger-go/internal/config"
	"vault-ledger-go/internal/models"
	"vault-ledger-go/internal/oracle"

	"go.uber.org/zap"
)

type adminFlags struct {
	principal       string
	pause           bool
	unpause         bool
	maxBalance      string
	dailyLimit      string
	baseFeeBps      int
	blacklistAdd    string
	blacklistRemove string
	freeze          string
	unfreeze        string
	oracleURL       string
	detachOracle    bool
	sweepTo         string
	showParams      bool
}

func parseFlags() *adminFlags {
	f := &adminFlags{}
	flag.StringVar(&f.principal, "principal", "", "Admin key (required for mutations)")
	flag.BoolVar(&f.pause, "pause", false, "Pause all vault operations")
	flag.BoolVar(&f.unpause, "unpause", false, "Resume vault operations")
	flag.StringVar(&f.maxBalance, "max-balance", "", "Set the per-account balance cap (human amount)")
	flag.StringVar(&f.dailyLimit, "daily-limit", "", "Set the daily withdrawal limit (human amount, 0 disables)")
	flag.IntVar(&f.baseFeeBps, "base-fee-bps", -1, "Set the base withdrawal fee in basis points (max 1000)")
	flag.StringVar(&f.blacklistAdd, "blacklist-add", "", "Add an account to the blacklist")
	flag.StringVar(&f.blacklistRemove, "blacklist-remove", "", "Remove an account from the blacklist")
	flag.StringVar(&f.freeze, "freeze", "", "Freeze an account")
	flag.StringVar(&f.unfreeze, "unfreeze", "", "Unfreeze an account")
	flag.StringVar(&f.oracleURL, "oracle-url", "", "Swap in a new tier oracle endpoint")
	flag.BoolVar(&f.detachOracle, "detach-oracle", false, "Detach the tier oracle entirely")
	flag.StringVar(&f.sweepTo, "sweep-to", "", "Sweep the collected fee pool to this external destination")
	flag.BoolVar(&f.showParams, "show-params", false, "Print the current vault parameters")
	flag.Parse()
	return f
}

func printParams(params *models.VaultParams, cfg *models.Config) {
	decimals := cfg.Asset.Decimals
	symbol := cfg.Asset.Symbol

	common.PrintHeader("VAULT PARAMETERS", common.DefaultWidth)
	fmt.Printf("Paused:               %t\n", params.Paused)
	fmt.Printf("Max Balance:          %s %s\n", common.FormatAmount(params.MaxBalance, decimals), symbol)
	fmt.Printf("Daily Withdraw Limit: %s %s\n", common.FormatAmount(params.DailyWithdrawLimit, decimals), symbol)
	fmt.Printf("Base Fee:             %d bps\n", params.BaseFeeBps)
	fmt.Printf("Interest Rate:        %d bps\n", params.BaseInterestRateBps)
	fmt.Printf("Early Exit Penalty:   %d bps\n", params.EarlyWithdrawalPenaltyBps)
	fmt.Printf("Fee Pool:             %s %s\n", common.FormatAmount(params.FeePool, decimals), symbol)
	fmt.Printf("Total Deposited:      %s %s\n", common.FormatAmount(params.TotalDeposited, decimals), symbol)
	fmt.Printf("Total Fees Collected: %s %s\n", common.FormatAmount(params.TotalFeesCollected, decimals), symbol)
	common.PrintSeparator("=", common.DefaultWidth)
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	f := parseFlags()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	dbService, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer dbService.Close()

	if f.showParams {
		params, err := dbService.GetParams(ctx)
		if err != nil {
			zap.L().Fatal("Failed to load parameters", zap.Error(err))
		}
		printParams(params, cfg)
	}

	if f.pause || f.unpause {
		if err := dbService.SetPaused(ctx, f.principal, f.pause); err != nil {
			zap.L().Fatal("Failed to update pause flag", zap.Error(err))
		}
		fmt.Printf("Vault paused: %t\n", f.pause)
	}

	if f.maxBalance != "" {
		value, err := common.ParseAmount(f.maxBalance, cfg.Asset.Decimals)
		if err != nil {
			zap.L().Fatal("Invalid max balance", zap.Error(err))
		}
		if err := dbService.SetMaxBalance(ctx, f.principal, value); err != nil {
			zap.L().Fatal("Failed to set max balance", zap.Error(err))
		}
		fmt.Printf("Max balance set to %s %s\n", f.maxBalance, cfg.Asset.Symbol)
	}

	if f.dailyLimit != "" {
		value, err := common.ParseAmount(f.dailyLimit, cfg.Asset.Decimals)
		if err != nil {
			zap.L().Fatal("Invalid daily limit", zap.Error(err))
		}
		if err := dbService.SetDailyWithdrawLimit(ctx, f.principal, value); err != nil {
			zap.L().Fatal("Failed to set daily withdrawal limit", zap.Error(err))
		}
		fmt.Printf("Daily withdrawal limit set to %s %s\n", f.dailyLimit, cfg.Asset.Symbol)
	}

	if f.baseFeeBps >= 0 {
		if err := dbService.SetBaseFee(ctx, f.principal, uint64(f.baseFeeBps)); err != nil {
			zap.L().Fatal("Failed to set base fee", zap.Error(err))
		}
		fmt.Printf("Base fee set to %d bps\n", f.baseFeeBps)
	}

	if f.blacklistAdd != "" {
		if err := dbService.AddToBlacklist(ctx, f.principal, f.blacklistAdd); err != nil {
			zap.L().Fatal("Failed to blacklist account", zap.Error(err))
		}
		fmt.Printf("Account %s blacklisted\n", f.blacklistAdd)
	}

	if f.blacklistRemove != "" {
		if err := dbService.RemoveFromBlacklist(ctx, f.principal, f.blacklistRemove); err != nil {
			zap.L().Fatal("Failed to remove account from blacklist", zap.Error(err))
		}
		fmt.Printf("Account %s removed from blacklist\n", f.blacklistRemove)
	}

	if f.freeze != "" {
		if err := dbService.SetAccountFrozen(ctx, f.principal, f.freeze, true); err != nil {
			zap.L().Fatal("Failed to freeze account", zap.Error(err))
		}
		fmt.Printf("Account %s frozen\n", f.freeze)
	}

	if f.unfreeze != "" {
		if err := dbService.SetAccountFrozen(ctx, f.principal, f.unfreeze, false); err != nil {
			zap.L().Fatal("Failed to unfreeze account", zap.Error(err))
		}
		fmt.Printf("Account %s unfrozen\n", f.unfreeze)
	}

	if f.detachOracle {
		if err := dbService.SwapOracle(f.principal, nil); err != nil {
			zap.L().Fatal("Failed to detach oracle", zap.Error(err))
		}
		fmt.Println("Tier oracle detached")
	} else if f.oracleURL != "" {
		client, err := oracle.NewClient(models.OracleConfig{URL: f.oracleURL, Timeout: cfg.Oracle.Timeout})
		if err != nil {
			zap.L().Fatal("Failed to build oracle client", zap.Error(err))
		}
		if err := dbService.SwapOracle(f.principal, client); err != nil {
			zap.L().Fatal("Failed to swap oracle", zap.Error(err))
		}
		fmt.Printf("Tier oracle swapped to %s\n", f.oracleURL)
	}

	if f.sweepTo != "" {
		swept, err := dbService.SweepFees(ctx, f.principal, f.sweepTo, time.Now().Unix())
		if err != nil {
			zap.L().Fatal("Failed to sweep fee pool", zap.Error(err))
		}
		fmt.Printf("Swept %s %s to %s\n",
			common.FormatAmount(swept, cfg.Asset.Decimals), cfg.Asset.Symbol, f.sweepTo)
	}
}
