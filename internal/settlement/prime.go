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

package settlement

import (
	"context"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"time"

	"vault-ledger-go/internal/models"
	"vault-ledger-go/internal/store"

	"github.com/coinbase-samples/prime-sdk-go/client"
	"github.com/coinbase-samples/prime-sdk-go/credentials"
	"github.com/coinbase-samples/prime-sdk-go/model"
	"github.com/coinbase-samples/prime-sdk-go/portfolios"
	"github.com/coinbase-samples/prime-sdk-go/transactions"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// Compile-time check: *Service must satisfy store.Transferer.
var _ store.Transferer = (*Service)(nil)

// Service settles vault payouts by creating withdrawals from a Coinbase
// Prime custody wallet. It is the concrete external-transfer collaborator;
// the vault only sees the Transferer interface.
type Service struct {
	client          client.RestClient
	portfoliosSvc   portfolios.PortfoliosService
	transactionsSvc transactions.TransactionsService
	portfolioID     string
	walletID        string
	symbol          string
	network         string
	decimals        int32
}

// NewService builds the Prime settlement backend and resolves the default
// portfolio the wallet lives in.
func NewService(ctx context.Context, creds *credentials.Credentials, cfg models.SettlementConfig, asset models.AssetConfig) (*Service, error) {
	if cfg.WalletID == "" {
		return nil, fmt.Errorf("settlement wallet id cannot be empty")
	}

	httpClient, err := createCustomHttpClient()
	if err != nil {
		return nil, fmt.Errorf("unable to create custom http client: %w", err)
	}

	restClient := client.NewRestClient(creds, httpClient)
	svc := &Service{
		client:          restClient,
		portfoliosSvc:   portfolios.NewPortfoliosService(restClient),
		transactionsSvc: transactions.NewTransactionsService(restClient),
		walletID:        cfg.WalletID,
		symbol:          cfg.Symbol,
		network:         cfg.Network,
		decimals:        asset.Decimals,
	}

	portfolio, err := svc.findDefaultPortfolio(ctx)
	if err != nil {
		return nil, err
	}
	svc.portfolioID = portfolio

	zap.L().Info("Prime settlement backend initialized",
		zap.String("portfolio_id", svc.portfolioID),
		zap.String("wallet_id", svc.walletID),
		zap.String("symbol", svc.symbol))
	return svc, nil
}

func createCustomHttpClient() (http.Client, error) {
	tr := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			Timeout:   15 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConnsPerHost:   5,
		ExpectContinueTimeout: 5 * time.Second,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		return http.Client{}, err
	}

	return http.Client{
		Transport: tr,
		Timeout:   60 * time.Second,
	}, nil
}

func (s *Service) findDefaultPortfolio(ctx context.Context) (string, error) {
	response, err := s.portfoliosSvc.ListPortfolios(ctx, &portfolios.ListPortfoliosRequest{})
	if err != nil {
		return "", fmt.Errorf("unable to list portfolios: %w", err)
	}
	for _, p := range response.Portfolios {
		if p.Name == "Default Portfolio" {
			return p.Id, nil
		}
	}
	return "", fmt.Errorf("default portfolio not found")
}

// Transfer pays amount (base units) out to a blockchain destination address.
func (s *Service) Transfer(ctx context.Context, destination string, amount *big.Int) error {
	if destination == "" {
		return fmt.Errorf("destination address cannot be empty")
	}
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("transfer amount must be positive, got %v", amount)
	}

	// Prime wants the human amount, not base units.
	humanAmount := decimal.NewFromBigInt(amount, -s.decimals).String()
	idempotencyKey := uuid.New().String()

	blockchainAddr := &model.BlockchainAddress{Address: destination}
	if s.network != "" {
		blockchainAddr.Network = &model.NetworkDetails{Id: s.network}
	}

	request := &transactions.CreateWalletWithdrawalRequest{
		PortfolioId:       s.portfolioID,
		SourceWalletId:    s.walletID,
		Amount:            humanAmount,
		IdempotencyKey:    idempotencyKey,
		Symbol:            s.symbol,
		DestinationType:   "DESTINATION_BLOCKCHAIN",
		BlockchainAddress: blockchainAddr,
	}

	response, err := s.transactionsSvc.CreateWalletWithdrawal(ctx, request)
	if err != nil {
		zap.L().Error("Failed to create settlement withdrawal",
			zap.String("destination", destination),
			zap.String("amount", humanAmount),
			zap.Error(err))
		return fmt.Errorf("unable to create withdrawal: %w", err)
	}

	zap.L().Info("Settlement withdrawal created",
		zap.String("activity_id", response.ActivityId),
		zap.String("destination", destination),
		zap.String("amount", humanAmount),
		zap.String("idempotency_key", idempotencyKey))
	return nil
}
