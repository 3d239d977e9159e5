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

package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vault-ledger-go/internal/models"
	"vault-ledger-go/internal/store"

	"golang.org/x/net/http2"
)

// MaxTier is the highest loyalty tier the oracle may report.
const MaxTier = 3

// Compile-time check: *Client must satisfy store.TierOracle.
var _ store.TierOracle = (*Client)(nil)

// Client talks to the loyalty tier oracle over HTTP. It implements the raw
// TierOracle reads; failure handling lives in the Adapter.
type Client struct {
	httpClient http.Client
	baseURL    string
}

// NewClient builds an oracle client for the given endpoint.
func NewClient(cfg models.OracleConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("oracle URL cannot be empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient, err := createCustomHttpClient(timeout)
	if err != nil {
		return nil, fmt.Errorf("unable to create custom http client: %w", err)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.URL, "/"),
	}, nil
}

func createCustomHttpClient(timeout time.Duration) (http.Client, error) {
	tr := &http.Transport{
		ResponseHeaderTimeout: timeout,
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
		Timeout:   timeout,
	}, nil
}

type discountResponse struct {
	DiscountBps uint64 `json:"discount_bps"`
}

type tierResponse struct {
	Tier uint8 `json:"tier"`
}

// DiscountOf fetches the fee discount in basis points for an account.
func (c *Client) DiscountOf(ctx context.Context, accountID string) (uint64, error) {
	var resp discountResponse
	if err := c.get(ctx, fmt.Sprintf("/accounts/%s/discount", url.PathEscape(accountID)), &resp); err != nil {
		return 0, err
	}
	return resp.DiscountBps, nil
}

// TierOf fetches the loyalty tier for an account, clamped to the valid range.
func (c *Client) TierOf(ctx context.Context, accountID string) (uint8, error) {
	var resp tierResponse
	if err := c.get(ctx, fmt.Sprintf("/accounts/%s/tier", url.PathEscape(accountID)), &resp); err != nil {
		return 0, err
	}
	if resp.Tier > MaxTier {
		return MaxTier, nil
	}
	return resp.Tier, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("unable to build oracle request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("oracle request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("oracle returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("unable to decode oracle response: %w", err)
	}
	return nil
}
