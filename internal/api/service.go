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

package api

import (
	"context"
	"fmt"

	"vault-ledger-go/internal/store"
)

// VaultService provides minimal API over a vault backend.
type VaultService struct {
	store store.VaultStore
}

func NewVaultService(s store.VaultStore) *VaultService {
	return &VaultService{
		store: s,
	}
}

func (s *VaultService) HealthCheck(ctx context.Context) error {
	_, err := s.store.GetParams(ctx)
	if err != nil {
		return fmt.Errorf("vault store health check failed: %w", err)
	}
	return nil
}
