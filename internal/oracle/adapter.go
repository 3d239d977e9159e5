package oracle

import (
	"context"
	"sync"

	"vault-ledger-go/internal/store"

	"go.uber.org/zap"
)

// Adapter wraps the raw tier oracle with the vault's degrade-gracefully
// policy: a missing or failing oracle must never block a ledger operation.
// When no oracle is configured the adapter runs in absent mode. On a failed
// call the discount degrades to zero and the cached tier is left untouched;
// the failure is logged and swallowed here, never propagated.
type Adapter struct {
	mu     sync.RWMutex
	client store.TierOracle // nil = absent
}

// NewAdapter wraps a raw oracle. Pass nil for absent mode.
func NewAdapter(client store.TierOracle) *Adapter {
	return &Adapter{client: client}
}

// Swap replaces the underlying oracle. Used by the admin oracle-address
// mutator; pass nil to detach the oracle entirely.
func (a *Adapter) Swap(client store.TierOracle) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.client = client
}

// Configured reports whether an oracle is currently attached.
func (a *Adapter) Configured() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.client != nil
}

// Discount returns the fee discount in basis points, or 0 when the oracle is
// absent or the call fails.
func (a *Adapter) Discount(ctx context.Context, accountID string) uint64 {
	a.mu.RLock()
	client := a.client
	a.mu.RUnlock()
	if client == nil {
		return 0
	}
	discount, err := client.DiscountOf(ctx, accountID)
	if err != nil {
		zap.L().Warn("Tier oracle discount lookup failed, using no discount",
			zap.String("account_id", accountID),
			zap.Error(err))
		return 0
	}
	return discount
}

// Tier returns the account's loyalty tier, or the previously cached tier when
// the oracle is absent or the call fails. A failing oracle never resets an
// established tier to zero.
func (a *Adapter) Tier(ctx context.Context, accountID string, cached uint8) uint8 {
	a.mu.RLock()
	client := a.client
	a.mu.RUnlock()
	if client == nil {
		return cached
	}
	tier, err := client.TierOf(ctx, accountID)
	if err != nil {
		zap.L().Warn("Tier oracle tier lookup failed, keeping cached tier",
			zap.String("account_id", accountID),
			zap.Uint8("cached_tier", cached),
			zap.Error(err))
		return cached
	}
	if tier > MaxTier {
		tier = MaxTier
	}
	return tier
}
