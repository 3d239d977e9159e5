package oracle

import (
	"context"
	"errors"
	"testing"
)

type fakeOracle struct {
	discount uint64
	tier     uint8
	err      error
}

func (f *fakeOracle) DiscountOf(context.Context, string) (uint64, error) {
	return f.discount, f.err
}

func (f *fakeOracle) TierOf(context.Context, string) (uint8, error) {
	return f.tier, f.err
}

func TestAdapter_AbsentOracle(t *testing.T) {
	adapter := NewAdapter(nil)
	ctx := context.Background()

	if adapter.Configured() {
		t.Error("Expected absent adapter to report unconfigured")
	}
	if got := adapter.Discount(ctx, "alice"); got != 0 {
		t.Errorf("Expected discount 0 without an oracle, got %d", got)
	}
	if got := adapter.Tier(ctx, "alice", 2); got != 2 {
		t.Errorf("Expected cached tier 2 without an oracle, got %d", got)
	}
}

func TestAdapter_WorkingOracle(t *testing.T) {
	adapter := NewAdapter(&fakeOracle{discount: 2500, tier: 3})
	ctx := context.Background()

	if got := adapter.Discount(ctx, "alice"); got != 2500 {
		t.Errorf("Expected discount 2500, got %d", got)
	}
	if got := adapter.Tier(ctx, "alice", 0); got != 3 {
		t.Errorf("Expected tier 3, got %d", got)
	}
}

func TestAdapter_FailingOracleDegradesGracefully(t *testing.T) {
	adapter := NewAdapter(&fakeOracle{err: errors.New("oracle unreachable")})
	ctx := context.Background()

	if got := adapter.Discount(ctx, "alice"); got != 0 {
		t.Errorf("Expected discount to degrade to 0, got %d", got)
	}
	// An established tier is never reset by a failing lookup.
	if got := adapter.Tier(ctx, "alice", 2); got != 2 {
		t.Errorf("Expected cached tier 2 on failure, got %d", got)
	}
}

func TestAdapter_ClampsTier(t *testing.T) {
	adapter := NewAdapter(&fakeOracle{tier: 9})

	if got := adapter.Tier(context.Background(), "alice", 0); got != MaxTier {
		t.Errorf("Expected tier clamped to %d, got %d", MaxTier, got)
	}
}

func TestAdapter_Swap(t *testing.T) {
	adapter := NewAdapter(nil)
	ctx := context.Background()

	adapter.Swap(&fakeOracle{discount: 100})
	if !adapter.Configured() {
		t.Error("Expected adapter configured after swap")
	}
	if got := adapter.Discount(ctx, "alice"); got != 100 {
		t.Errorf("Expected discount 100 after swap, got %d", got)
	}

	adapter.Swap(nil)
	if adapter.Configured() {
		t.Error("Expected adapter detached after nil swap")
	}
}
