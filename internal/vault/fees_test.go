package vault

import (
	"math/big"
	"testing"
)

func TestEffectiveFeeBps(t *testing.T) {
	cases := []struct {
		base     uint64
		discount uint64
		want     uint64
	}{
		{50, 0, 50},
		{50, 5000, 25},   // 50% discount
		{50, 10000, 0},   // full discount
		{50, 12000, 0},   // over-discount clamps to free
		{1000, 2500, 750},
	}
	for _, c := range cases {
		if got := EffectiveFeeBps(c.base, c.discount); got != c.want {
			t.Errorf("EffectiveFeeBps(%d, %d) = %d, want %d", c.base, c.discount, got, c.want)
		}
	}
}

func TestFee_Truncates(t *testing.T) {
	// 199 * 50 / 10000 = 0.995, truncated to 0
	if got := Fee(big.NewInt(199), 50); got.Sign() != 0 {
		t.Errorf("Expected truncated fee 0, got %s", got)
	}
	// 10000 * 50 / 10000 = 50
	if got := Fee(big.NewInt(10000), 50); got.Cmp(big.NewInt(50)) != 0 {
		t.Errorf("Expected fee 50, got %s", got)
	}
}

func TestPenalty(t *testing.T) {
	if got := Penalty(big.NewInt(10000), 1000); got.Cmp(big.NewInt(1000)) != 0 {
		t.Errorf("Expected penalty 1000, got %s", got)
	}
}

func TestClampDeduction(t *testing.T) {
	balance := big.NewInt(100)
	if got := ClampDeduction(big.NewInt(150), balance); got.Cmp(balance) != 0 {
		t.Errorf("Expected deduction clamped to %s, got %s", balance, got)
	}
	if got := ClampDeduction(big.NewInt(60), balance); got.Cmp(big.NewInt(60)) != 0 {
		t.Errorf("Expected deduction 60 unchanged, got %s", got)
	}
}
