package vault

import (
	"errors"
	"math/big"
	"testing"

	"vault-ledger-go/internal/models"
)

func TestLockDuration(t *testing.T) {
	cases := []struct {
		period models.LockPeriod
		want   int64
	}{
		{models.LockFlexible, 0},
		{models.LockShort, 7 * SecondsPerDay},
		{models.LockMedium, 30 * SecondsPerDay},
		{models.LockLong, 90 * SecondsPerDay},
	}
	for _, c := range cases {
		if got := LockDuration(c.period); got != c.want {
			t.Errorf("LockDuration(%s) = %d, want %d", c.period, got, c.want)
		}
	}
}

func TestLockEndTime_FlexibleNeverLocks(t *testing.T) {
	if got := LockEndTime(models.LockFlexible, 1_000_000); got != 0 {
		t.Errorf("Expected flexible lock end 0, got %d", got)
	}
	if got := LockEndTime(models.LockShort, 1_000_000); got != 1_000_000+7*SecondsPerDay {
		t.Errorf("Expected short lock end %d, got %d", 1_000_000+7*SecondsPerDay, got)
	}
}

func TestLockMultiplierBps(t *testing.T) {
	cases := []struct {
		period models.LockPeriod
		want   uint64
	}{
		{models.LockFlexible, 10000},
		{models.LockShort, 12500},
		{models.LockMedium, 15000},
		{models.LockLong, 20000},
	}
	for _, c := range cases {
		if got := LockMultiplierBps(c.period); got != c.want {
			t.Errorf("LockMultiplierBps(%s) = %d, want %d", c.period, got, c.want)
		}
	}
}

func TestWithdrawnToday_ResetsOnNewDay(t *testing.T) {
	acct := models.NewAccount("acct1")
	now := int64(100 * SecondsPerDay)

	ApplyDailyWithdrawal(acct, big.NewInt(500), now)
	if got := WithdrawnToday(acct, now); got.Cmp(big.NewInt(500)) != 0 {
		t.Errorf("Expected 500 withdrawn today, got %s", got)
	}

	// Same day accumulates.
	ApplyDailyWithdrawal(acct, big.NewInt(200), now+3600)
	if got := WithdrawnToday(acct, now+3600); got.Cmp(big.NewInt(700)) != 0 {
		t.Errorf("Expected 700 withdrawn today, got %s", got)
	}

	// Next day the counter no longer applies.
	nextDay := now + SecondsPerDay
	if got := WithdrawnToday(acct, nextDay); got.Sign() != 0 {
		t.Errorf("Expected 0 withdrawn on new day, got %s", got)
	}

	ApplyDailyWithdrawal(acct, big.NewInt(100), nextDay)
	if got := WithdrawnToday(acct, nextDay); got.Cmp(big.NewInt(100)) != 0 {
		t.Errorf("Expected counter reset to 100, got %s", got)
	}
}

func TestCheckDailyLimit(t *testing.T) {
	acct := models.NewAccount("acct1")
	now := int64(100 * SecondsPerDay)
	params := &models.VaultParams{DailyWithdrawLimit: big.NewInt(1000)}

	if err := CheckDailyLimit(acct, params, big.NewInt(1000), now); err != nil {
		t.Fatalf("Withdrawal at the limit should pass: %v", err)
	}

	ApplyDailyWithdrawal(acct, big.NewInt(800), now)
	err := CheckDailyLimit(acct, params, big.NewInt(300), now)
	var limitErr *DailyLimitExceededError
	if !errors.As(err, &limitErr) {
		t.Fatalf("Expected DailyLimitExceededError, got %v", err)
	}
	if limitErr.WithdrawnToday.Cmp(big.NewInt(800)) != 0 {
		t.Errorf("Expected withdrawn today 800 in error, got %s", limitErr.WithdrawnToday)
	}

	// The window rolls over at the next day boundary.
	if err := CheckDailyLimit(acct, params, big.NewInt(300), now+SecondsPerDay); err != nil {
		t.Errorf("Expected next-day withdrawal to pass, got %v", err)
	}
}

func TestCheckDailyLimit_ZeroDisablesCap(t *testing.T) {
	acct := models.NewAccount("acct1")
	params := &models.VaultParams{DailyWithdrawLimit: new(big.Int)}

	huge := new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil)
	if err := CheckDailyLimit(acct, params, huge, 0); err != nil {
		t.Errorf("Expected disabled cap to pass any amount, got %v", err)
	}
}
