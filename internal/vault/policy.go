package vault

import (
	"math/big"

	"vault-ledger-go/internal/models"
)

const (
	SecondsPerDay  = int64(86400)
	SecondsPerYear = 365 * SecondsPerDay

	// BpsDenominator is the basis-point scale: 10000 bps = 100%.
	BpsDenominator = 10000

	// MaxBaseFeeBps caps the configurable base withdrawal fee at 10%.
	MaxBaseFeeBps = 1000
)

var bpsDenom = big.NewInt(BpsDenominator)

// LockDuration returns how long funds stay locked for a given lock period.
func LockDuration(p models.LockPeriod) int64 {
	switch p {
	case models.LockShort:
		return 7 * SecondsPerDay
	case models.LockMedium:
		return 30 * SecondsPerDay
	case models.LockLong:
		return 90 * SecondsPerDay
	}
	return 0
}

// LockEndTime computes the unlock timestamp for a deposit made at now.
// Flexible deposits are never locked and always yield 0.
func LockEndTime(p models.LockPeriod, now int64) int64 {
	d := LockDuration(p)
	if d == 0 {
		return 0
	}
	return now + d
}

// LockMultiplierBps returns the interest multiplier for a lock period on the
// basis-point scale (10000 = 1x).
func LockMultiplierBps(p models.LockPeriod) uint64 {
	switch p {
	case models.LockShort:
		return 12500
	case models.LockMedium:
		return 15000
	case models.LockLong:
		return 20000
	}
	return 10000
}

// DayIndex buckets a timestamp into its day window.
func DayIndex(now int64) int64 {
	return now / SecondsPerDay
}

// WithdrawnToday returns the amount already withdrawn inside the account's
// current day window. The stored counter only counts if the stored day index
// matches now's.
func WithdrawnToday(acct *models.Account, now int64) *big.Int {
	if acct.LastWithdrawDay == DayIndex(now) {
		return acct.WithdrawnToday
	}
	return new(big.Int)
}

// CheckDailyLimit verifies that withdrawing amount at now stays within the
// rolling daily cap. A zero limit means the cap is disabled.
func CheckDailyLimit(acct *models.Account, params *models.VaultParams, amount *big.Int, now int64) error {
	if params.DailyWithdrawLimit.Sign() == 0 {
		return nil
	}
	effective := WithdrawnToday(acct, now)
	total := new(big.Int).Add(effective, amount)
	if total.Cmp(params.DailyWithdrawLimit) > 0 {
		return &DailyLimitExceededError{
			WithdrawnToday: new(big.Int).Set(effective),
			Limit:          new(big.Int).Set(params.DailyWithdrawLimit),
		}
	}
	return nil
}

// ApplyDailyWithdrawal folds a passing withdrawal into the account's day
// window. Must run in the same atomic unit as CheckDailyLimit so the check
// and the update cannot race.
func ApplyDailyWithdrawal(acct *models.Account, amount *big.Int, now int64) {
	day := DayIndex(now)
	if acct.LastWithdrawDay == day {
		acct.WithdrawnToday.Add(acct.WithdrawnToday, amount)
	} else {
		acct.WithdrawnToday = new(big.Int).Set(amount)
		acct.LastWithdrawDay = day
	}
}
