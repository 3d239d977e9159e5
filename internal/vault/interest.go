package vault

import (
	"math/big"

	"vault-ledger-go/internal/models"
)

// TierBonusStepBps is the interest-claim bonus granted per loyalty tier:
// tier 1 = 5%, tier 2 = 10%, tier 3 = 15%.
const TierBonusStepBps = 500

// accrualFor computes the interest earned on balance over elapsed seconds.
// Each division truncates:
// annual = balance * rate / 10000; period = annual * elapsed / secondsPerYear;
// period = period * multiplier / 10000.
func accrualFor(balance *big.Int, rateBps, multiplierBps uint64, elapsed int64) *big.Int {
	annual := new(big.Int).Mul(balance, new(big.Int).SetUint64(rateBps))
	annual.Div(annual, bpsDenom)

	period := annual.Mul(annual, big.NewInt(elapsed))
	period.Div(period, big.NewInt(SecondsPerYear))

	period.Mul(period, new(big.Int).SetUint64(multiplierBps))
	return period.Div(period, bpsDenom)
}

// Accrue folds the interest earned since the last checkpoint into the
// account's pending interest and advances the checkpoint to now. Accounts
// with a zero balance or no established checkpoint only get their checkpoint
// set; no interest accrues before a balance exists.
func Accrue(acct *models.Account, params *models.VaultParams, now int64) {
	if acct.Balance.Sign() == 0 || acct.LastInterestCheckpoint == 0 {
		acct.LastInterestCheckpoint = now
		return
	}
	elapsed := now - acct.LastInterestCheckpoint
	if elapsed <= 0 {
		return
	}
	earned := accrualFor(acct.Balance, params.BaseInterestRateBps, LockMultiplierBps(acct.LockPeriod), elapsed)
	acct.PendingInterest.Add(acct.PendingInterest, earned)
	acct.LastInterestCheckpoint = now
}

// PendingAt projects the pending interest as of now without mutating the
// account. It reproduces exactly what Accrue would fold in.
func PendingAt(acct *models.Account, params *models.VaultParams, now int64) *big.Int {
	pending := new(big.Int).Set(acct.PendingInterest)
	if acct.Balance.Sign() == 0 || acct.LastInterestCheckpoint == 0 {
		return pending
	}
	elapsed := now - acct.LastInterestCheckpoint
	if elapsed <= 0 {
		return pending
	}
	earned := accrualFor(acct.Balance, params.BaseInterestRateBps, LockMultiplierBps(acct.LockPeriod), elapsed)
	return pending.Add(pending, earned)
}

// ClaimBonus computes the loyalty bonus paid on top of a claimed interest
// amount: pending * (tier * 500) / 10000.
func ClaimBonus(pending *big.Int, tier uint8) *big.Int {
	bonus := new(big.Int).Mul(pending, big.NewInt(int64(tier)*TierBonusStepBps))
	return bonus.Div(bonus, bpsDenom)
}
