package vault

import "math/big"

// EffectiveFeeBps applies a loyalty discount to the base withdrawal fee:
// base - base*discount/10000. Discounts above 100% are clamped to a free
// withdrawal rather than a negative fee.
func EffectiveFeeBps(baseFeeBps, discountBps uint64) uint64 {
	if discountBps >= BpsDenominator {
		return 0
	}
	return baseFeeBps - baseFeeBps*discountBps/BpsDenominator
}

// Fee computes the withdrawal fee on a gross amount with integer truncation.
func Fee(amount *big.Int, feeBps uint64) *big.Int {
	fee := new(big.Int).Mul(amount, new(big.Int).SetUint64(feeBps))
	return fee.Div(fee, bpsDenom)
}

// Penalty computes the early-withdrawal penalty charged on the full balance
// during a locked emergency exit.
func Penalty(balance *big.Int, penaltyBps uint64) *big.Int {
	p := new(big.Int).Mul(balance, new(big.Int).SetUint64(penaltyBps))
	return p.Div(p, bpsDenom)
}

// ClampDeduction caps a fee+penalty deduction at the balance so the net
// payout never goes negative.
func ClampDeduction(deduction, balance *big.Int) *big.Int {
	if deduction.Cmp(balance) > 0 {
		return new(big.Int).Set(balance)
	}
	return deduction
}
