package market

import (
	"github.com/shopspring/decimal"
	"github.com/terracapital/marketplace/common"
)

// Amounts (prices, token quantities, payment values) are integers in the signed
// 128-bit range. decimal.Decimal carries them exactly; every arithmetic step goes
// through the checked helpers below so a result outside the range is an error
// instead of a silently widened number.
var (
	MaxAmount = decimal.RequireFromString("170141183460469231731687303715884105727")
	MinAmount = decimal.RequireFromString("-170141183460469231731687303715884105728")

	bpsDenominator = decimal.NewFromInt(common.BpsDenominator)
)

func inRange(d decimal.Decimal) bool {
	return d.Cmp(MinAmount) >= 0 && d.Cmp(MaxAmount) <= 0
}

// ParseAmount parses a base-10 integer amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, Errorf(KindInvalidInput, "invalid amount %q", s)
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount rejects fractional values and values outside the 128-bit range.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsInteger() {
		return Errorf(KindInvalidInput, "amount %s is not an integer", d)
	}
	if !inRange(d) {
		return Errorf(KindInvalidInput, "amount %s out of range", d)
	}
	return nil
}

func CheckedMul(a, b decimal.Decimal) (decimal.Decimal, error) {
	r := a.Mul(b)
	if !inRange(r) {
		return decimal.Zero, Errorf(KindArithmeticOverflow, "%s * %s", a, b)
	}
	return r, nil
}

func CheckedAdd(a, b decimal.Decimal) (decimal.Decimal, error) {
	r := a.Add(b)
	if r.Cmp(MaxAmount) > 0 {
		return decimal.Zero, Errorf(KindArithmeticOverflow, "%s + %s", a, b)
	}
	if r.Cmp(MinAmount) < 0 {
		return decimal.Zero, Errorf(KindArithmeticUnderflow, "%s + %s", a, b)
	}
	return r, nil
}

// Debit returns a - b and fails with ArithmeticUnderflow when the result would be
// negative. Balances, availability and payout legs never go below zero.
func Debit(a, b decimal.Decimal) (decimal.Decimal, error) {
	r := a.Sub(b)
	if r.Sign() < 0 {
		return decimal.Zero, Errorf(KindArithmeticUnderflow, "%s - %s", a, b)
	}
	if r.Cmp(MaxAmount) > 0 {
		return decimal.Zero, Errorf(KindArithmeticOverflow, "%s - %s", a, b)
	}
	return r, nil
}

// ApplyBps computes floor(amount * bps / 10000), truncating toward zero.
func ApplyBps(amount decimal.Decimal, bps int64) (decimal.Decimal, error) {
	scaled, err := CheckedMul(amount, decimal.NewFromInt(bps))
	if err != nil {
		return decimal.Zero, err
	}
	q, _ := scaled.QuoRem(bpsDenominator, 0)
	return q, nil
}
