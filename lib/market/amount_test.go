package market

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestApplyBpsTruncates(t *testing.T) {
	fee, err := ApplyBps(decimal.NewFromInt(1000), 250)
	assert.NoError(t, err)
	assert.True(t, fee.Equal(decimal.NewFromInt(25)))

	// 999 * 250 / 10000 = 24.975
	fee, err = ApplyBps(decimal.NewFromInt(999), 250)
	assert.NoError(t, err)
	assert.True(t, fee.Equal(decimal.NewFromInt(24)))

	fee, err = ApplyBps(decimal.NewFromInt(1), 2000)
	assert.NoError(t, err)
	assert.True(t, fee.IsZero())
}

func TestApplyBpsMatchesFloorForAllFeeBps(t *testing.T) {
	total := int64(123457)
	for bps := int64(0); bps <= 2000; bps++ {
		fee, err := ApplyBps(decimal.NewFromInt(total), bps)
		assert.NoError(t, err)
		assert.Equal(t, total*bps/10000, fee.IntPart(), "bps %d", bps)
	}
}

func TestCheckedMulOverflow(t *testing.T) {
	_, err := CheckedMul(MaxAmount, decimal.NewFromInt(2))
	assert.True(t, errors.Is(err, ErrArithmeticOverflow))

	r, err := CheckedMul(decimal.NewFromInt(100), decimal.NewFromInt(10))
	assert.NoError(t, err)
	assert.True(t, r.Equal(decimal.NewFromInt(1000)))
}

func TestCheckedAddOverflow(t *testing.T) {
	_, err := CheckedAdd(MaxAmount, decimal.NewFromInt(1))
	assert.True(t, errors.Is(err, ErrArithmeticOverflow))

	_, err = CheckedAdd(MinAmount, decimal.NewFromInt(-1))
	assert.True(t, errors.Is(err, ErrArithmeticUnderflow))
}

func TestDebitUnderflow(t *testing.T) {
	_, err := Debit(decimal.NewFromInt(5), decimal.NewFromInt(6))
	assert.True(t, errors.Is(err, ErrArithmeticUnderflow))

	r, err := Debit(decimal.NewFromInt(5), decimal.NewFromInt(5))
	assert.NoError(t, err)
	assert.True(t, r.IsZero())
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("170141183460469231731687303715884105727")
	assert.NoError(t, err)
	assert.True(t, d.Equal(MaxAmount))

	_, err = ParseAmount("170141183460469231731687303715884105728")
	assert.Equal(t, KindInvalidInput, KindOf(err))

	_, err = ParseAmount("1.5")
	assert.Equal(t, KindInvalidInput, KindOf(err))

	_, err = ParseAmount("abc")
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestValidateText(t *testing.T) {
	assert.NoError(t, ValidateText("title", "Soy field"))
	assert.Equal(t, KindInvalidInput, KindOf(ValidateText("title", "")))
	assert.NoError(t, ValidateText("title", strings.Repeat("a", 120)))
	assert.Equal(t, KindInvalidInput, KindOf(ValidateText("title", strings.Repeat("a", 121))))
}

func TestErrorIsMatchesKind(t *testing.T) {
	err := Errorf(KindNotFound, "asset %d", 7)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "NOT_FOUND: asset 7", err.Error())
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
}
