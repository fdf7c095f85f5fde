package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const minorUnitExp = 2

// MaxLineQuantity caps the units of one product in a cart or order.
const MaxLineQuantity = 10000

var ErrAmountOverflow = errors.New("amount out of range")

// Money is an amount in minor currency units. Arithmetic on it stays in integers;
// decimal conversion only happens at the JSON boundary.
type Money int64

var (
	maxMoney = decimal.NewFromInt(math.MaxInt64)
	minMoney = decimal.NewFromInt(math.MinInt64)
)

func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	shifted := d.Shift(minorUnitExp)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", d.String(), minorUnitExp)
	}
	if shifted.GreaterThan(maxMoney) || shifted.LessThan(minMoney) {
		return 0, fmt.Errorf("amount %s: %w", d.String(), ErrAmountOverflow)
	}
	return Money(shifted.IntPart()), nil
}

func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return MoneyFromDecimal(d)
}

// Times returns the line total for qty units, or ErrAmountOverflow when it does not
// fit in int64.
func (m Money) Times(qty int) (Money, error) {
	if qty < 0 {
		return 0, fmt.Errorf("negative quantity %d", qty)
	}
	if qty != 0 && (m > math.MaxInt64/Money(qty) || m < math.MinInt64/Money(qty)) {
		return 0, fmt.Errorf("%s x %d: %w", m, qty, ErrAmountOverflow)
	}
	return m * Money(qty), nil
}

// Plus returns m + other, or ErrAmountOverflow when the sum wraps.
func (m Money) Plus(other Money) (Money, error) {
	sum := m + other
	if (other > 0 && sum < m) || (other < 0 && sum > m) {
		return 0, fmt.Errorf("%s + %s: %w", m, other, ErrAmountOverflow)
	}
	return sum, nil
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -minorUnitExp)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(minorUnitExp)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	v, err := MoneyFromDecimal(d)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
