package report

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Percent is a percent change that may be undefined. A change away from a zero
// base has no meaningful ratio and is reported as undefined rather than infinite.
type Percent struct {
	value   float64
	defined bool
}

// UndefinedPercent returns the undefined sentinel.
func UndefinedPercent() Percent {
	return Percent{}
}

// PercentOf returns (after - before) / before as a percentage.
// A zero base yields 0% when nothing changed and the undefined sentinel otherwise.
func PercentOf(before, after decimal.Decimal) Percent {
	if before.IsZero() {
		if after.IsZero() {
			return Percent{defined: true}
		}
		return UndefinedPercent()
	}
	v, _ := after.Sub(before).Div(before).Mul(hundred).Float64()
	return Percent{value: v, defined: true}
}

// Defined reports whether the percent has a numeric value.
func (p Percent) Defined() bool {
	return p.defined
}

// Value returns the percentage and whether it is defined.
func (p Percent) Value() (float64, bool) {
	return p.value, p.defined
}

// String renders the percent with a sign and one decimal, or "n/a" when undefined.
func (p Percent) String() string {
	if !p.defined {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", p.value)
}
