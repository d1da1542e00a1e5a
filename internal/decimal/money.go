package decimal

import (
	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// Hundred is decimal 100, used for percentage math
var Hundred = decimal.NewFromInt(100)

// FromInt creates decimal from int
func FromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// FromFloat creates decimal from float, unrounded
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// FromString parses decimal from string
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString parses decimal from string, panics on error
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Round2 rounds to 2 places, half away from zero (ARS cents).
// Applied only at output boundaries, never during accumulation.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Format renders an amount with exactly 2 decimal places, the shape
// WSFE expects for every monetary field.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// VATAmount computes net * (rate/100), unrounded.
func VATAmount(net, ratePercent decimal.Decimal) decimal.Decimal {
	return net.Mul(ratePercent).Div(Hundred)
}

// NetFromGross recovers the net amount from a tax-inclusive price:
// gross / (1 + rate/100). Unrounded; rounding error must not be
// reintroduced before totals are settled.
func NetFromGross(gross, ratePercent decimal.Decimal) decimal.Decimal {
	divisor := decimal.NewFromInt(1).Add(ratePercent.Div(Hundred))
	return gross.Div(divisor)
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// IsPositive returns true if decimal is greater than zero
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(Zero)
}
