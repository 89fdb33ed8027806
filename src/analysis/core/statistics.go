package core

import "github.com/shopspring/decimal"

// -----------------------------------------------------------------------------

// CalculateMean returns the arithmetic mean. ok is false for an empty input.
func CalculateMean(data []decimal.Decimal) (decimal.Decimal, bool) {
	if len(data) == 0 {
		return decimal.Zero, false
	}
	return CalculateSum(data).Div(decimal.NewFromInt(int64(len(data)))), true
}

// -----------------------------------------------------------------------------

// CalculateSum adds every value.
func CalculateSum(data []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, v := range data {
		sum = sum.Add(v)
	}
	return sum
}

// -----------------------------------------------------------------------------

// CalculateMinMax returns the smallest and largest value. ok is false for an
// empty input.
func CalculateMinMax(data []decimal.Decimal) (min, max decimal.Decimal, ok bool) {
	if len(data) == 0 {
		return decimal.Zero, decimal.Zero, false
	}
	return decimal.Min(data[0], data[1:]...), decimal.Max(data[0], data[1:]...), true
}
