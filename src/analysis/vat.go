package analysis

import (
	"fmt"
	"strings"

	"spot-observer/src/helpers"
	"spot-observer/src/models"

	"github.com/shopspring/decimal"
)

var ten = decimal.NewFromInt(10)

// -----------------------------------------------------------------------------

// ParseRaw reads an upstream token as an exact decimal. The DST sentinel and
// any other non-numeric token yield a RowParseError.
func ParseRaw(raw models.MRawValue) (decimal.Decimal, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == models.DSTGapValue {
		return decimal.Zero, helpers.NewRowParseError(-1, s)
	}
	s = strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, helpers.NewRowParseError(-1, string(raw))
	}
	return d, nil
}

// -----------------------------------------------------------------------------

func regimeMultiplier(regime models.MVatRegime) (decimal.Decimal, error) {
	switch regime {
	case models.Vat24, models.Vat10, models.Vat0:
		return decimal.RequireFromString(regime.Multiplier()), nil
	}
	return decimal.Zero, fmt.Errorf("%w: %d", helpers.ErrInvalidRegime, int(regime))
}

// scale applies value * multiplier / 10.
func scale(raw models.MRawValue, regime models.MVatRegime) (decimal.Decimal, error) {
	mult, err := regimeMultiplier(regime)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := ParseRaw(raw)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Mul(mult).Div(ten), nil
}

// -----------------------------------------------------------------------------

// ScalePrice converts a raw upstream price to the displayed unit under a VAT
// regime: raw * multiplier / 10.
func ScalePrice(raw models.MRawValue, regime models.MVatRegime) (float64, error) {
	d, err := scale(raw, regime)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
