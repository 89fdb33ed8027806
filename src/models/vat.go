package models

import "fmt"

// MVatRegime selects the tax multiplier applied to raw prices.
type MVatRegime int

const (
	Vat24 MVatRegime = 24
	Vat10 MVatRegime = 10
	Vat0  MVatRegime = 0
)

// ParseVatRegime maps "24", "10" and "0" (optionally suffixed with "%") to a regime.
// An empty string selects the default 24% regime.
func ParseVatRegime(s string) (MVatRegime, error) {
	switch s {
	case "", "24", "24%":
		return Vat24, nil
	case "10", "10%":
		return Vat10, nil
	case "0", "0%":
		return Vat0, nil
	}
	return 0, fmt.Errorf("unsupported VAT regime %q", s)
}

// Multiplier returns the regime factor as a decimal string so callers can keep
// exact arithmetic.
func (r MVatRegime) Multiplier() string {
	switch r {
	case Vat10:
		return "1.10"
	case Vat0:
		return "1.00"
	default:
		return "1.24"
	}
}

func (r MVatRegime) String() string {
	return fmt.Sprintf("VAT %d%%", int(r))
}
