package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidPercent = errors.New("percent must be between 0 and 100")

// Commission returns total*percent/100 rounded half-even to cents.
// A nil or zero percent earns nothing.
func Commission(total decimal.Decimal, percent *decimal.Decimal) decimal.Decimal {
	if percent == nil || percent.IsZero() {
		return decimal.Zero
	}
	return total.Mul(*percent).Div(hundred).RoundBank(2)
}

func ValidatePercent(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(hundred) {
		return ErrInvalidPercent
	}
	return nil
}
