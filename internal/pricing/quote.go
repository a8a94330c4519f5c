// Package pricing holds the pure money calculations used by quotes and sales.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidLine         = errors.New("quantity must be positive and unit price must not be negative")
	ErrInvalidDiscount     = errors.New("discount must be a percent between 0 and 100 or a non-negative amount")
	ErrConflictingDiscount = errors.New("discount percent and discount amount are mutually exclusive")
	ErrNegativeTotal       = errors.New("discount exceeds the quote subtotal")
)

var hundred = decimal.NewFromInt(100)

// Line is one quoted product line
type Line struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// Total returns quantity times unit price rounded to cents.
func (l Line) Total() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice).RoundBank(2)
}

// Discount applied to the whole quote. Nil or zero values mean unset.
type Discount struct {
	Percent *decimal.Decimal
	Amount  *decimal.Decimal
}

func (d Discount) hasPercent() bool { return d.Percent != nil && !d.Percent.IsZero() }
func (d Discount) hasAmount() bool  { return d.Amount != nil && !d.Amount.IsZero() }

// Validate checks the discount on its own, without a subtotal.
func (d Discount) Validate() error {
	if d.hasPercent() && d.hasAmount() {
		return ErrConflictingDiscount
	}
	if d.Percent != nil {
		if err := ValidatePercent(*d.Percent); err != nil {
			return ErrInvalidDiscount
		}
	}
	if d.Amount != nil && d.Amount.IsNegative() {
		return ErrInvalidDiscount
	}
	return nil
}

// Totals is the result of pricing a quote
type Totals struct {
	LineTotals []decimal.Decimal
	Gross      decimal.Decimal
	Net        decimal.Decimal
}

// CalculateQuote prices lines and applies at most one discount.
// An empty line set yields zero totals.
func CalculateQuote(lines []Line, d Discount) (Totals, error) {
	if err := d.Validate(); err != nil {
		return Totals{}, err
	}

	t := Totals{LineTotals: make([]decimal.Decimal, len(lines)), Gross: decimal.Zero}
	for i, l := range lines {
		if !l.Quantity.IsPositive() || l.UnitPrice.IsNegative() {
			return Totals{}, ErrInvalidLine
		}
		t.LineTotals[i] = l.Total()
		t.Gross = t.Gross.Add(t.LineTotals[i])
	}

	switch {
	case d.hasPercent():
		factor := hundred.Sub(*d.Percent).Div(hundred)
		t.Net = t.Gross.Mul(factor)
	case d.hasAmount():
		t.Net = t.Gross.Sub(*d.Amount)
	default:
		t.Net = t.Gross
	}
	if t.Net.IsNegative() {
		return Totals{}, ErrNegativeTotal
	}
	t.Net = t.Net.RoundBank(2)
	return t, nil
}
