package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestCalculateQuote(t *testing.T) {
	tests := []struct {
		name      string
		lines     []Line
		discount  Discount
		wantGross string
		wantNet   string
		wantErr   error
	}{
		{
			name:      "percent discount",
			lines:     []Line{{Quantity: dec("10"), UnitPrice: dec("100")}},
			discount:  Discount{Percent: decp("10")},
			wantGross: "1000",
			wantNet:   "900",
		},
		{
			name:      "fixed discount",
			lines:     []Line{{Quantity: dec("10"), UnitPrice: dec("100")}},
			discount:  Discount{Amount: decp("150")},
			wantGross: "1000",
			wantNet:   "850",
		},
		{
			name: "no discount sums lines",
			lines: []Line{
				{Quantity: dec("2"), UnitPrice: dec("12.50")},
				{Quantity: dec("1.5"), UnitPrice: dec("3.34")},
			},
			wantGross: "30.01",
			wantNet:   "30.01",
		},
		{
			name:      "zero percent is unset",
			lines:     []Line{{Quantity: dec("1"), UnitPrice: dec("50")}},
			discount:  Discount{Percent: decp("0"), Amount: decp("5")},
			wantGross: "50",
			wantNet:   "45",
		},
		{
			name:      "no items",
			discount:  Discount{Percent: decp("10")},
			wantGross: "0",
			wantNet:   "0",
		},
		{
			name:      "line total rounds half even",
			lines:     []Line{{Quantity: dec("1"), UnitPrice: dec("0.125")}},
			wantGross: "0.12",
			wantNet:   "0.12",
		},
		{
			name:     "both discounts",
			lines:    []Line{{Quantity: dec("1"), UnitPrice: dec("50")}},
			discount: Discount{Percent: decp("10"), Amount: decp("5")},
			wantErr:  ErrConflictingDiscount,
		},
		{
			name:     "percent above 100",
			lines:    []Line{{Quantity: dec("1"), UnitPrice: dec("50")}},
			discount: Discount{Percent: decp("101")},
			wantErr:  ErrInvalidDiscount,
		},
		{
			name:     "negative amount",
			lines:    []Line{{Quantity: dec("1"), UnitPrice: dec("50")}},
			discount: Discount{Amount: decp("-1")},
			wantErr:  ErrInvalidDiscount,
		},
		{
			name:     "amount above subtotal",
			lines:    []Line{{Quantity: dec("1"), UnitPrice: dec("50")}},
			discount: Discount{Amount: decp("60")},
			wantErr:  ErrNegativeTotal,
		},
		{
			name:    "zero quantity",
			lines:   []Line{{Quantity: dec("0"), UnitPrice: dec("50")}},
			wantErr: ErrInvalidLine,
		},
		{
			name:    "negative price",
			lines:   []Line{{Quantity: dec("1"), UnitPrice: dec("-50")}},
			wantErr: ErrInvalidLine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateQuote(tt.lines, tt.discount)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Gross.Equal(dec(tt.wantGross)) {
				t.Errorf("gross = %s, want %s", got.Gross, tt.wantGross)
			}
			if !got.Net.Equal(dec(tt.wantNet)) {
				t.Errorf("net = %s, want %s", got.Net, tt.wantNet)
			}
			if len(got.LineTotals) != len(tt.lines) {
				t.Errorf("got %d line totals, want %d", len(got.LineTotals), len(tt.lines))
			}
		})
	}
}

func TestCommission(t *testing.T) {
	tests := []struct {
		name    string
		total   string
		percent *decimal.Decimal
		want    string
	}{
		{"ten percent", "10000", decp("10"), "1000"},
		{"nil percent", "10000", nil, "0"},
		{"zero percent", "10000", decp("0"), "0"},
		{"half even", "0.25", decp("10"), "0.02"},
		{"fractional percent", "1234.56", decp("7.5"), "92.59"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Commission(dec(tt.total), tt.percent)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("Commission(%s) = %s, want %s", tt.total, got, tt.want)
			}
		})
	}
}

func TestValidatePercent(t *testing.T) {
	for _, p := range []string{"0", "50", "100"} {
		if err := ValidatePercent(dec(p)); err != nil {
			t.Errorf("ValidatePercent(%s) returned %v", p, err)
		}
	}
	for _, p := range []string{"-0.01", "100.01"} {
		if err := ValidatePercent(dec(p)); !errors.Is(err, ErrInvalidPercent) {
			t.Errorf("ValidatePercent(%s) = %v, want ErrInvalidPercent", p, err)
		}
	}
}
