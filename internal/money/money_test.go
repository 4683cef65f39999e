package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeLine(t *testing.T) {
	tests := []struct {
		name string
		line Line
		want LineTotals
		err  error
	}{
		{
			name: "two units at 500 rupees with 18 percent tax",
			line: Line{UnitPrice: 50000, Quantity: 2, TaxRate: 18},
			want: LineTotals{Taxable: 100000, Tax: 18000, Total: 118000},
		},
		{
			name: "discount reduces taxable amount",
			line: Line{UnitPrice: 50000, Quantity: 2, Discount: 10000, TaxRate: 18},
			want: LineTotals{Taxable: 90000, Tax: 16200, Total: 106200},
		},
		{
			name: "zero tax rate",
			line: Line{UnitPrice: 9999, Quantity: 3, TaxRate: 0},
			want: LineTotals{Taxable: 29997, Tax: 0, Total: 29997},
		},
		{
			name: "fractional tax rate rounds half away from zero",
			line: Line{UnitPrice: 101, Quantity: 1, TaxRate: 12.5},
			// 101 * 0.125 = 12.625 -> 13
			want: LineTotals{Taxable: 101, Tax: 13, Total: 114},
		},
		{
			name: "negative quantity",
			line: Line{UnitPrice: 100, Quantity: -1, TaxRate: 18},
			err:  ErrInvalidQuantity,
		},
		{
			name: "zero quantity",
			line: Line{UnitPrice: 100, Quantity: 0, TaxRate: 18},
			err:  ErrInvalidQuantity,
		},
		{
			name: "negative unit price",
			line: Line{UnitPrice: -100, Quantity: 1, TaxRate: 18},
			err:  ErrInvalidUnitPrice,
		},
		{
			name: "tax rate above 100",
			line: Line{UnitPrice: 100, Quantity: 1, TaxRate: 101},
			err:  ErrInvalidTaxRate,
		},
		{
			name: "negative tax rate",
			line: Line{UnitPrice: 100, Quantity: 1, TaxRate: -1},
			err:  ErrInvalidTaxRate,
		},
		{
			name: "discount exceeding gross",
			line: Line{UnitPrice: 100, Quantity: 1, Discount: 101, TaxRate: 18},
			err:  ErrInvalidDiscount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeLine(tt.line)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeOrderNoDriftAcrossLines(t *testing.T) {
	lines := []Line{
		{UnitPrice: 333, Quantity: 3, TaxRate: 18.5},
		{UnitPrice: 499, Quantity: 7, Discount: 150, TaxRate: 12.25},
		{UnitPrice: 101, Quantity: 11, TaxRate: 5.5},
	}

	var wantSubtotal, wantTax int64
	for _, line := range lines {
		lt, err := ComputeLine(line)
		require.NoError(t, err)
		wantSubtotal += lt.Total
		wantTax += lt.Tax
	}

	totals, err := ComputeOrder(lines, 5000, 1500)
	require.NoError(t, err)
	assert.Equal(t, wantSubtotal, totals.Subtotal)
	assert.Equal(t, wantTax, totals.TaxTotal)
	assert.Equal(t, int64(150), totals.DiscountTotal)
	assert.Equal(t, wantSubtotal+5000+1500, totals.Total)
}

func TestComputeOrderScenario(t *testing.T) {
	// 2 units priced 500.00 at 18% tax, no discount, 50.00 shipping.
	totals, err := ComputeOrder([]Line{
		{UnitPrice: 50000, Quantity: 2, TaxRate: 18},
	}, 5000, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(118000), totals.Subtotal)
	assert.Equal(t, int64(123000), totals.Total)
	assert.Equal(t, "1180.00", Format(totals.Subtotal))
	assert.Equal(t, "1230.00", Format(totals.Total))
}

func TestComputeOrderRejectsBadLine(t *testing.T) {
	_, err := ComputeOrder([]Line{
		{UnitPrice: 100, Quantity: 1, TaxRate: 18},
		{UnitPrice: 100, Quantity: -2, TaxRate: 18},
	}, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestComputeOrderRejectsNegativeCharges(t *testing.T) {
	lines := []Line{{UnitPrice: 100, Quantity: 1, TaxRate: 18}}

	_, err := ComputeOrder(lines, -1, 0)
	assert.ErrorIs(t, err, ErrInvalidCharge)

	_, err = ComputeOrder(lines, 0, -1)
	assert.ErrorIs(t, err, ErrInvalidCharge)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0.00", Format(0))
	assert.Equal(t, "0.05", Format(5))
	assert.Equal(t, "1230.00", Format(123000))
	assert.Equal(t, "-12.34", Format(-1234))
}
