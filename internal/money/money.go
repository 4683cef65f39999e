// Package money computes line and order totals in integer minor currency
// units (paise). Only the presentation boundary formats decimals, so repeated
// additions never accumulate floating-point drift.
package money

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidUnitPrice = errors.New("invalid_unit_price")
	ErrInvalidTaxRate   = errors.New("invalid_tax_rate")
	ErrInvalidDiscount  = errors.New("invalid_discount")
	ErrInvalidCharge    = errors.New("invalid_charge")
)

// Line is the pricing input for a single line item. UnitPrice and Discount
// are in minor units; TaxRate is a percentage in [0, 100].
type Line struct {
	UnitPrice int64
	Quantity  int64
	Discount  int64
	TaxRate   float64
}

// LineTotals is the priced result for one line, in minor units.
type LineTotals struct {
	Taxable int64
	Tax     int64
	Total   int64
}

// ComputeLine prices one line item:
//
//	taxable = unitPrice*quantity - discount
//	tax     = taxable * taxRate/100, rounded half away from zero
//	total   = taxable + tax
func ComputeLine(line Line) (LineTotals, error) {
	if line.Quantity <= 0 {
		return LineTotals{}, ErrInvalidQuantity
	}
	if line.UnitPrice < 0 {
		return LineTotals{}, ErrInvalidUnitPrice
	}
	if line.TaxRate < 0 || line.TaxRate > 100 {
		return LineTotals{}, ErrInvalidTaxRate
	}

	gross := line.UnitPrice * line.Quantity
	if line.Discount < 0 || line.Discount > gross {
		return LineTotals{}, ErrInvalidDiscount
	}

	taxable := gross - line.Discount
	tax := int64(math.Round(float64(taxable) * line.TaxRate / 100))

	return LineTotals{
		Taxable: taxable,
		Tax:     tax,
		Total:   taxable + tax,
	}, nil
}

// OrderTotals aggregates priced lines plus order-level charges.
type OrderTotals struct {
	Subtotal      int64
	DiscountTotal int64
	TaxTotal      int64
	Shipping      int64
	Packaging     int64
	Total         int64
}

// ComputeOrder sums line totals and adds shipping and packaging charges.
// Subtotal already nets per-line tax and discount.
func ComputeOrder(lines []Line, shipping, packaging int64) (OrderTotals, error) {
	if shipping < 0 || packaging < 0 {
		return OrderTotals{}, ErrInvalidCharge
	}

	var totals OrderTotals
	for _, line := range lines {
		lt, err := ComputeLine(line)
		if err != nil {
			return OrderTotals{}, err
		}
		totals.Subtotal += lt.Total
		totals.DiscountTotal += line.Discount
		totals.TaxTotal += lt.Tax
	}

	totals.Shipping = shipping
	totals.Packaging = packaging
	totals.Total = totals.Subtotal + shipping + packaging
	return totals, nil
}

// Format renders a minor-unit amount as a decimal string, e.g. 123000 -> "1230.00".
func Format(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
