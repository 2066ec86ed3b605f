package receipt

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineItem is an Item with its computed total
type LineItem struct {
	Name     string
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Total    decimal.Decimal
}

// Totals are the summary amounts of a receipt
type Totals struct {
	Subtotal              decimal.Decimal
	DiscountAmount        decimal.Decimal
	SubtotalAfterDiscount decimal.Decimal // May be negative when a fixed discount exceeds the subtotal
	Tax                   decimal.Decimal
	VAT                   decimal.Decimal
	Total                 decimal.Decimal
}

// Calculator turns raw items, discount and rates into line items and totals
type Calculator struct {
	sink DiagnosticSink
}

// NewCalculator creates a Calculator reporting coercions to sink. A nil sink discards them.
func NewCalculator(sink DiagnosticSink) *Calculator {
	if sink == nil {
		sink = discardSink{}
	}
	return &Calculator{sink: sink}
}

// Compute derives line items and totals. Items with a missing, non-finite or
// negative quantity or price are kept with both fields set to zero.
// Tax and VAT are both computed on the discounted subtotal.
func (c *Calculator) Compute(items []Item, discount *Discount, taxRate, vatRate float64) ([]LineItem, Totals) {
	lines := make([]LineItem, 0, len(items))
	subtotal := decimal.Zero
	for i, it := range items {
		qty, price := it.Quantity, it.Price
		if !validAmount(qty) || !validAmount(price) {
			c.sink.Report(Diagnostic{
				Kind:    InputAnomaly,
				Message: "Invalid item quantity or price, using zero",
				Attrs:   []any{"item", i, "name", it.Name, "quantity", qty, "price", price},
			})
			qty, price = 0, 0
		}
		line := LineItem{
			Name:     it.Name,
			Quantity: decimal.NewFromFloat(qty),
			Price:    decimal.NewFromFloat(price),
		}
		line.Total = line.Quantity.Mul(line.Price)
		subtotal = subtotal.Add(line.Total)
		lines = append(lines, line)
	}

	discountAmount := decimal.Zero
	if discount != nil {
		value := c.amount("discount", discount.Value)
		if discount.Type == DiscountPercentage {
			discountAmount = subtotal.Mul(value).Div(hundred)
		} else {
			discountAmount = value
		}
	}

	after := subtotal.Sub(discountAmount)
	tax := after.Mul(c.amount("taxRate", taxRate))
	vat := after.Mul(c.amount("vatRate", vatRate))

	return lines, Totals{
		Subtotal:              subtotal,
		DiscountAmount:        discountAmount,
		SubtotalAfterDiscount: after,
		Tax:                   tax,
		VAT:                   vat,
		Total:                 after.Add(tax).Add(vat),
	}
}

// amount converts a rate or discount value, coercing anything invalid to zero
func (c *Calculator) amount(field string, v float64) decimal.Decimal {
	if !validAmount(v) {
		c.sink.Report(Diagnostic{
			Kind:    InputAnomaly,
			Message: "Invalid receipt amount, using zero",
			Attrs:   []any{"field", field, "value", v},
		})
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
