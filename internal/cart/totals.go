package cart

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Recalculate derives ItemCount, Subtotal, Discount and Total from the
// lines and coupon. Money is summed in decimal and rounded to cents.
func Recalculate(s State) State {
	subtotal := decimal.Zero
	count := 0
	for _, l := range s.Lines {
		subtotal = subtotal.Add(lineAmount(l))
		count += l.Quantity
	}
	subtotal = subtotal.Round(2)

	discount := couponDiscount(s.Coupon, subtotal)
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	s.ItemCount = count
	s.Subtotal = subtotal.InexactFloat64()
	s.Discount = discount.InexactFloat64()
	s.Total = total.InexactFloat64()
	return s
}

// LineTotal is unit price × quantity, rounded to cents.
func LineTotal(l Line) float64 {
	return lineAmount(l).Round(2).InexactFloat64()
}

func lineAmount(l Line) decimal.Decimal {
	return decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// couponDiscount is min(pct% of subtotal, maxDiscount), clamped to
// [0, subtotal].
func couponDiscount(c *Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if c == nil || c.DiscountPercentage <= 0 {
		return decimal.Zero
	}
	d := subtotal.Mul(decimal.NewFromFloat(c.DiscountPercentage)).Div(hundred)
	if c.MaxDiscount != nil {
		max := decimal.NewFromFloat(*c.MaxDiscount)
		if d.GreaterThan(max) {
			d = max
		}
	}
	if d.IsNegative() {
		d = decimal.Zero
	}
	if d.GreaterThan(subtotal) {
		d = subtotal
	}
	return d.Round(2)
}
