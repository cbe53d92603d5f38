package cart

import "github.com/shopspring/decimal"

// Destination is where an order would ship. The base estimate ignores it.
type Destination struct {
	Region     string
	PostalCode string
}

// ShippingRates parameterize the estimate: Base plus PerWeightUnit for
// every unit of line weight.
type ShippingRates struct {
	Base          float64
	PerWeightUnit float64
}

// EstimateShipping returns Base + Σ(weight × quantity) × PerWeightUnit,
// rounded to the nearest whole currency unit. It is advisory and never
// part of the cart total.
func EstimateShipping(lines []Line, _ Destination, rates ShippingRates) float64 {
	weight := decimal.Zero
	for _, l := range lines {
		weight = weight.Add(decimal.NewFromFloat(l.Weight).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	cost := decimal.NewFromFloat(rates.Base).Add(weight.Mul(decimal.NewFromFloat(rates.PerWeightUnit)))
	return cost.Round(0).InexactFloat64()
}
