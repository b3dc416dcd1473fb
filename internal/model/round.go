package model

import "github.com/shopspring/decimal"

// Round2 rounds half away from zero to two decimal places.
// Amounts are only rounded for display and reports; stored calculations keep
// full precision.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Rounded returns a copy of c with every monetary amount rounded to cents.
func (c Calculation) Rounded() Calculation {
	out := c.Clone()
	for k, v := range out.Breakdown {
		out.Breakdown[k] = Round2(v)
	}
	out.Subtotal = Round2(out.Subtotal)
	out.WithholdingAmount = Round2(out.WithholdingAmount)
	out.DiscountAmount = Round2(out.DiscountAmount)
	out.FinalAmount = Round2(out.FinalAmount)
	return out
}
