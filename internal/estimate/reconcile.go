package estimate

import (
	"fmt"
	"math"

	"github.com/theirongolddev/quotekit/internal/model"
)

// NormalizeWithholding maps a withholding percentage onto the stored sign
// convention: deductions are negative. Both -10 and 10 mean "withhold 10%".
func NormalizeWithholding(percent float64) float64 {
	return -math.Abs(percent)
}

// Reconcile applies withholding and discount to a breakdown.
//
// The discount is taken from the amount left after withholding. Nothing is
// rounded here.
func Reconcile(breakdown model.Breakdown, withholdingPercent, discountPercent float64) (model.Calculation, error) {
	for _, k := range breakdown.Keys() {
		if err := checkAmount(fmt.Sprintf("amount for %q", k), breakdown[k]); err != nil {
			return model.Calculation{}, err
		}
	}
	if math.IsNaN(withholdingPercent) || math.IsInf(withholdingPercent, 0) {
		return model.Calculation{}, fmt.Errorf("%w: withholding is not a finite number", ErrInvalidBaseAmount)
	}
	if math.IsNaN(discountPercent) || discountPercent < 0 || discountPercent > 100 {
		return model.Calculation{}, fmt.Errorf("%w: got %v", ErrInvalidDiscountRange, discountPercent)
	}

	withholdingPercent = NormalizeWithholding(withholdingPercent)

	calc := model.Calculation{
		Breakdown:          breakdown.Clone(),
		Subtotal:           breakdown.Sum(),
		WithholdingPercent: withholdingPercent,
		DiscountPercent:    discountPercent,
	}
	calc.WithholdingAmount = calc.Subtotal * withholdingPercent / 100
	after := calc.AfterWithholding()
	calc.DiscountAmount = after * discountPercent / 100
	calc.FinalAmount = after - calc.DiscountAmount
	return calc, nil
}
