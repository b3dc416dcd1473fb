package estimate

import (
	"fmt"
	"math"

	"github.com/theirongolddev/quotekit/internal/model"
)

// Allocate derives every category amount from one known amount.
//
// With key == TotalKey, known is the total and each category receives its
// share. Otherwise known is the amount of category key; the implied total is
// known / (P/100) and the named category keeps known exactly.
func Allocate(known float64, key string, t *Table) (model.Breakdown, error) {
	if err := checkAmount("known amount", known); err != nil {
		return nil, err
	}
	if t == nil || !t.Valid() {
		return nil, ErrInvalidTable
	}

	total := known
	if key != TotalKey {
		w, ok := t.Lookup(key)
		if !ok {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidAllocationInput, key)
		}
		if w.Percent == 0 {
			return nil, fmt.Errorf("%w: category %q has a zero weight", ErrInvalidAllocationInput, key)
		}
		total = known / (w.Percent / 100)
	}

	breakdown := make(model.Breakdown, len(t.weights))
	for _, w := range t.weights {
		breakdown[w.Key] = total * (w.Percent / 100)
	}
	if key != TotalKey {
		breakdown[key] = known
	}
	return breakdown, nil
}

func checkAmount(what string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s is not a finite number", ErrInvalidBaseAmount, what)
	}
	if v < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidBaseAmount, what)
	}
	return nil
}
