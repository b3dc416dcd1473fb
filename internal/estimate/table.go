package estimate

import (
	"math"

	"github.com/theirongolddev/quotekit/internal/model"
)

// TotalKey selects allocation from a known total instead of a known category.
const TotalKey = "total"

// SumTolerance is how far the weight total may drift from 100.
const SumTolerance = 0.01

// DefaultWeights returns the stock allocation table.
func DefaultWeights() []model.CategoryWeight {
	return []model.CategoryWeight{
		{Key: "development", DisplayName: "Development", Percent: 40.5},
		{Key: "design", DisplayName: "UI/UX Design", Percent: 26.5},
		{Key: "communication", DisplayName: "Client Communication", Percent: 7.5},
		{Key: "management", DisplayName: "Project Management & QA", Percent: 7.5},
		{Key: "overhead", DisplayName: "Agency Overhead & Profit", Percent: 10},
		{Key: "broker", DisplayName: "Broker Fee", Percent: 8},
	}
}

// Validate reports whether every weight is finite and non-negative and the
// weights total 100 within SumTolerance. Keys must be non-empty, unique and
// distinct from TotalKey.
func Validate(weights []model.CategoryWeight) bool {
	if len(weights) == 0 {
		return false
	}
	seen := make(map[string]bool, len(weights))
	sum := 0.0
	for _, w := range weights {
		if w.Key == "" || w.Key == TotalKey || seen[w.Key] {
			return false
		}
		seen[w.Key] = true
		if math.IsNaN(w.Percent) || math.IsInf(w.Percent, 0) || w.Percent < 0 {
			return false
		}
		sum += w.Percent
	}
	return math.Abs(sum-100) <= SumTolerance
}

// Table is the category -> percentage allocation table. A table may be
// temporarily invalid while a user edits it; Allocate refuses to use it
// until Valid reports true again.
type Table struct {
	weights []model.CategoryWeight
	valid   bool
}

// NewTable copies weights into a new table.
func NewTable(weights []model.CategoryWeight) *Table {
	t := &Table{}
	t.Update(weights)
	return t
}

// Update replaces the table wholesale and re-runs validation.
func (t *Table) Update(weights []model.CategoryWeight) {
	t.weights = append([]model.CategoryWeight(nil), weights...)
	t.valid = Validate(t.weights)
}

// Valid reports the result of the last validation.
func (t *Table) Valid() bool { return t.valid }

// Sum returns the total of all weights.
func (t *Table) Sum() float64 {
	sum := 0.0
	for _, w := range t.weights {
		sum += w.Percent
	}
	return sum
}

// Weights returns a copy of the entries in table order.
func (t *Table) Weights() []model.CategoryWeight {
	return append([]model.CategoryWeight(nil), t.weights...)
}

// Lookup finds a category by key.
func (t *Table) Lookup(key string) (model.CategoryWeight, bool) {
	for _, w := range t.weights {
		if w.Key == key {
			return w, true
		}
	}
	return model.CategoryWeight{}, false
}
