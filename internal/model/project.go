// Package model defines domain types for quotekit estimates and projects.
package model

import (
	"sort"
	"time"
)

// CategoryWeight is one entry of the allocation table.
type CategoryWeight struct {
	Key         string  `json:"key" toml:"key"`
	DisplayName string  `json:"displayName" toml:"name"`
	Percent     float64 `json:"percent" toml:"percent"`
}

// Breakdown maps a category key to its derived amount.
type Breakdown map[string]float64

// Keys returns the category keys in lexical order.
func (b Breakdown) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sum adds the amounts in key order so repeated calls are bit-identical.
func (b Breakdown) Sum() float64 {
	var total float64
	for _, k := range b.Keys() {
		total += b[k]
	}
	return total
}

// Clone returns an independent copy.
func (b Breakdown) Clone() Breakdown {
	if b == nil {
		return nil
	}
	out := make(Breakdown, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Calculation is one reconciled estimate.
//
// WithholdingPercent is stored negative when it represents a deduction, so
// Subtotal + WithholdingAmount is the amount left after withholding.
type Calculation struct {
	Breakdown          Breakdown        `json:"breakdown"`
	Weights            []CategoryWeight `json:"weights,omitempty"`
	Subtotal           float64          `json:"subtotal"`
	WithholdingPercent float64          `json:"withholdingPercent"`
	WithholdingAmount  float64          `json:"withholdingAmount"`
	DiscountPercent    float64          `json:"discountPercent"`
	DiscountAmount     float64          `json:"discountAmount"`
	FinalAmount        float64          `json:"finalAmount"`
	ProjectName        string           `json:"projectName"`
	CreatedAt          time.Time        `json:"createdAt"`
}

// AfterWithholding returns the amount the discount is computed on.
func (c Calculation) AfterWithholding() float64 {
	return c.Subtotal + c.WithholdingAmount
}

// Clone returns a deep copy.
func (c Calculation) Clone() Calculation {
	out := c
	out.Breakdown = c.Breakdown.Clone()
	if c.Weights != nil {
		out.Weights = append([]CategoryWeight(nil), c.Weights...)
	}
	return out
}

// Status is the lifecycle marker of a stored project.
type Status string

const (
	StatusDraft Status = "draft"
	StatusSaved Status = "saved"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusSaved
}

// Project is a named, persisted snapshot of a calculation plus notes.
type Project struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	CreatedAt   time.Time   `json:"createdAt"`
	Calculation Calculation `json:"calculation"`
	Notes       string      `json:"notes"`
	Status      Status      `json:"status"`
}

// Clone returns a deep copy.
func (p Project) Clone() Project {
	out := p
	out.Calculation = p.Calculation.Clone()
	return out
}
