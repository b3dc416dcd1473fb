// Package estimate derives cost breakdowns from a percentage allocation table
// and reconciles them into a payable amount.
package estimate

import "errors"

var (
	// ErrInvalidAllocationInput is returned when the reference category cannot
	// anchor an allocation (unknown key or zero weight).
	ErrInvalidAllocationInput = errors.New("invalid allocation input")
	// ErrInvalidDiscountRange is returned for a discount outside [0, 100].
	ErrInvalidDiscountRange = errors.New("discount must be between 0 and 100%")
	// ErrInvalidBaseAmount is returned for negative or non-finite amounts.
	ErrInvalidBaseAmount = errors.New("invalid base amount")
	// ErrInvalidTable is returned when allocation is attempted with a table
	// whose weights do not total 100%.
	ErrInvalidTable = errors.New("category percentages must total 100%")
)
