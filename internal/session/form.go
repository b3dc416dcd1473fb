package session

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Form field names. Category amounts are read from a field named after the
// category key.
const (
	FieldProjectName = "project_name"
	FieldTotal       = "total"
	FieldWithholding = "withholding"
	FieldDiscount    = "discount"
)

// Input limits.
const (
	MaxAmount     = 10_000_000
	MinNameLength = 2
	MaxNameLength = 100
)

// FormReader reads the raw text of named input fields. Missing fields read
// as empty.
type FormReader interface {
	Field(name string) string
}

// Form is a FormReader backed by a map.
type Form map[string]string

// Field returns the value of name.
func (f Form) Field(name string) string { return f[name] }

// SanitizeName trims a project name and removes angle brackets.
func SanitizeName(name string) string {
	name = strings.NewReplacer("<", "", ">", "").Replace(name)
	return strings.TrimSpace(name)
}

// ValidateName checks a sanitized project name.
func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < MinNameLength || n > MaxNameLength {
		return fmt.Errorf("%w: project name must be %d to %d characters", ErrValidation, MinNameLength, MaxNameLength)
	}
	return nil
}

// parseNumber reads a decimal number, tolerating thousands separators.
func parseNumber(field, raw string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrValidation, field, raw)
	}
	return v, nil
}

// parseAmount reads a known cost entry.
func parseAmount(field, raw string) (float64, error) {
	v, err := parseNumber(field, raw)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || v <= 0 || v > MaxAmount {
		return 0, fmt.Errorf("%w: %s must be greater than 0 and at most %d", ErrValidation, field, MaxAmount)
	}
	return v, nil
}
