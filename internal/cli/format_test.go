package cli

import (
	"testing"
	"time"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		code   string
		want   string
	}{
		{1234.5, "BDT", "BDT 1,234.50"},
		{0, "BDT", "BDT 0.00"},
		{-100, "USD", "-USD 100.00"},
		{0.005, "USD", "USD 0.01"},
		{1234567.891, "", "BDT 1,234,567.89"},
		{1500, "JPY", "JPY 1,500"},
		{12.5, "XYZ", "XYZ 12.50"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.amount, tt.code); got != tt.want {
			t.Errorf("FormatCurrency(%v, %q) = %q, want %q", tt.amount, tt.code, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4321, "-4,321"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{40.5, "40.5%"},
		{10, "10%"},
		{-10, "-10%"},
		{7.25, "7.3%"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.in); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := FormatTotal(99.95); got != "100.0%" {
		t.Errorf("FormatTotal(99.95) = %q, want 100.0%%", got)
	}
	if got := FormatTotal(100); got != "100.0%" {
		t.Errorf("FormatTotal(100) = %q, want 100.0%%", got)
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "Mar 4, 2025" {
		t.Fatalf("FormatDate = %q", got)
	}
}
