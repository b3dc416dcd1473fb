package estimate

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/theirongolddev/quotekit/internal/model"
)

func almost(a, b float64) bool {
	return math.Abs(a-b) <= 1e-6*math.Max(1, math.Abs(b))
}

func TestReconcileWithholding(t *testing.T) {
	calc, err := Reconcile(model.Breakdown{"a": 1000}, -10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if calc.WithholdingAmount != -100 {
		t.Fatalf("WithholdingAmount = %v, want -100", calc.WithholdingAmount)
	}
	if calc.AfterWithholding() != 900 {
		t.Fatalf("AfterWithholding = %v, want 900", calc.AfterWithholding())
	}
}

func TestReconcilePositiveWithholdingIsNegated(t *testing.T) {
	neg, err := Reconcile(model.Breakdown{"a": 1000}, -10, 5)
	if err != nil {
		t.Fatal(err)
	}
	pos, err := Reconcile(model.Breakdown{"a": 1000}, 10, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(neg, pos) {
		t.Fatalf("positive and negative withholding differ:\n%+v\n%+v", neg, pos)
	}
	if pos.WithholdingPercent != -10 {
		t.Fatalf("WithholdingPercent = %v, want -10", pos.WithholdingPercent)
	}
}

func TestReconcileDiscountOnAfterWithholding(t *testing.T) {
	calc, err := Reconcile(model.Breakdown{"a": 900}, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if calc.DiscountAmount != 90 {
		t.Fatalf("DiscountAmount = %v, want 90", calc.DiscountAmount)
	}
	if calc.FinalAmount != 810 {
		t.Fatalf("FinalAmount = %v, want 810", calc.FinalAmount)
	}
}

func TestReconcileIsPure(t *testing.T) {
	tbl := NewTable(DefaultWeights())
	b, err := Allocate(123456.78, "design", tbl)
	if err != nil {
		t.Fatal(err)
	}
	first, err := Reconcile(b, -7.5, 12.25)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Reconcile(b, -7.5, 12.25)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Reconcile not idempotent:\n%+v\n%+v", first, second)
	}

	first.Breakdown["design"] = 0
	if b["design"] != 123456.78 {
		t.Fatal("Reconcile result shares its breakdown with the input")
	}
}

func TestReconcileInvariants(t *testing.T) {
	b := model.Breakdown{"x": 333.33, "y": 666.67, "z": 0.005}
	calc, err := Reconcile(b, -12.5, 3.75)
	if err != nil {
		t.Fatal(err)
	}
	if !almost(calc.Subtotal, b.Sum()) {
		t.Fatalf("Subtotal = %v, want %v", calc.Subtotal, b.Sum())
	}
	if !almost(calc.WithholdingAmount, calc.Subtotal*calc.WithholdingPercent/100) {
		t.Fatalf("WithholdingAmount = %v", calc.WithholdingAmount)
	}
	if !almost(calc.FinalAmount, calc.Subtotal+calc.WithholdingAmount-calc.DiscountAmount) {
		t.Fatalf("FinalAmount = %v", calc.FinalAmount)
	}
}

func TestReconcileErrors(t *testing.T) {
	good := model.Breakdown{"a": 100}
	for _, d := range []float64{-0.01, 100.01, math.NaN()} {
		if _, err := Reconcile(good, -10, d); !errors.Is(err, ErrInvalidDiscountRange) {
			t.Errorf("discount %v err = %v, want ErrInvalidDiscountRange", d, err)
		}
	}
	for _, d := range []float64{0, 100} {
		if _, err := Reconcile(good, -10, d); err != nil {
			t.Errorf("discount %v should be accepted: %v", d, err)
		}
	}
	if _, err := Reconcile(model.Breakdown{"a": -1}, -10, 0); !errors.Is(err, ErrInvalidBaseAmount) {
		t.Errorf("negative amount err = %v, want ErrInvalidBaseAmount", err)
	}
	if _, err := Reconcile(good, math.Inf(-1), 0); !errors.Is(err, ErrInvalidBaseAmount) {
		t.Errorf("infinite withholding err = %v, want ErrInvalidBaseAmount", err)
	}
}

func TestEndToEndDefaultWeights(t *testing.T) {
	tbl := NewTable(DefaultWeights())
	b, err := Allocate(500000, TotalKey, tbl)
	if err != nil {
		t.Fatal(err)
	}
	calc, err := Reconcile(b, -10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !almost(calc.Subtotal, 500000) {
		t.Fatalf("Subtotal = %v, want 500000", calc.Subtotal)
	}
	if !almost(calc.WithholdingAmount, -50000) {
		t.Fatalf("WithholdingAmount = %v, want -50000", calc.WithholdingAmount)
	}
	if !almost(calc.AfterWithholding(), 450000) {
		t.Fatalf("AfterWithholding = %v, want 450000", calc.AfterWithholding())
	}
	if calc.DiscountAmount != 0 {
		t.Fatalf("DiscountAmount = %v, want 0", calc.DiscountAmount)
	}
	if !almost(calc.FinalAmount, 450000) {
		t.Fatalf("FinalAmount = %v, want 450000", calc.FinalAmount)
	}
}
