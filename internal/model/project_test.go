package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestRound2(t *testing.T) {
	cases := map[float64]float64{
		2.675:      2.68,
		-2.675:     -2.68,
		1.004:      1,
		449999.999: 450000,
	}
	for in, want := range cases {
		if got := Round2(in); got != want {
			t.Errorf("Round2(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestCalculationRounded(t *testing.T) {
	calc := Calculation{
		Breakdown:         Breakdown{"development": 1234.5678},
		Subtotal:          1234.5678,
		WithholdingAmount: -123.45678,
		FinalAmount:       1111.11102,
		CreatedAt:         time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	data, err := json.Marshal(calc.Rounded())
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{`"development":1234.57`, `"subtotal":1234.57`, `"withholdingAmount":-123.46`, `"finalAmount":1111.11`} {
		if !strings.Contains(s, want) {
			t.Errorf("rounded calculation %s missing %s", s, want)
		}
	}
	if calc.Breakdown["development"] != 1234.5678 {
		t.Fatal("Rounded mutated the breakdown")
	}

	full, err := json.Marshal(calc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(full), `"development":1234.5678`) {
		t.Fatalf("plain encoding %s lost precision", full)
	}
}

func TestProjectCloneIsDeep(t *testing.T) {
	p := Project{
		ID: "PRJ-1",
		Calculation: Calculation{
			Breakdown: Breakdown{"a": 1},
			Weights:   []CategoryWeight{{Key: "a", Percent: 100}},
		},
	}
	c := p.Clone()
	c.Calculation.Breakdown["a"] = 2
	c.Calculation.Weights[0].Percent = 50
	if p.Calculation.Breakdown["a"] != 1 || p.Calculation.Weights[0].Percent != 100 {
		t.Fatal("Clone shares state with the original")
	}
}
