package theme

import "testing"

func TestByNameFallsBackToFlexoki(t *testing.T) {
	if got := ByName("tokyo-night").Name; got != "tokyo-night" {
		t.Fatalf("ByName(tokyo-night) = %q", got)
	}
	if got := ByName("nope").Name; got != FlexokiDark.Name {
		t.Fatalf("ByName(nope) = %q, want %q", got, FlexokiDark.Name)
	}
}

func TestSetActive(t *testing.T) {
	defer SetActive(FlexokiDark.Name)
	SetActive("terminal")
	if Active.Name != "terminal" {
		t.Fatalf("Active = %q, want terminal", Active.Name)
	}
}

func TestNamesMatchesAll(t *testing.T) {
	names := Names()
	if len(names) != len(All) {
		t.Fatalf("len(Names()) = %d, want %d", len(names), len(All))
	}
	for i, n := range names {
		if All[i].Name != n {
			t.Fatalf("Names()[%d] = %q, want %q", i, n, All[i].Name)
		}
	}
}
