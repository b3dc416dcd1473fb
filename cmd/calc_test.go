package cmd

import (
	"testing"

	"github.com/theirongolddev/quotekit/internal/config"
	"github.com/theirongolddev/quotekit/internal/session"
)

func TestCalcFormCategory(t *testing.T) {
	defer func() { calcTotal, calcCategory = "", "" }()

	calcCategory = "design = 26500"
	form, err := calcForm()
	if err != nil {
		t.Fatalf("calcForm: %v", err)
	}
	if got := form.Field("design"); got != "26500" {
		t.Fatalf("design field = %q", got)
	}
	if form.Field(session.FieldTotal) != "" {
		t.Fatal("total should be empty in category mode")
	}

	for _, bad := range []string{"design", "=100", "design="} {
		calcCategory = bad
		if _, err := calcForm(); err == nil {
			t.Fatalf("calcForm(%q) succeeded, want error", bad)
		}
	}
}

func TestCalcFormTotal(t *testing.T) {
	defer func() { calcTotal, calcName = "", "" }()

	calcTotal = "150000"
	calcName = "Coffee Shop"
	form, err := calcForm()
	if err != nil {
		t.Fatalf("calcForm: %v", err)
	}
	if form.Field(session.FieldTotal) != "150000" || form.Field(session.FieldProjectName) != "Coffee Shop" {
		t.Fatalf("form = %v", form)
	}
}

func TestDocumentStyle(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.PDF.Title = "QUOTATION"
	cfg.PDF.HeaderRGB = []int{10, 300, -5}

	st := documentStyle(cfg)
	if st.Title != "QUOTATION" {
		t.Fatalf("Title = %q", st.Title)
	}
	if st.HeaderRGB != [3]uint8{10, 255, 0} {
		t.Fatalf("HeaderRGB = %v, want clamped [10 255 0]", st.HeaderRGB)
	}

	cfg.PDF.HeaderRGB = nil
	if got := documentStyle(cfg).HeaderRGB; got != [3]uint8{102, 126, 234} {
		t.Fatalf("HeaderRGB = %v, want default", got)
	}
}
