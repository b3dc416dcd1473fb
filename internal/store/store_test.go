package store

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/quotekit/internal/estimate"
	"github.com/theirongolddev/quotekit/internal/model"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newMemStore(t *testing.T) (*ProjectStore, *MemoryBackend) {
	t.Helper()
	b := NewMemoryBackend()
	s, err := NewProjectStore(b, nil)
	if err != nil {
		t.Fatalf("NewProjectStore: %v", err)
	}
	s.nowFn = func() time.Time { return fixedNow }
	return s, b
}

func sampleCalc() model.Calculation {
	return model.Calculation{
		Breakdown:          model.Breakdown{"development": 405, "design": 265, "broker": 330},
		Subtotal:           1000,
		WithholdingPercent: -10,
		WithholdingAmount:  -100,
		FinalAmount:        900,
		ProjectName:        "Shop",
		CreatedAt:          fixedNow,
	}
}

func TestSaveAndGet(t *testing.T) {
	s, b := newMemStore(t)

	p, err := s.Save(sampleCalc(), "<p>notes</p>", "Shop")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(p.ID, "PRJ-") {
		t.Fatalf("ID = %q, want PRJ- prefix", p.ID)
	}
	if p.Status != model.StatusSaved {
		t.Fatalf("Status = %q, want %q", p.Status, model.StatusSaved)
	}

	got, err := s.Get(p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Calculation.FinalAmount != 900 || got.Notes != "<p>notes</p>" {
		t.Fatalf("Get = %+v, want saved project", got)
	}

	if _, ok, _ := b.Get(ProjectsKey); !ok {
		t.Fatal("save did not write the projects record")
	}
}

func TestGetMissing(t *testing.T) {
	s, _ := newMemStore(t)
	if _, err := s.Get("PRJ-NOPE"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get err = %v, want ErrNotFound", err)
	}
}

func TestIDsAreUniqueUnderStalledClock(t *testing.T) {
	s, _ := newMemStore(t)

	seen := map[string]bool{}
	var prev string
	for i := 0; i < 20; i++ {
		p, err := s.Save(sampleCalc(), "", "Shop")
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if seen[p.ID] {
			t.Fatalf("duplicate id %s", p.ID)
		}
		seen[p.ID] = true
		if prev != "" && len(p.ID) == len(prev) && p.ID <= prev {
			t.Fatalf("id %s not after %s", p.ID, prev)
		}
		prev = p.ID
	}
}

func TestListNewestFirst(t *testing.T) {
	s, _ := newMemStore(t)

	for i, name := range []string{"old", "mid", "new"} {
		at := fixedNow.Add(time.Duration(i) * time.Hour)
		s.nowFn = func() time.Time { return at }
		if _, err := s.Save(sampleCalc(), "", name); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	list := s.List()
	if len(list) != 3 {
		t.Fatalf("len(List) = %d, want 3", len(list))
	}
	for i, want := range []string{"new", "mid", "old"} {
		if list[i].Name != want {
			t.Fatalf("List[%d] = %q, want %q", i, list[i].Name, want)
		}
	}

	// The listing is a copy.
	list[0].Calculation.Breakdown["development"] = -1
	again := s.List()
	if again[0].Calculation.Breakdown["development"] != 405 {
		t.Fatal("mutating List result changed the store")
	}
}

func TestSearch(t *testing.T) {
	s, _ := newMemStore(t)
	a, _ := s.Save(sampleCalc(), "", "Coffee Shop")
	if _, err := s.Save(sampleCalc(), "", "Bakery"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if got := s.Search("coffee"); len(got) != 1 || got[0].ID != a.ID {
		t.Fatalf("Search(coffee) = %+v, want only %s", got, a.ID)
	}
	if got := s.Search(strings.ToLower(a.ID)); len(got) != 1 {
		t.Fatalf("Search(id) returned %d, want 1", len(got))
	}
	if got := s.Search("  "); len(got) != 2 {
		t.Fatalf("Search(blank) returned %d, want 2", len(got))
	}
}

func TestDuplicate(t *testing.T) {
	s, _ := newMemStore(t)
	orig, err := s.Save(sampleCalc(), "n", "Shop")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	later := fixedNow.Add(time.Hour)
	s.nowFn = func() time.Time { return later }
	dup, err := s.Duplicate(orig.ID)
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}

	if dup.ID == orig.ID {
		t.Fatal("duplicate reused the source id")
	}
	if dup.Name != "Shop (Copy)" {
		t.Fatalf("Name = %q, want %q", dup.Name, "Shop (Copy)")
	}
	if dup.Status != model.StatusDraft {
		t.Fatalf("Status = %q, want draft", dup.Status)
	}
	if !dup.CreatedAt.Equal(later) {
		t.Fatalf("CreatedAt = %v, want %v", dup.CreatedAt, later)
	}
	if dup.Calculation.FinalAmount != orig.Calculation.FinalAmount {
		t.Fatalf("FinalAmount = %v, want %v", dup.Calculation.FinalAmount, orig.Calculation.FinalAmount)
	}

	if _, err := s.Duplicate("PRJ-MISSING"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Duplicate(missing) err = %v, want ErrNotFound", err)
	}

	src, _ := s.Get(orig.ID)
	if src.Name != "Shop" || src.Status != model.StatusSaved {
		t.Fatalf("source changed: %+v", src)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s, _ := newMemStore(t)
	p, _ := s.Save(sampleCalc(), "", "Shop")

	removed, err := s.Delete(p.ID)
	if err != nil || !removed {
		t.Fatalf("Delete = %v, %v; want true, nil", removed, err)
	}
	removed, err = s.Delete(p.ID)
	if err != nil || removed {
		t.Fatalf("second Delete = %v, %v; want false, nil", removed, err)
	}
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0", s.Len())
	}
}

func TestFailedWriteLeavesStoreUnchanged(t *testing.T) {
	s, b := newMemStore(t)
	p, _ := s.Save(sampleCalc(), "", "Shop")

	b.failPut = errors.New("disk full")
	if _, err := s.Save(sampleCalc(), "", "Other"); err == nil {
		t.Fatal("Save succeeded with failing backend")
	}
	if removed, err := s.Delete(p.ID); err == nil || removed {
		t.Fatalf("Delete = %v, %v; want false, error", removed, err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
}

func TestReloadFromBackend(t *testing.T) {
	s, b := newMemStore(t)
	p, _ := s.Save(sampleCalc(), "body", "Shop")

	reopened, err := NewProjectStore(b, nil)
	if err != nil {
		t.Fatalf("NewProjectStore: %v", err)
	}
	got, err := reopened.Get(p.ID)
	if err != nil {
		t.Fatalf("Get after reload: %v", err)
	}
	if got.Name != "Shop" || got.Notes != "body" || got.Calculation.Subtotal != 1000 {
		t.Fatalf("reloaded = %+v", got)
	}
	if !got.CreatedAt.Equal(fixedNow) {
		t.Fatalf("CreatedAt = %v, want %v", got.CreatedAt, fixedNow)
	}
}

func TestExportAllIsVersionedSnapshot(t *testing.T) {
	s, _ := newMemStore(t)
	if _, err := s.Save(sampleCalc(), "", "Shop"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := s.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	var doc Backup
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode backup: %v", err)
	}
	if doc.FormatVersion != FormatVersion {
		t.Fatalf("FormatVersion = %q, want %q", doc.FormatVersion, FormatVersion)
	}
	if len(doc.Projects) != 1 || !doc.ExportedAt.Equal(fixedNow) {
		t.Fatalf("backup = %+v", doc)
	}
}

func TestImportRejectsNonArray(t *testing.T) {
	s, b := newMemStore(t)
	if _, err := s.Save(sampleCalc(), "", "Shop"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	before, _, _ := b.Get(ProjectsKey)

	for _, doc := range []string{`"projects"`, `42`, `{"name":"x"}`, ``} {
		if _, err := s.ImportMany([]byte(doc)); !errors.Is(err, ErrValidation) {
			t.Fatalf("ImportMany(%q) err = %v, want ErrValidation", doc, err)
		}
	}
	after, _, _ := b.Get(ProjectsKey)
	if string(before) != string(after) || s.Len() != 1 {
		t.Fatal("rejected import modified the store")
	}
}

func TestImportPartialAccept(t *testing.T) {
	s, _ := newMemStore(t)
	existing, _ := s.Save(sampleCalc(), "", "Shop")

	doc := `[
		{"id":"` + existing.ID + `","name":"Clash","calculation":{"breakdown":{"development":100},"finalAmount":90}},
		{"name":"No id","calculation":{"breakdown":{"design":50},"finalAmount":45},"status":"draft"},
		{"name":"","calculation":{"breakdown":{"design":50},"finalAmount":45}},
		{"name":"Negative","calculation":{"breakdown":{"design":-5},"finalAmount":0}},
		{"name":"No calc"},
		"not an object"
	]`
	report, err := s.ImportMany([]byte(doc))
	if err != nil {
		t.Fatalf("ImportMany: %v", err)
	}
	if report.Accepted != 2 || report.Rejected != 4 {
		t.Fatalf("report = %+v, want 2 accepted 4 rejected", report)
	}
	if len(report.Problems) != 4 {
		t.Fatalf("len(Problems) = %d, want 4", len(report.Problems))
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}

	ids := map[string]int{}
	for _, p := range s.List() {
		ids[p.ID]++
		if p.Name == "No id" && p.Status != model.StatusDraft {
			t.Fatalf("status = %q, want draft", p.Status)
		}
		if p.Name == "Clash" && p.Status != model.StatusSaved {
			t.Fatalf("missing status = %q, want saved", p.Status)
		}
		if p.Name == "No id" && !p.CreatedAt.Equal(fixedNow) {
			t.Fatalf("CreatedAt = %v, want import time", p.CreatedAt)
		}
	}
	for id, n := range ids {
		if n != 1 {
			t.Fatalf("id %s appears %d times", id, n)
		}
	}
}

func TestImportLegacyFields(t *testing.T) {
	s, _ := newMemStore(t)

	doc := `{"projects":[{
		"id":"PRJ-LEGACY1",
		"name":"Old site",
		"date":"2024-01-02T03:04:05Z",
		"content":"<p>Scope</p>",
		"calculation":{
			"costs":{"development":810,"design":190},
			"tdsAmount":100,
			"discount":10,
			"finalAmount":810,
			"timestamp":"2024-01-02T03:04:05Z"
		}
	}]}`
	report, err := s.ImportMany([]byte(doc))
	if err != nil {
		t.Fatalf("ImportMany: %v", err)
	}
	if report.Accepted != 1 {
		t.Fatalf("Accepted = %d, want 1 (%v)", report.Accepted, report.Problems)
	}

	p, err := s.Get("PRJ-LEGACY1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if !p.CreatedAt.Equal(want) {
		t.Fatalf("CreatedAt = %v, want %v", p.CreatedAt, want)
	}
	if p.Notes != "<p>Scope</p>" {
		t.Fatalf("Notes = %q", p.Notes)
	}
	c := p.Calculation
	if c.Subtotal != 1000 {
		t.Fatalf("Subtotal = %v, want 1000", c.Subtotal)
	}
	if c.WithholdingAmount != -100 || c.WithholdingPercent != -10 {
		t.Fatalf("withholding = %v / %v%%, want -100 / -10%%", c.WithholdingAmount, c.WithholdingPercent)
	}
	if c.DiscountPercent != 10 || c.DiscountAmount != 90 {
		t.Fatalf("discount = %v%% / %v, want 10%% / 90", c.DiscountPercent, c.DiscountAmount)
	}
	if c.ProjectName != "Old site" {
		t.Fatalf("ProjectName = %q", c.ProjectName)
	}
}

func TestImportRejectsDiscountOutOfRange(t *testing.T) {
	s, _ := newMemStore(t)
	doc := `[{"name":"Too much","calculation":{"breakdown":{"design":1},"discountPercent":150,"finalAmount":0}}]`
	report, err := s.ImportMany([]byte(doc))
	if err != nil {
		t.Fatalf("ImportMany: %v", err)
	}
	if report.Accepted != 0 || report.Rejected != 1 {
		t.Fatalf("report = %+v, want 0/1", report)
	}
}

func TestRestoreReplacesCollection(t *testing.T) {
	s, _ := newMemStore(t)
	if _, err := s.Save(sampleCalc(), "", "Gone"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	backup := `{"formatVersion":"1.0","projects":[
		{"id":"PRJ-A","name":"Kept","calculation":{"breakdown":{"design":10},"finalAmount":9},"status":"saved"}
	]}`
	report, err := s.Restore([]byte(backup))
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if report.Accepted != 1 || s.Len() != 1 {
		t.Fatalf("after restore: report %+v, len %d", report, s.Len())
	}
	if _, err := s.Get("PRJ-A"); err != nil {
		t.Fatalf("Get(PRJ-A): %v", err)
	}
}

func TestReloadKeepsFullPrecision(t *testing.T) {
	s, b := newMemStore(t)
	breakdown, err := estimate.Allocate(1000.01, estimate.TotalKey, estimate.NewTable(estimate.DefaultWeights()))
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	calc := model.Calculation{Breakdown: breakdown, Subtotal: breakdown.Sum(), FinalAmount: breakdown.Sum()}
	p, err := s.Save(calc, "", "Cents")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened, err := NewProjectStore(b, nil)
	if err != nil {
		t.Fatalf("NewProjectStore: %v", err)
	}
	got, err := reopened.Get(p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Calculation.Breakdown.Sum() != got.Calculation.Subtotal {
		t.Fatalf("reloaded breakdown sums to %v, subtotal %v", got.Calculation.Breakdown.Sum(), got.Calculation.Subtotal)
	}
	if got.Calculation.Breakdown["development"] != breakdown["development"] {
		t.Fatalf("development = %v, want %v", got.Calculation.Breakdown["development"], breakdown["development"])
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src, _ := newMemStore(t)
	p, _ := src.Save(sampleCalc(), "x", "Shop")
	data, err := src.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}

	dst, _ := newMemStore(t)
	if _, err := dst.ImportMany(data); err != nil {
		t.Fatalf("ImportMany: %v", err)
	}
	got, err := dst.Get(p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Calculation.FinalAmount != 900 || got.Calculation.WithholdingPercent != -10 {
		t.Fatalf("round trip = %+v", got.Calculation)
	}
}

func TestSQLiteBackendPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotekit.db")

	b, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	s, err := NewProjectStore(b, nil)
	if err != nil {
		t.Fatalf("NewProjectStore: %v", err)
	}
	p, err := s.Save(sampleCalc(), "notes", "Shop")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b2.Close()
	s2, err := NewProjectStore(b2, nil)
	if err != nil {
		t.Fatalf("NewProjectStore: %v", err)
	}
	got, err := s2.Get(p.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Notes != "notes" {
		t.Fatalf("Notes = %q, want %q", got.Notes, "notes")
	}
	if _, ok, err := b2.Get(ProjectsKey); err != nil || !ok {
		t.Fatalf("projects record after reopen: ok=%v err=%v", ok, err)
	}
}

func TestDrafts(t *testing.T) {
	d := NewDrafts(NewMemoryBackend())

	if _, ok, err := d.Load(); ok || err != nil {
		t.Fatalf("Load on empty = %v, %v", ok, err)
	}
	if err := d.Save("<p>wip</p>"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := d.Load()
	if err != nil || !ok || got != "<p>wip</p>" {
		t.Fatalf("Load = %q, %v, %v", got, ok, err)
	}
	if err := d.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := d.Load(); ok {
		t.Fatal("draft still present after Clear")
	}
}
