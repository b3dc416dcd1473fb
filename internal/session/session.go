// Package session is the estimator workflow behind every front end: it reads
// the entry form, keeps the allocation table and the current calculation, and
// moves projects in and out of the store. Failures are reported to the
// notifier and returned; none of them end the session.
package session

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/theirongolddev/quotekit/internal/cli"
	"github.com/theirongolddev/quotekit/internal/estimate"
	"github.com/theirongolddev/quotekit/internal/logging"
	"github.com/theirongolddev/quotekit/internal/model"
	"github.com/theirongolddev/quotekit/internal/notify"
	"github.com/theirongolddev/quotekit/internal/store"
)

var (
	// ErrValidation is returned for form input that cannot be used.
	ErrValidation = errors.New("invalid input")
	// ErrNoCalculation is returned when saving before anything was calculated.
	ErrNoCalculation = errors.New("no calculation to save")
)

// Editor is the rich-text surface holding the project notes as HTML.
type Editor interface {
	Content() string
	SetContent(html string)
}

// Options configures a Session.
type Options struct {
	Weights            []model.CategoryWeight
	WithholdingPercent float64
	DefaultName        string
	Store              *store.ProjectStore
	Drafts             *store.Drafts
	Editor             Editor
	Notifier           notify.Notifier
	Logger             *logging.Logger
}

// Session holds the state of one estimator.
type Session struct {
	table       *estimate.Table
	defaults    []model.CategoryWeight
	withholding float64
	defaultName string

	store  *store.ProjectStore
	drafts *store.Drafts
	editor Editor
	notify notify.Notifier
	log    *logging.Logger

	current  *model.Calculation
	loadedID string
	nowFn    func() time.Time
}

// New returns a session. Missing weights fall back to the stock table.
func New(opts Options) *Session {
	weights := opts.Weights
	if len(weights) == 0 {
		weights = estimate.DefaultWeights()
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	n := opts.Notifier
	if n == nil {
		n = notify.Func(func(string, notify.Severity) {})
	}
	s := &Session{
		table:       estimate.NewTable(weights),
		defaults:    append([]model.CategoryWeight(nil), weights...),
		withholding: opts.WithholdingPercent,
		defaultName: opts.DefaultName,
		store:       opts.Store,
		drafts:      opts.Drafts,
		editor:      opts.Editor,
		notify:      n,
		log:         log.WithComponent(logging.ComponentSession),
		nowFn:       time.Now,
	}
	if !s.table.Valid() {
		s.warnTable()
	}
	return s
}

// fail reports err to the user and returns it.
func (s *Session) fail(op string, err error) error {
	s.notify.Notify(userMessage(err), notify.Error)
	s.log.Info("operation failed", logging.FieldOperation, op, logging.FieldError, err)
	return err
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, estimate.ErrInvalidTable):
		return "Allocation weights must add up to 100% before estimating"
	case errors.Is(err, estimate.ErrInvalidAllocationInput):
		return "That category has no share in the allocation table, so nothing can be derived from it"
	case errors.Is(err, estimate.ErrInvalidDiscountRange):
		return "Discount must be between 0 and 100%"
	case errors.Is(err, estimate.ErrInvalidBaseAmount):
		return "Amounts must be finite and not negative"
	case errors.Is(err, store.ErrNotFound):
		return "Project not found"
	}
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 && (errors.Is(err, ErrValidation) || errors.Is(err, store.ErrValidation)) {
		msg = msg[i+2:]
	}
	if msg != "" {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}
	return msg
}

// TableStatus describes the allocation table as an editor shows it.
type TableStatus struct {
	Weights []model.CategoryWeight
	Sum     float64
	// Total is Sum formatted to one decimal, e.g. "100.0%".
	Total string
	Valid bool
	// Warning explains an invalid table; empty when Valid.
	Warning string
}

// TableStatus returns the current table, its running total and validity.
func (s *Session) TableStatus() TableStatus {
	sum := s.table.Sum()
	return TableStatus{
		Weights: s.table.Weights(),
		Sum:     sum,
		Total:   cli.FormatTotal(sum),
		Valid:   s.table.Valid(),
		Warning: s.tableWarning(),
	}
}

func (s *Session) tableWarning() string {
	if s.table.Valid() {
		return ""
	}
	sum := s.table.Sum()
	if math.IsNaN(sum) || math.IsInf(sum, 0) || math.Abs(sum-100) <= estimate.SumTolerance {
		return "Allocation weights must be non-negative numbers under unique category keys"
	}
	return fmt.Sprintf("Allocation weights add up to %s, not 100%%", cli.FormatTotal(sum))
}

func (s *Session) warnTable() {
	s.notify.Notify(s.tableWarning(), notify.Warning)
}

// SetWeights replaces the allocation table. An invalid table is kept, with a
// warning, so editing can continue; estimates stay disabled until it is valid.
func (s *Session) SetWeights(weights []model.CategoryWeight) bool {
	s.table.Update(weights)
	if !s.table.Valid() {
		s.warnTable()
		return false
	}
	return true
}

// ResetWeights restores the table the session started with.
func (s *Session) ResetWeights() {
	s.table.Update(s.defaults)
	s.notify.Notify("Allocation weights reset to defaults", notify.Info)
}

// entry finds the single amount field that is filled in.
func (s *Session) entry(form FormReader) (key string, raw string, err error) {
	keys := []string{FieldTotal}
	for _, w := range s.table.Weights() {
		keys = append(keys, w.Key)
	}
	var filled []string
	for _, k := range keys {
		if strings.TrimSpace(form.Field(k)) != "" {
			filled = append(filled, k)
		}
	}
	switch len(filled) {
	case 0:
		return "", "", fmt.Errorf("%w: enter a base price or one category amount", ErrValidation)
	case 1:
		return filled[0], form.Field(filled[0]), nil
	default:
		return "", "", fmt.Errorf("%w: enter only one amount, got %s", ErrValidation, strings.Join(filled, ", "))
	}
}

// Recalculate reads the form and produces a new current calculation.
//
// Exactly one amount must be filled in: the base price or one category. The
// withholding field defaults to the configured percentage and is read as a
// deduction whatever its sign; the discount defaults to zero.
func (s *Session) Recalculate(form FormReader) (model.Calculation, error) {
	if !s.table.Valid() {
		s.warnTable()
		return model.Calculation{}, s.fail("recalculate", estimate.ErrInvalidTable)
	}

	key, raw, err := s.entry(form)
	if err != nil {
		return model.Calculation{}, s.fail("recalculate", err)
	}
	field := "base price"
	if key != FieldTotal {
		w, _ := s.table.Lookup(key)
		field = w.DisplayName + " cost"
	}
	known, err := parseAmount(field, raw)
	if err != nil {
		return model.Calculation{}, s.fail("recalculate", err)
	}

	withholding := s.withholding
	if v := strings.TrimSpace(form.Field(FieldWithholding)); v != "" {
		if withholding, err = parseNumber("withholding", v); err != nil {
			return model.Calculation{}, s.fail("recalculate", err)
		}
	}
	discount := 0.0
	if v := strings.TrimSpace(form.Field(FieldDiscount)); v != "" {
		if discount, err = parseNumber("discount", v); err != nil {
			return model.Calculation{}, s.fail("recalculate", err)
		}
	}

	allocKey := key
	if key == FieldTotal {
		allocKey = estimate.TotalKey
	}
	breakdown, err := estimate.Allocate(known, allocKey, s.table)
	if err != nil {
		return model.Calculation{}, s.fail("recalculate", err)
	}
	calc, err := estimate.Reconcile(breakdown, withholding, discount)
	if err != nil {
		return model.Calculation{}, s.fail("recalculate", err)
	}

	calc.Weights = s.table.Weights()
	calc.ProjectName = SanitizeName(form.Field(FieldProjectName))
	if calc.ProjectName == "" {
		calc.ProjectName = s.defaultName
	}
	calc.CreatedAt = s.nowFn()

	s.current = &calc
	s.loadedID = ""
	return calc.Clone(), nil
}

// Current returns the current calculation, if there is one.
func (s *Session) Current() (model.Calculation, bool) {
	if s.current == nil {
		return model.Calculation{}, false
	}
	return s.current.Clone(), true
}

// LoadedID returns the id of the project last loaded into the session.
func (s *Session) LoadedID() string { return s.loadedID }

// Notes returns the editor content, or "" without an editor.
func (s *Session) Notes() string {
	if s.editor == nil {
		return ""
	}
	return s.editor.Content()
}

func (s *Session) needStore(op string) error {
	if s.store == nil {
		return s.fail(op, errors.New("project storage is not available"))
	}
	return nil
}

// SaveProject stores the current calculation and the editor notes under
// name, or under the calculation's project name when name is empty.
func (s *Session) SaveProject(name string) (model.Project, error) {
	if err := s.needStore("save"); err != nil {
		return model.Project{}, err
	}
	if s.current == nil {
		return model.Project{}, s.fail("save", ErrNoCalculation)
	}
	name = SanitizeName(name)
	if name == "" {
		name = s.current.ProjectName
	}
	if err := ValidateName(name); err != nil {
		return model.Project{}, s.fail("save", err)
	}

	calc := s.current.Clone()
	calc.ProjectName = name
	p, err := s.store.Save(calc, s.Notes(), name)
	if err != nil {
		return model.Project{}, s.fail("save", err)
	}
	s.current.ProjectName = name
	s.loadedID = p.ID
	if s.drafts != nil {
		if err := s.drafts.Clear(); err != nil {
			s.log.Warn("clearing draft failed", logging.FieldError, err)
		}
	}
	s.notify.Notify(fmt.Sprintf("Project %q saved as %s", p.Name, p.ID), notify.Success)
	return p, nil
}

// LoadProject makes a stored project the current calculation and puts its
// notes in the editor.
func (s *Session) LoadProject(id string) (model.Project, error) {
	if err := s.needStore("load"); err != nil {
		return model.Project{}, err
	}
	p, err := s.store.Get(id)
	if err != nil {
		return model.Project{}, s.fail("load", err)
	}
	calc := p.Calculation.Clone()
	s.current = &calc
	s.loadedID = p.ID
	if s.editor != nil {
		s.editor.SetContent(p.Notes)
	}
	s.notify.Notify(fmt.Sprintf("Loaded %q", p.Name), notify.Info)
	return p, nil
}

// DuplicateProject stores a draft copy of a project.
func (s *Session) DuplicateProject(id string) (model.Project, error) {
	if err := s.needStore("duplicate"); err != nil {
		return model.Project{}, err
	}
	p, err := s.store.Duplicate(id)
	if err != nil {
		return model.Project{}, s.fail("duplicate", err)
	}
	s.notify.Notify(fmt.Sprintf("Created %q (%s)", p.Name, p.ID), notify.Success)
	return p, nil
}

// DeleteProject removes a project. Deleting a missing project is not an
// error; the result reports whether anything was removed.
func (s *Session) DeleteProject(id string) (bool, error) {
	if err := s.needStore("delete"); err != nil {
		return false, err
	}
	removed, err := s.store.Delete(id)
	if err != nil {
		return false, s.fail("delete", err)
	}
	if !removed {
		s.notify.Notify(fmt.Sprintf("No project %s to delete", id), notify.Info)
		return false, nil
	}
	if s.loadedID == id {
		s.loadedID = ""
	}
	s.notify.Notify(fmt.Sprintf("Project %s deleted", id), notify.Success)
	return true, nil
}

// ImportProjects appends the projects in an export document and reports how
// many were accepted and rejected.
func (s *Session) ImportProjects(data []byte) (store.ImportReport, error) {
	if err := s.needStore("import"); err != nil {
		return store.ImportReport{}, err
	}
	report, err := s.store.ImportMany(data)
	if err != nil {
		return report, s.fail("import", err)
	}
	s.reportImport("Imported", report)
	return report, nil
}

// RestoreBackup replaces every stored project with the backup's contents.
func (s *Session) RestoreBackup(data []byte) (store.ImportReport, error) {
	if err := s.needStore("restore"); err != nil {
		return store.ImportReport{}, err
	}
	report, err := s.store.Restore(data)
	if err != nil {
		return report, s.fail("restore", err)
	}
	s.reportImport("Restored", report)
	return report, nil
}

func (s *Session) reportImport(verb string, r store.ImportReport) {
	sev := notify.Success
	msg := fmt.Sprintf("%s %d project(s)", verb, r.Accepted)
	if r.Rejected > 0 {
		sev = notify.Warning
		msg += fmt.Sprintf(", %d rejected", r.Rejected)
		for _, p := range r.Problems {
			s.log.Info("import entry rejected", logging.FieldError, p)
		}
	}
	s.notify.Notify(msg, sev)
}

// SaveDraft keeps the editor content so it survives a restart.
func (s *Session) SaveDraft() error {
	if s.drafts == nil || s.editor == nil {
		return nil
	}
	if err := s.drafts.Save(s.editor.Content()); err != nil {
		return s.fail("draft", err)
	}
	return nil
}

// RestoreDraft puts a kept draft back into the editor.
func (s *Session) RestoreDraft() (bool, error) {
	if s.drafts == nil || s.editor == nil {
		return false, nil
	}
	content, ok, err := s.drafts.Load()
	if err != nil {
		return false, s.fail("draft", err)
	}
	if ok {
		s.editor.SetContent(content)
	}
	return ok, nil
}

// Reset clears the current calculation and the editor.
func (s *Session) Reset() {
	s.current = nil
	s.loadedID = ""
	if s.editor != nil {
		s.editor.SetContent("")
	}
}
