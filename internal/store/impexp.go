package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/theirongolddev/quotekit/internal/logging"
	"github.com/theirongolddev/quotekit/internal/model"
)

// FormatVersion tags exported backups.
const FormatVersion = "1.0"

// Backup is the full export document.
type Backup struct {
	Projects      []model.Project `json:"projects"`
	ExportedAt    time.Time       `json:"exportedAt"`
	FormatVersion string          `json:"formatVersion"`
}

// ImportReport counts the entries of an import document.
type ImportReport struct {
	Accepted int
	Rejected int
	// Problems holds one message per rejected entry.
	Problems []string
}

// ExportAll serializes every project into a versioned backup document.
func (s *ProjectStore) ExportAll() ([]byte, error) {
	doc := Backup{
		Projects:      s.List(),
		ExportedAt:    s.nowFn().UTC(),
		FormatVersion: FormatVersion,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ExportProjects serializes the given projects as a bare JSON array.
func ExportProjects(projects []model.Project) ([]byte, error) {
	if projects == nil {
		projects = []model.Project{}
	}
	return json.MarshalIndent(projects, "", "  ")
}

// ImportMany appends the valid entries of data to the collection.
//
// data may be a bare array of projects or a backup document. A top level of
// any other shape is rejected with ErrValidation and nothing changes.
// Malformed entries are skipped and counted in the report.
func (s *ProjectStore) ImportMany(data []byte) (ImportReport, error) {
	accepted, report, err := s.decodeAll(data)
	if err != nil {
		return report, err
	}
	if len(accepted) == 0 {
		return report, nil
	}

	next := s.snapshot()
	for _, p := range accepted {
		if p.ID == "" || indexIn(next, p.ID) >= 0 {
			p.ID = s.nextIDAgainst(next)
		}
		next = append(next, p)
	}
	if err := s.persist(next, "import"); err != nil {
		return ImportReport{}, err
	}
	s.log.Debug("projects imported", logging.FieldCount, report.Accepted, "rejected", report.Rejected)
	return report, nil
}

// Restore replaces the whole collection with the valid entries of data.
// It accepts the same shapes as ImportMany.
func (s *ProjectStore) Restore(data []byte) (ImportReport, error) {
	accepted, report, err := s.decodeAll(data)
	if err != nil {
		return report, err
	}

	next := make([]model.Project, 0, len(accepted))
	for _, p := range accepted {
		if p.ID == "" || indexIn(next, p.ID) >= 0 {
			p.ID = s.nextIDAgainst(next)
		}
		next = append(next, p)
	}
	if err := s.persist(next, "restore"); err != nil {
		return ImportReport{}, err
	}
	return report, nil
}

func (s *ProjectStore) decodeAll(data []byte) ([]model.Project, ImportReport, error) {
	var report ImportReport
	entries, err := splitDocument(data)
	if err != nil {
		return nil, report, err
	}
	now := s.nowFn()
	accepted := make([]model.Project, 0, len(entries))
	for i, raw := range entries {
		p, err := decodeProject(raw, now)
		if err != nil {
			report.Rejected++
			report.Problems = append(report.Problems, fmt.Sprintf("entry %d: %v", i+1, err))
			continue
		}
		report.Accepted++
		accepted = append(accepted, p)
	}
	return accepted, report, nil
}

// nextIDAgainst issues an id that is also unused in pending.
func (s *ProjectStore) nextIDAgainst(pending []model.Project) string {
	for {
		id := s.nextID()
		if indexIn(pending, id) < 0 {
			return id
		}
	}
}

func indexIn(projects []model.Project, id string) int {
	for i, p := range projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// splitDocument returns the raw project entries of a bare array or a backup
// object.
func splitDocument(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrValidation)
	}

	switch trimmed[0] {
	case '[':
		var entries []json.RawMessage
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return entries, nil
	case '{':
		var doc struct {
			Projects json.RawMessage `json:"projects"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if len(doc.Projects) == 0 || bytes.TrimSpace(doc.Projects)[0] != '[' {
			return nil, fmt.Errorf("%w: backup has no projects array", ErrValidation)
		}
		var entries []json.RawMessage
		if err := json.Unmarshal(doc.Projects, &entries); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("%w: top level must be an array of projects", ErrValidation)
	}
}

// wireProject accepts the current field names plus the ones written by the
// browser version of the estimator (date, content, costs, tdsAmount, discount).
type wireProject struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	CreatedAt   *time.Time   `json:"createdAt"`
	Date        *time.Time   `json:"date"`
	Calculation *wireCalc    `json:"calculation"`
	Notes       *string      `json:"notes"`
	Content     *string      `json:"content"`
	Status      model.Status `json:"status"`
}

type wireCalc struct {
	Breakdown          map[string]float64     `json:"breakdown"`
	Costs              map[string]float64     `json:"costs"`
	Weights            []model.CategoryWeight `json:"weights"`
	Subtotal           *float64               `json:"subtotal"`
	WithholdingPercent *float64               `json:"withholdingPercent"`
	WithholdingAmount  *float64               `json:"withholdingAmount"`
	TDSAmount          *float64               `json:"tdsAmount"`
	DiscountPercent    *float64               `json:"discountPercent"`
	Discount           *float64               `json:"discount"`
	DiscountAmount     *float64               `json:"discountAmount"`
	FinalAmount        *float64               `json:"finalAmount"`
	ProjectName        string                 `json:"projectName"`
	CreatedAt          *time.Time             `json:"createdAt"`
	Timestamp          *time.Time             `json:"timestamp"`
}

func decodeProject(raw json.RawMessage, now time.Time) (model.Project, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return model.Project{}, fmt.Errorf("%w: entry is not an object", ErrValidation)
	}
	var w wireProject
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return model.Project{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	p := model.Project{
		ID:     strings.TrimSpace(w.ID),
		Name:   strings.TrimSpace(w.Name),
		Status: w.Status,
	}
	if p.Name == "" {
		return model.Project{}, fmt.Errorf("%w: missing name", ErrValidation)
	}
	switch {
	case p.Status == "":
		p.Status = model.StatusSaved
	case !p.Status.Valid():
		return model.Project{}, fmt.Errorf("%w: unknown status %q", ErrValidation, p.Status)
	}
	switch {
	case w.CreatedAt != nil:
		p.CreatedAt = *w.CreatedAt
	case w.Date != nil:
		p.CreatedAt = *w.Date
	default:
		p.CreatedAt = now
	}
	switch {
	case w.Notes != nil:
		p.Notes = *w.Notes
	case w.Content != nil:
		p.Notes = *w.Content
	}

	if w.Calculation == nil {
		return model.Project{}, fmt.Errorf("%w: missing calculation", ErrValidation)
	}
	calc, err := w.Calculation.toModel()
	if err != nil {
		return model.Project{}, err
	}
	if calc.ProjectName == "" {
		calc.ProjectName = p.Name
	}
	if calc.CreatedAt.IsZero() {
		calc.CreatedAt = p.CreatedAt
	}
	p.Calculation = calc
	return p, nil
}

func (w *wireCalc) toModel() (model.Calculation, error) {
	breakdown := w.Breakdown
	if breakdown == nil {
		breakdown = w.Costs
	}
	if len(breakdown) == 0 {
		return model.Calculation{}, fmt.Errorf("%w: calculation has no breakdown", ErrValidation)
	}
	if w.FinalAmount == nil {
		return model.Calculation{}, fmt.Errorf("%w: calculation has no final amount", ErrValidation)
	}

	calc := model.Calculation{
		Breakdown:   model.Breakdown(breakdown).Clone(),
		Weights:     w.Weights,
		FinalAmount: *w.FinalAmount,
		ProjectName: strings.TrimSpace(w.ProjectName),
	}
	for k, v := range calc.Breakdown {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return model.Calculation{}, fmt.Errorf("%w: amount for %q is invalid", ErrValidation, k)
		}
	}

	calc.Subtotal = calc.Breakdown.Sum()
	if w.Subtotal != nil {
		calc.Subtotal = *w.Subtotal
	}

	// The browser version stored the withheld amount as a positive number.
	switch {
	case w.WithholdingAmount != nil:
		calc.WithholdingAmount = -math.Abs(*w.WithholdingAmount)
	case w.TDSAmount != nil:
		calc.WithholdingAmount = -math.Abs(*w.TDSAmount)
	}
	switch {
	case w.WithholdingPercent != nil:
		calc.WithholdingPercent = -math.Abs(*w.WithholdingPercent)
	case calc.Subtotal > 0:
		calc.WithholdingPercent = calc.WithholdingAmount * 100 / calc.Subtotal
	}

	switch {
	case w.DiscountPercent != nil:
		calc.DiscountPercent = *w.DiscountPercent
	case w.Discount != nil:
		calc.DiscountPercent = *w.Discount
	}
	if calc.DiscountPercent < 0 || calc.DiscountPercent > 100 {
		return model.Calculation{}, fmt.Errorf("%w: discount %v outside 0-100", ErrValidation, calc.DiscountPercent)
	}
	if w.DiscountAmount != nil {
		calc.DiscountAmount = *w.DiscountAmount
	} else {
		calc.DiscountAmount = calc.AfterWithholding() * calc.DiscountPercent / 100
	}

	switch {
	case w.CreatedAt != nil:
		calc.CreatedAt = *w.CreatedAt
	case w.Timestamp != nil:
		calc.CreatedAt = *w.Timestamp
	}
	return calc, nil
}
