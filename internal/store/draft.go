package store

import "fmt"

// Drafts keeps the unsaved notes of the editor under a single record.
type Drafts struct {
	backend Backend
}

// NewDrafts returns a draft keeper on backend.
func NewDrafts(backend Backend) *Drafts {
	return &Drafts{backend: backend}
}

// Save overwrites the draft.
func (d *Drafts) Save(content string) error {
	if err := d.backend.Put(DraftKey, []byte(content)); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Load returns the draft, if any.
func (d *Drafts) Load() (string, bool, error) {
	data, ok, err := d.backend.Get(DraftKey)
	if err != nil {
		return "", false, fmt.Errorf("load draft: %w", err)
	}
	return string(data), ok, nil
}

// Clear removes the draft.
func (d *Drafts) Clear() error {
	if err := d.backend.Delete(DraftKey); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}
