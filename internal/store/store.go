// Package store keeps the durable collection of saved projects.
//
// The in-memory slice mirrors the persisted record exactly: every mutation
// builds the next collection, writes it to the backend, and only then swaps
// it in, so a failed write leaves both sides unchanged.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/quotekit/internal/logging"
	"github.com/theirongolddev/quotekit/internal/model"
)

// Record keys.
const (
	ProjectsKey = "projects"
	DraftKey    = "editor_draft"
)

var (
	// ErrNotFound is returned when no project has the requested id.
	ErrNotFound = errors.New("project not found")
	// ErrValidation is returned for malformed import payloads.
	ErrValidation = errors.New("invalid project data")
)

// ProjectStore is the keyed collection of saved projects.
type ProjectStore struct {
	backend  Backend
	log      *logging.Logger
	projects []model.Project
	lastID   int64
	nowFn    func() time.Time
}

// NewProjectStore loads the persisted collection from backend.
func NewProjectStore(backend Backend, log *logging.Logger) (*ProjectStore, error) {
	if log == nil {
		log = logging.Discard()
	}
	s := &ProjectStore{
		backend: backend,
		log:     log.WithComponent(logging.ComponentStore),
		nowFn:   time.Now,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ProjectStore) load() error {
	data, ok, err := s.backend.Get(ProjectsKey)
	if err != nil {
		return fmt.Errorf("load projects: %w", err)
	}
	if !ok || len(strings.TrimSpace(string(data))) == 0 {
		s.projects = []model.Project{}
		return nil
	}

	entries, err := splitDocument(data)
	if err != nil {
		return fmt.Errorf("load projects: %w", err)
	}
	projects := make([]model.Project, 0, len(entries))
	for i, raw := range entries {
		p, err := decodeProject(raw, s.nowFn())
		if err != nil {
			return fmt.Errorf("load projects: entry %d: %w", i, err)
		}
		projects = append(projects, p)
	}
	s.projects = projects
	return nil
}

// persist writes next and makes it the current collection.
func (s *ProjectStore) persist(next []model.Project, op string) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("%s: encode projects: %w", op, err)
	}
	if err := s.backend.Put(ProjectsKey, data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.projects = next
	s.log.Debug("projects persisted", logging.FieldOperation, op, logging.FieldCount, len(next))
	return nil
}

func (s *ProjectStore) snapshot() []model.Project {
	out := make([]model.Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = p.Clone()
	}
	return out
}

// Len returns the number of stored projects.
func (s *ProjectStore) Len() int {
	return len(s.projects)
}

// List returns every project, newest first.
func (s *ProjectStore) List() []model.Project {
	out := s.snapshot()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Search returns projects whose name or id contains query, case-insensitively,
// newest first. An empty query returns everything.
func (s *ProjectStore) Search(query string) []model.Project {
	q := strings.ToLower(strings.TrimSpace(query))
	all := s.List()
	if q == "" {
		return all
	}
	out := all[:0]
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.ID), q) {
			out = append(out, p)
		}
	}
	return out
}

// Get returns the project with id.
func (s *ProjectStore) Get(id string) (model.Project, error) {
	i := s.index(id)
	if i < 0 {
		return model.Project{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.projects[i].Clone(), nil
}

func (s *ProjectStore) index(id string) int {
	for i, p := range s.projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Save stores a new project built from calc and notes.
func (s *ProjectStore) Save(calc model.Calculation, notes, name string) (model.Project, error) {
	p := model.Project{
		ID:          s.nextID(),
		Name:        name,
		CreatedAt:   s.nowFn(),
		Calculation: calc.Clone(),
		Notes:       notes,
		Status:      model.StatusSaved,
	}
	next := append(s.snapshot(), p)
	if err := s.persist(next, "save"); err != nil {
		return model.Project{}, err
	}
	s.log.Debug("project saved", logging.FieldProjectID, p.ID)
	return p.Clone(), nil
}

// Duplicate copies the project with id under a new id and a "(Copy)" name.
// The copy starts as a draft dated now; the original is untouched.
func (s *ProjectStore) Duplicate(id string) (model.Project, error) {
	src, err := s.Get(id)
	if err != nil {
		return model.Project{}, err
	}
	dup := src.Clone()
	dup.ID = s.nextID()
	dup.Name = src.Name + " (Copy)"
	dup.Status = model.StatusDraft
	dup.CreatedAt = s.nowFn()

	next := append(s.snapshot(), dup)
	if err := s.persist(next, "duplicate"); err != nil {
		return model.Project{}, err
	}
	s.log.Debug("project duplicated", logging.FieldProjectID, dup.ID, "source_id", id)
	return dup.Clone(), nil
}

// Delete removes the project with id. It reports whether anything was removed;
// deleting a missing id is not an error.
func (s *ProjectStore) Delete(id string) (bool, error) {
	i := s.index(id)
	if i < 0 {
		return false, nil
	}
	next := make([]model.Project, 0, len(s.projects)-1)
	for j, p := range s.projects {
		if j != i {
			next = append(next, p.Clone())
		}
	}
	if err := s.persist(next, "delete"); err != nil {
		return false, err
	}
	s.log.Debug("project deleted", logging.FieldProjectID, id)
	return true, nil
}

// nextID returns "PRJ-" plus the base36 millisecond clock. The value never
// repeats within the process, even when the clock stalls or goes backwards,
// and never collides with a stored id.
func (s *ProjectStore) nextID() string {
	ms := s.nowFn().UnixMilli()
	if ms <= s.lastID {
		ms = s.lastID + 1
	}
	for {
		id := "PRJ-" + strings.ToUpper(strconv.FormatInt(ms, 36))
		if s.index(id) < 0 {
			s.lastID = ms
			return id
		}
		ms++
	}
}
