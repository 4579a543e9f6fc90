package template

import (
	"fmt"
	"sort"
)

// Store holds the loaded templates for lookup by id. It is populated during
// startup and read-only afterwards, so lookups need no locking.
type Store struct {
	templates map[string]*Template
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{templates: make(map[string]*Template)}
}

// Add registers a template. Re-registering an id is an error.
func (s *Store) Add(tpl *Template) error {
	if _, ok := s.templates[tpl.ID]; ok {
		return fmt.Errorf("duplicate template %q", tpl.ID)
	}
	s.templates[tpl.ID] = tpl
	return nil
}

// Get returns the template registered under id.
func (s *Store) Get(id string) (*Template, error) {
	tpl, ok := s.templates[id]
	if !ok {
		return nil, &UnknownTemplateError{ID: id}
	}
	return tpl, nil
}

// List returns all registered template ids, sorted.
func (s *Store) List() []string {
	ids := make([]string, 0, len(s.templates))
	for id := range s.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len reports the number of registered templates.
func (s *Store) Len() int {
	return len(s.templates)
}

// Info is the descriptive summary of a template, shaped for listings and
// the HTTP API.
type Info struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	NameAr         string   `json:"name_ar"`
	Version        string   `json:"template_version"`
	RequiredFields []string `json:"required_fields"`
	RegionCount    int      `json:"region_count"`
	Sections       []string `json:"sections"`
}

// Info summarizes the template registered under id.
func (s *Store) Info(id string) (*Info, error) {
	tpl, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return &Info{
		ID:             tpl.ID,
		Name:           tpl.Name,
		NameAr:         tpl.NameAr,
		Version:        tpl.Version,
		RequiredFields: tpl.RequiredFields,
		RegionCount:    len(tpl.Regions),
		Sections:       tpl.Sections(),
	}, nil
}
