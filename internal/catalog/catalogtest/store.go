// Package catalogtest provides an in-memory catalog.Store for exercising the
// import and export logic without a database. It enforces the same
// uniqueness rules as the Postgres schema (case-insensitive term values, one
// activation per project/locale) and rolls back mutations when a transaction
// function fails.
package catalogtest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/termhub/termhub/internal/catalog"
)

// Store is an in-memory catalog.Store. The zero value is not usable; call New.
type Store struct {
	mu sync.Mutex

	ProjectsByID    map[string]catalog.Project
	LocalesByCode   map[string]catalog.Locale
	ProjectLocaleRows []catalog.ProjectLocale
	TermRows        []catalog.Term
	TranslationRows []catalog.Translation
}

func New() *Store {
	return &Store{
		ProjectsByID:  make(map[string]catalog.Project),
		LocalesByCode: make(map[string]catalog.Locale),
	}
}

// AddProject, AddLocale seed fixture data.
func (s *Store) AddProject(p catalog.Project) { s.ProjectsByID[p.ID] = p }
func (s *Store) AddLocale(l catalog.Locale)   { s.LocalesByCode[l.Code] = l }

func (s *Store) Projects() catalog.ProjectRepository             { return (*projectRepo)(s) }
func (s *Store) Locales() catalog.LocaleRepository               { return (*localeRepo)(s) }
func (s *Store) ProjectLocales() catalog.ProjectLocaleRepository { return (*projectLocaleRepo)(s) }
func (s *Store) Terms() catalog.TermRepository                   { return (*termRepo)(s) }
func (s *Store) Translations() catalog.TranslationRepository     { return (*translationRepo)(s) }

// InTx snapshots all state and restores it if fn fails, imitating a rolled
// back transaction. Transactions are serialized by the store mutex.
func (s *Store) InTx(_ context.Context, fn func(catalog.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.copyState()
	if err := fn(s); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

type state struct {
	projects       map[string]catalog.Project
	projectLocales []catalog.ProjectLocale
	terms          []catalog.Term
	translations   []catalog.Translation
}

func (s *Store) copyState() state {
	projects := make(map[string]catalog.Project, len(s.ProjectsByID))
	for id, p := range s.ProjectsByID {
		projects[id] = p
	}
	return state{
		projects:       projects,
		projectLocales: append([]catalog.ProjectLocale(nil), s.ProjectLocaleRows...),
		terms:          append([]catalog.Term(nil), s.TermRows...),
		translations:   append([]catalog.Translation(nil), s.TranslationRows...),
	}
}

func (s *Store) restore(st state) {
	s.ProjectsByID = st.projects
	s.ProjectLocaleRows = st.projectLocales
	s.TermRows = st.terms
	s.TranslationRows = st.translations
}

type projectRepo Store

func (r *projectRepo) Find(_ context.Context, id string) (catalog.Project, error) {
	p, ok := r.ProjectsByID[id]
	if !ok {
		return catalog.Project{}, fmt.Errorf("project %s: %w", id, catalog.ErrNotFound)
	}
	return p, nil
}

func (r *projectRepo) IncrementTermsCount(_ context.Context, id string, delta int) error {
	p, ok := r.ProjectsByID[id]
	if !ok {
		return fmt.Errorf("project %s: %w", id, catalog.ErrNotFound)
	}
	p.TermsCount += delta
	r.ProjectsByID[id] = p
	return nil
}

func (r *projectRepo) IncrementLocalesCount(_ context.Context, id string, delta int) error {
	p, ok := r.ProjectsByID[id]
	if !ok {
		return fmt.Errorf("project %s: %w", id, catalog.ErrNotFound)
	}
	p.LocalesCount += delta
	r.ProjectsByID[id] = p
	return nil
}

type localeRepo Store

func (r *localeRepo) FindByCode(_ context.Context, code string) (catalog.Locale, error) {
	l, ok := r.LocalesByCode[code]
	if !ok {
		return catalog.Locale{}, fmt.Errorf("locale %s: %w", code, catalog.ErrNotFound)
	}
	return l, nil
}

func (r *localeRepo) List(_ context.Context) ([]catalog.Locale, error) {
	locales := make([]catalog.Locale, 0, len(r.LocalesByCode))
	for _, l := range r.LocalesByCode {
		locales = append(locales, l)
	}
	sort.Slice(locales, func(i, j int) bool { return locales[i].Code < locales[j].Code })
	return locales, nil
}

type projectLocaleRepo Store

func (r *projectLocaleRepo) Find(_ context.Context, projectID, localeCode string) (*catalog.ProjectLocale, error) {
	for _, pl := range r.ProjectLocaleRows {
		if pl.ProjectID == projectID && pl.LocaleCode == localeCode {
			found := pl
			return &found, nil
		}
	}
	return nil, nil
}

func (r *projectLocaleRepo) ListByProject(_ context.Context, projectID string) ([]catalog.ProjectLocale, error) {
	var out []catalog.ProjectLocale
	for _, pl := range r.ProjectLocaleRows {
		if pl.ProjectID == projectID {
			out = append(out, pl)
		}
	}
	return out, nil
}

func (r *projectLocaleRepo) Insert(_ context.Context, pl catalog.ProjectLocale) error {
	for _, existing := range r.ProjectLocaleRows {
		if existing.ProjectID == pl.ProjectID && existing.LocaleCode == pl.LocaleCode {
			return fmt.Errorf("project locale %s/%s: %w", pl.ProjectID, pl.LocaleCode, catalog.ErrConflict)
		}
	}
	r.ProjectLocaleRows = append(r.ProjectLocaleRows, pl)
	return nil
}

func (r *projectLocaleRepo) Delete(_ context.Context, id string) error {
	for i, pl := range r.ProjectLocaleRows {
		if pl.ID == id {
			r.ProjectLocaleRows = append(r.ProjectLocaleRows[:i], r.ProjectLocaleRows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("project locale %s: %w", id, catalog.ErrNotFound)
}

type termRepo Store

func (r *termRepo) ListByProject(_ context.Context, projectID string) ([]catalog.Term, error) {
	var out []catalog.Term
	for _, term := range r.TermRows {
		if term.ProjectID == projectID {
			out = append(out, term)
		}
	}
	return out, nil
}

func (r *termRepo) InsertBatch(_ context.Context, terms []catalog.Term) error {
	for _, term := range terms {
		for _, existing := range r.TermRows {
			if existing.ProjectID == term.ProjectID &&
				strings.EqualFold(existing.Value, term.Value) {
				return fmt.Errorf("term %q: %w", term.Value, catalog.ErrConflict)
			}
		}
		r.TermRows = append(r.TermRows, term)
	}
	return nil
}

func (r *termRepo) ListWithValues(_ context.Context, projectID, projectLocaleID string, onlyTranslated bool) ([]catalog.TermValues, error) {
	var out []catalog.TermValues
	for _, term := range r.TermRows {
		if term.ProjectID != projectID {
			continue
		}
		var values []string
		for _, tr := range r.TranslationRows {
			if tr.TermID != term.ID || tr.ProjectLocaleID != projectLocaleID {
				continue
			}
			if onlyTranslated && tr.Value == "" {
				continue
			}
			values = append(values, tr.Value)
		}
		if onlyTranslated && len(values) == 0 {
			continue
		}
		out = append(out, catalog.TermValues{Term: term.Value, Values: values})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Term < out[j].Term })
	return out, nil
}

type translationRepo Store

func (r *translationRepo) InsertBatch(_ context.Context, translations []catalog.Translation) error {
	r.TranslationRows = append(r.TranslationRows, translations...)
	return nil
}

func (r *translationRepo) ListByProjectLocale(_ context.Context, projectLocaleID string) ([]catalog.Translation, error) {
	var out []catalog.Translation
	for _, tr := range r.TranslationRows {
		if tr.ProjectLocaleID == projectLocaleID {
			out = append(out, tr)
		}
	}
	return out, nil
}

func (r *translationRepo) DeleteByProjectLocale(_ context.Context, projectLocaleID string) error {
	kept := r.TranslationRows[:0]
	for _, tr := range r.TranslationRows {
		if tr.ProjectLocaleID != projectLocaleID {
			kept = append(kept, tr)
		}
	}
	r.TranslationRows = kept
	return nil
}
