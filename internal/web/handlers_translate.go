package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/termhub/termhub/internal/auth"
	"github.com/termhub/termhub/internal/catalog"
	"github.com/termhub/termhub/internal/web/middleware"
)

type dictRow struct {
	Term       string `json:"term"`
	LocaleCode string `json:"localeCode"`
	Value      string `json:"value"`
}

// handleTranslate resolves a single term for a locale. The requested locale
// is matched by language prefix, so "de" or "de_AT" resolve against an
// activated "de_DE" when no exact activation exists.
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "AUTH_REQUIRED"})
		return
	}
	projectID := chi.URLParam(r, "projectID")

	var body struct {
		Locale string `json:"locale"`
		Key    string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Locale == "" || body.Key == "" {
		s.badRequest(w, r, "MISSING_LOOKUP", "locale and key are required")
		return
	}

	if _, err := s.gate.Authorize(r.Context(), actor, projectID, auth.ActionViewTranslation, 0, 0); err != nil {
		s.respondError(w, r, err)
		return
	}

	pl, err := s.matchProjectLocale(r, projectID, body.Locale)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	term, err := s.findTerm(r, projectID, body.Key)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	rows, err := s.store.Translations().ListByProjectLocale(r.Context(), pl.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	for _, tr := range rows {
		if tr.TermID == term.ID {
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]string{"value": tr.Value}})
			return
		}
	}
	s.respondError(w, r, fmt.Errorf("no translation for term %q in %s: %w", body.Key, pl.LocaleCode, catalog.ErrNotFound))
}

// handleMultiTranslate resolves a batch of terms for one locale. The response
// values align with the request keys; unknown or empty keys yield null.
func (s *Server) handleMultiTranslate(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "AUTH_REQUIRED"})
		return
	}
	projectID := chi.URLParam(r, "projectID")

	var body struct {
		Locale string   `json:"locale"`
		Keys   []string `json:"keys"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Locale == "" {
		s.badRequest(w, r, "MISSING_LOOKUP", "locale and keys are required")
		return
	}

	if _, err := s.gate.Authorize(r.Context(), actor, projectID, auth.ActionViewTranslation, 0, 0); err != nil {
		s.respondError(w, r, err)
		return
	}

	pl, err := s.matchProjectLocale(r, projectID, body.Locale)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	terms, err := s.store.Terms().ListByProject(r.Context(), projectID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	termIDByFold := make(map[string]string, len(terms))
	for _, term := range terms {
		termIDByFold[strings.ToLower(term.Value)] = term.ID
	}

	rows, err := s.store.Translations().ListByProjectLocale(r.Context(), pl.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	valueByTermID := make(map[string]string, len(rows))
	for _, tr := range rows {
		valueByTermID[tr.TermID] = tr.Value
	}

	values := make([]*string, len(body.Keys))
	for i, key := range body.Keys {
		if key == "" {
			continue
		}
		termID, ok := termIDByFold[strings.ToLower(key)]
		if !ok {
			continue
		}
		if value, ok := valueByTermID[termID]; ok {
			v := value
			values[i] = &v
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"values": values}})
}

// handleDict dumps every translation row of the project across all of its
// activated locales.
func (s *Server) handleDict(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "AUTH_REQUIRED"})
		return
	}
	projectID := chi.URLParam(r, "projectID")

	if _, err := s.gate.Authorize(r.Context(), actor, projectID, auth.ActionViewTranslation, 0, 0); err != nil {
		s.respondError(w, r, err)
		return
	}

	terms, err := s.store.Terms().ListByProject(r.Context(), projectID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	termByID := make(map[string]string, len(terms))
	for _, term := range terms {
		termByID[term.ID] = term.Value
	}

	locales, err := s.store.ProjectLocales().ListByProject(r.Context(), projectID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	entries := []dictRow{}
	for _, pl := range locales {
		rows, err := s.store.Translations().ListByProjectLocale(r.Context(), pl.ID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		for _, tr := range rows {
			entries = append(entries, dictRow{
				Term:       termByID[tr.TermID],
				LocaleCode: pl.LocaleCode,
				Value:      tr.Value,
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": entries})
}

// matchProjectLocale finds the project activation for a requested locale by
// its two-letter language prefix, preferring an exact code match.
func (s *Server) matchProjectLocale(r *http.Request, projectID, locale string) (catalog.ProjectLocale, error) {
	locales, err := s.store.ProjectLocales().ListByProject(r.Context(), projectID)
	if err != nil {
		return catalog.ProjectLocale{}, err
	}

	for _, pl := range locales {
		if pl.LocaleCode == locale {
			return pl, nil
		}
	}
	prefix := locale
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	for _, pl := range locales {
		if strings.HasPrefix(pl.LocaleCode, prefix) {
			return pl, nil
		}
	}
	return catalog.ProjectLocale{}, fmt.Errorf("no locale matching %q active for project %s: %w", locale, projectID, catalog.ErrNotFound)
}

// findTerm matches a term by value, case-insensitively to mirror the
// catalog's uniqueness rule.
func (s *Server) findTerm(r *http.Request, projectID, key string) (catalog.Term, error) {
	terms, err := s.store.Terms().ListByProject(r.Context(), projectID)
	if err != nil {
		return catalog.Term{}, err
	}
	for _, term := range terms {
		if strings.EqualFold(term.Value, key) {
			return term, nil
		}
	}
	return catalog.Term{}, fmt.Errorf("term %q: %w", key, catalog.ErrNotFound)
}
