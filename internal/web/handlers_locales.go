package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/termhub/termhub/internal/auth"
	"github.com/termhub/termhub/internal/catalog"
	"github.com/termhub/termhub/internal/web/middleware"
)

type projectLocaleView struct {
	ID         string    `json:"id"`
	LocaleCode string    `json:"localeCode"`
	Date       time.Time `json:"date"`
}

type translationView struct {
	TermID string    `json:"termId"`
	Value  string    `json:"value"`
	Date   time.Time `json:"date"`
}

// handleListProjectLocales lists the locales activated for a project.
func (s *Server) handleListProjectLocales(w http.ResponseWriter, r *http.Request) {
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

	locales, err := s.store.ProjectLocales().ListByProject(r.Context(), projectID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	views := make([]projectLocaleView, len(locales))
	for i, pl := range locales {
		views[i] = projectLocaleView{ID: pl.ID, LocaleCode: pl.LocaleCode, Date: pl.Date}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": views})
}

// handleAddProjectLocale activates a locale for a project. The locale must
// already exist in the known-locale table; activating one that is already
// active is a conflict.
func (s *Server) handleAddProjectLocale(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "AUTH_REQUIRED"})
		return
	}
	projectID := chi.URLParam(r, "projectID")

	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Code == "" {
		s.badRequest(w, r, "MISSING_LOCALE", "locale code is required")
		return
	}
	if _, err := language.Parse(body.Code); err != nil {
		s.badRequest(w, r, "MALFORMED_LOCALE", "locale code is not a valid language tag")
		return
	}

	if _, err := s.gate.Authorize(r.Context(), actor, projectID, auth.ActionAddTranslation, 0, 1); err != nil {
		s.respondError(w, r, err)
		return
	}

	locale, err := s.store.Locales().FindByCode(r.Context(), body.Code)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	pl := catalog.ProjectLocale{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		LocaleCode: locale.Code,
		Date:       time.Now().UTC(),
	}

	err = s.store.InTx(r.Context(), func(tx catalog.Store) error {
		existing, err := tx.ProjectLocales().Find(r.Context(), projectID, locale.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("locale %s already active: %w", locale.Code, catalog.ErrConflict)
		}
		if err := tx.ProjectLocales().Insert(r.Context(), pl); err != nil {
			return err
		}
		return tx.Projects().IncrementLocalesCount(r.Context(), projectID, 1)
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"data": projectLocaleView{ID: pl.ID, LocaleCode: pl.LocaleCode, Date: pl.Date},
	})
}

// handleListTranslations lists the raw translation rows of one project
// locale.
func (s *Server) handleListTranslations(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "AUTH_REQUIRED"})
		return
	}
	projectID := chi.URLParam(r, "projectID")
	localeCode := chi.URLParam(r, "localeCode")

	if _, err := s.gate.Authorize(r.Context(), actor, projectID, auth.ActionViewTranslation, 0, 0); err != nil {
		s.respondError(w, r, err)
		return
	}

	pl, err := s.store.ProjectLocales().Find(r.Context(), projectID, localeCode)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if pl == nil {
		s.respondError(w, r, fmt.Errorf("locale %s not active for project %s: %w", localeCode, projectID, catalog.ErrNotFound))
		return
	}

	rows, err := s.store.Translations().ListByProjectLocale(r.Context(), pl.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	views := make([]translationView, len(rows))
	for i, t := range rows {
		views[i] = translationView{TermID: t.TermID, Value: t.Value, Date: t.Date}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": views})
}

// handleDeleteProjectLocale deactivates a locale, removing its translation
// rows and decrementing the project's locale counter in one transaction.
func (s *Server) handleDeleteProjectLocale(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "AUTH_REQUIRED"})
		return
	}
	projectID := chi.URLParam(r, "projectID")
	localeCode := chi.URLParam(r, "localeCode")

	if _, err := s.gate.Authorize(r.Context(), actor, projectID, auth.ActionDeleteTranslation, 0, 0); err != nil {
		s.respondError(w, r, err)
		return
	}

	pl, err := s.store.ProjectLocales().Find(r.Context(), projectID, localeCode)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if pl == nil {
		s.respondError(w, r, fmt.Errorf("locale %s not active for project %s: %w", localeCode, projectID, catalog.ErrNotFound))
		return
	}

	err = s.store.InTx(r.Context(), func(tx catalog.Store) error {
		if err := tx.Translations().DeleteByProjectLocale(r.Context(), pl.ID); err != nil {
			return err
		}
		if err := tx.ProjectLocales().Delete(r.Context(), pl.ID); err != nil {
			return err
		}
		return tx.Projects().IncrementLocalesCount(r.Context(), projectID, -1)
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
