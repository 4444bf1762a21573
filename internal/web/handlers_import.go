package web

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/termhub/termhub/internal/formats"
	"github.com/termhub/termhub/internal/logging"
	"github.com/termhub/termhub/internal/web/middleware"
)

// importResponse mirrors the wire shape consumers expect from an import.
type importResponse struct {
	Data importResult `json:"data"`
}

type importResult struct {
	Terms        termResult        `json:"terms"`
	Translations translationResult `json:"translations"`
}

type termResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

type translationResult struct {
	Upserted int `json:"upserted"`
}

// handleImport accepts a multipart translation file and reconciles it into
// the project catalog for the requested locale.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "AUTH_REQUIRED"})
		return
	}

	projectID := chi.URLParam(r, "projectID")

	locale := r.URL.Query().Get("locale")
	if locale == "" {
		s.badRequest(w, r, "MISSING_LOCALE", "locale is required")
		return
	}

	format, err := formats.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxImportSize)
	if err := r.ParseMultipartForm(s.cfg.MaxImportSize); err != nil {
		s.badRequest(w, r, "INVALID_UPLOAD", "file too large or invalid form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.badRequest(w, r, "MISSING_FILE", "no file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.badRequest(w, r, "INVALID_UPLOAD", "failed to read file")
		return
	}

	doc, err := formats.Decode(format, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	doc.Locale = locale

	summary, err := s.engine.Import(r.Context(), actor, projectID, locale, doc)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("import complete",
		"project_id", projectID,
		"locale", locale,
		"format", format,
		"terms_added", summary.TermsAdded,
		"translations_upserted", summary.TranslationsUpserted,
	)

	writeJSON(w, http.StatusOK, importResponse{
		Data: importResult{
			Terms:        termResult{Added: summary.TermsAdded, Skipped: summary.TermsSkipped},
			Translations: translationResult{Upserted: summary.TranslationsUpserted},
		},
	})
}
