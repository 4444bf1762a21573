package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/termhub/termhub/internal/exporter"
	"github.com/termhub/termhub/internal/formats"
	"github.com/termhub/termhub/internal/web/middleware"
)

// handleExport composes one or more project catalogs for a locale and encodes
// the result. The projectID path segment may be a comma-separated list.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "AUTH_REQUIRED"})
		return
	}

	projectIDs := splitProjectIDs(chi.URLParam(r, "projectID"))
	if len(projectIDs) == 0 {
		s.badRequest(w, r, "MISSING_PROJECT", "at least one project id is required")
		return
	}

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

	q := exporter.Query{
		Locale:         locale,
		OnlyTranslated: r.URL.Query().Get("filter") == "1",
	}

	doc, err := s.exports.Export(r.Context(), actor, projectIDs, q)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	data, err := formats.Encode(format, doc)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(data)
}

// splitProjectIDs splits a comma-separated id list, dropping empty segments.
func splitProjectIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
