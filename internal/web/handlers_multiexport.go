package web

import (
	"encoding/json"
	"net/http"

	"github.com/termhub/termhub/internal/exporter"
	"github.com/termhub/termhub/internal/formats"
)

// multiExportEntry is one project in a multi-export request, carrying its
// own client credentials.
type multiExportEntry struct {
	ProjectID    string `json:"projectId"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

// handleMultiExport composes several projects into one document, where each
// entry is authorized via its own client credentials instead of the request
// session.
func (s *Server) handleMultiExport(w http.ResponseWriter, r *http.Request) {
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

	var entries []multiExportEntry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		s.badRequest(w, r, "INVALID_BODY", "request body must be a JSON array of project credentials")
		return
	}
	if len(entries) == 0 {
		s.badRequest(w, r, "MISSING_PROJECT", "at least one project entry is required")
		return
	}

	clientProjects := make([]exporter.ClientProject, len(entries))
	for i, e := range entries {
		clientProjects[i] = exporter.ClientProject{
			ProjectID:    e.ProjectID,
			ClientID:     e.ClientID,
			ClientSecret: e.ClientSecret,
		}
	}

	q := exporter.Query{
		Locale:         locale,
		OnlyTranslated: r.URL.Query().Get("filter") == "1",
	}

	doc, err := s.exports.ExportClients(r.Context(), clientProjects, q)
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
