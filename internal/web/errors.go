package web

// errors.go maps domain errors onto HTTP responses. Every error is logged
// with full detail server-side, while clients receive a stable code and a
// short message.

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/termhub/termhub/internal/auth"
	"github.com/termhub/termhub/internal/catalog"
	"github.com/termhub/termhub/internal/formats"
	"github.com/termhub/termhub/internal/importer"
	"github.com/termhub/termhub/internal/logging"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError classifies err, logs it, and writes the mapped response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := classifyError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", code,
		"error", err.Error(),
		"request_id", middleware.GetReqID(r.Context()),
	)

	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// badRequest reports a request-shape problem detected before any domain call.
func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, code, message string) {
	logging.FromContext(r.Context()).Warn("bad request",
		"path", r.URL.Path,
		"method", r.Method,
		"code", code,
		"detail", message,
	)
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Code: code})
}

func classifyError(err error) (status int, code, message string) {
	var parseErr *formats.ParseError
	var encodeErr *formats.EncodeError
	var dupErr *importer.DuplicateTermsError

	switch {
	case errors.As(err, &parseErr):
		return http.StatusBadRequest, "PARSE_FAILED", parseErr.Error()
	case errors.As(err, &encodeErr):
		return http.StatusBadRequest, "ENCODE_FAILED", encodeErr.Error()
	case errors.Is(err, formats.ErrNotImplemented):
		return http.StatusBadRequest, "UNKNOWN_FORMAT", err.Error()
	case errors.As(err, &dupErr):
		return http.StatusBadRequest, "DUPLICATE_TERMS", dupErr.Error()
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "access denied"
	case errors.Is(err, auth.ErrQuotaExceeded):
		return http.StatusTooManyRequests, "QUOTA_EXCEEDED", "plan limit exceeded"
	case errors.Is(err, catalog.ErrConflict):
		return http.StatusConflict, "CONFLICT", "resource already exists"
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal server error"
	}
}
