package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/termhub/termhub/internal/auth"
	"github.com/termhub/termhub/internal/catalog"
	"github.com/termhub/termhub/internal/catalog/catalogtest"
	"github.com/termhub/termhub/internal/exporter"
	"github.com/termhub/termhub/internal/importer"
)

const testToken = "test-token"

type fakeGate struct {
	err error
}

func (g *fakeGate) Authorize(_ context.Context, actor auth.Actor, projectID string, _ auth.Action, _, _ int) (auth.Membership, error) {
	if g.err != nil {
		return auth.Membership{}, g.err
	}
	return auth.Membership{ProjectID: projectID, ActorID: actor.ID, Role: auth.RoleEditor}, nil
}

type fakeClients struct {
	secrets map[string]string
}

func (c *fakeClients) AuthenticateClient(_ context.Context, clientID, clientSecret string) (auth.Actor, error) {
	if c.secrets[clientID] != clientSecret {
		return auth.Actor{}, fmt.Errorf("client credentials: %w", auth.ErrForbidden)
	}
	return auth.Actor{ID: clientID, Kind: auth.ActorClient}, nil
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func newTestServer(store *catalogtest.Store, gate auth.Authorizer, clients auth.ClientAuthenticator) *Server {
	if clients == nil {
		clients = &fakeClients{}
	}
	return NewServer(
		store,
		importer.New(store, gate),
		exporter.New(store, gate, clients),
		gate,
		nil,
		Config{
			MaxImportSize:  524288,
			RequestTimeout: 5 * time.Second,
			Tokens:         map[string]string{testToken: "user-1"},
		},
	)
}

func seedProject(store *catalogtest.Store, projectID, localeCode string) string {
	store.AddProject(catalog.Project{ID: projectID, Name: "p", PlanID: "default", LocalesCount: 1})
	store.AddLocale(catalog.Locale{Code: localeCode})
	plID := projectID + "-" + localeCode
	store.ProjectLocaleRows = append(store.ProjectLocaleRows, catalog.ProjectLocale{
		ID: plID, ProjectID: projectID, LocaleCode: localeCode,
	})
	return plID
}

func seedTerm(store *catalogtest.Store, projectID, plID, term, value string) {
	termID := projectID + "-term-" + term
	store.TermRows = append(store.TermRows, catalog.Term{ID: termID, ProjectID: projectID, Value: term})
	store.TranslationRows = append(store.TranslationRows, catalog.Translation{
		ID: termID + "-tr", TermID: termID, ProjectLocaleID: plID, Value: value,
	})
}

func authRequest(method, target string, body *bytes.Buffer) *http.Request {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}

func multipartFile(t *testing.T, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "upload.csv")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	srv := newTestServer(catalogtest.New(), &fakeGate{}, nil)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestHealthStoreDown(t *testing.T) {
	srv := newTestServer(catalogtest.New(), &fakeGate{}, nil)
	srv.pinger = failingPinger{}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestBearerAuthRequired(t *testing.T) {
	srv := newTestServer(catalogtest.New(), &fakeGate{}, nil)

	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"wrong token", "not-the-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/p1/exports?locale=de&format=jsonflat", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestImport(t *testing.T) {
	store := catalogtest.New()
	seedProject(store, "p1", "de_DE")
	srv := newTestServer(store, &fakeGate{}, nil)

	body, contentType := multipartFile(t, "greeting,Hallo\nfarewell,Tschüss\n")
	req := authRequest(http.MethodPost, "/api/v1/projects/p1/imports?locale=de_DE&format=csv", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}

	var resp importResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Terms.Added != 2 {
		t.Errorf("terms added = %d, want 2", resp.Data.Terms.Added)
	}
	if resp.Data.Translations.Upserted != 2 {
		t.Errorf("translations upserted = %d, want 2", resp.Data.Translations.Upserted)
	}
	if len(store.TermRows) != 2 {
		t.Errorf("stored terms = %d, want 2", len(store.TermRows))
	}
}

func TestImportMissingFile(t *testing.T) {
	store := catalogtest.New()
	seedProject(store, "p1", "de_DE")
	srv := newTestServer(store, &fakeGate{}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("note", "no file here")
	mw.Close()

	req := authRequest(http.MethodPost, "/api/v1/projects/p1/imports?locale=de_DE&format=csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestImportUnknownFormat(t *testing.T) {
	store := catalogtest.New()
	seedProject(store, "p1", "de_DE")
	srv := newTestServer(store, &fakeGate{}, nil)

	body, contentType := multipartFile(t, "a,b\n")
	req := authRequest(http.MethodPost, "/api/v1/projects/p1/imports?locale=de_DE&format=wordperfect", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestImportMalformedPayload(t *testing.T) {
	store := catalogtest.New()
	seedProject(store, "p1", "de_DE")
	srv := newTestServer(store, &fakeGate{}, nil)

	body, contentType := multipartFile(t, `{"a": ["not", "a", "string"]}`)
	req := authRequest(http.MethodPost, "/api/v1/projects/p1/imports?locale=de_DE&format=jsonflat", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != "PARSE_FAILED" {
		t.Errorf("code = %q, want PARSE_FAILED", resp.Code)
	}
}

func TestImportQuotaExceeded(t *testing.T) {
	store := catalogtest.New()
	seedProject(store, "p1", "de_DE")
	srv := newTestServer(store, &fakeGate{err: fmt.Errorf("plan allows 2 terms: %w", auth.ErrQuotaExceeded)}, nil)

	body, contentType := multipartFile(t, "greeting,Hallo\n")
	req := authRequest(http.MethodPost, "/api/v1/projects/p1/imports?locale=de_DE&format=csv", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
}

func TestExport(t *testing.T) {
	store := catalogtest.New()
	plID := seedProject(store, "p1", "de_DE")
	seedTerm(store, "p1", plID, "greeting", "Hallo")
	srv := newTestServer(store, &fakeGate{}, nil)

	req := authRequest(http.MethodGet, "/api/v1/projects/p1/exports?locale=de_DE&format=jsonflat", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/octet-stream" {
		t.Errorf("Content-Type = %q, want application/octet-stream", got)
	}
	if !strings.Contains(rec.Body.String(), `"greeting": "Hallo"`) {
		t.Errorf("body missing translation: %s", rec.Body)
	}
}

func TestExportMissingLocale(t *testing.T) {
	srv := newTestServer(catalogtest.New(), &fakeGate{}, nil)

	req := authRequest(http.MethodGet, "/api/v1/projects/p1/exports?format=jsonflat", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestExportInactiveLocale(t *testing.T) {
	store := catalogtest.New()
	seedProject(store, "p1", "de_DE")
	srv := newTestServer(store, &fakeGate{}, nil)

	req := authRequest(http.MethodGet, "/api/v1/projects/p1/exports?locale=fr_FR&format=jsonflat", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestExportMultipleProjects(t *testing.T) {
	store := catalogtest.New()
	pl1 := seedProject(store, "p1", "de_DE")
	pl2 := seedProject(store, "p2", "de_DE")
	seedTerm(store, "p1", pl1, "greeting", "Hallo")
	seedTerm(store, "p2", pl2, "farewell", "Tschüss")
	srv := newTestServer(store, &fakeGate{}, nil)

	req := authRequest(http.MethodGet, "/api/v1/projects/p1,p2/exports?locale=de_DE&format=jsonflat", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Hallo") || !strings.Contains(body, "Tschüss") {
		t.Errorf("body missing project content: %s", body)
	}
}

func TestExportForbidden(t *testing.T) {
	store := catalogtest.New()
	seedProject(store, "p1", "de_DE")
	srv := newTestServer(store, &fakeGate{err: auth.ErrForbidden}, nil)

	req := authRequest(http.MethodGet, "/api/v1/projects/p1/exports?locale=de_DE&format=jsonflat", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestMultiExport(t *testing.T) {
	store := catalogtest.New()
	plID := seedProject(store, "p1", "de_DE")
	seedTerm(store, "p1", plID, "greeting", "Hallo")
	clients := &fakeClients{secrets: map[string]string{"client-1": "s3cret"}}
	srv := newTestServer(store, &fakeGate{}, clients)

	body := bytes.NewBufferString(`[{"projectId":"p1","clientId":"client-1","clientSecret":"s3cret"}]`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/multi-export?locale=de_DE&format=jsonflat", body)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), "Hallo") {
		t.Errorf("body missing translation: %s", rec.Body)
	}
}

func TestMultiExportBadCredentials(t *testing.T) {
	store := catalogtest.New()
	seedProject(store, "p1", "de_DE")
	clients := &fakeClients{secrets: map[string]string{"client-1": "s3cret"}}
	srv := newTestServer(store, &fakeGate{}, clients)

	body := bytes.NewBufferString(`[{"projectId":"p1","clientId":"client-1","clientSecret":"wrong"}]`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/multi-export?locale=de_DE&format=jsonflat", body)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestMultiExportInvalidBody(t *testing.T) {
	srv := newTestServer(catalogtest.New(), &fakeGate{}, nil)

	body := bytes.NewBufferString(`{"not":"an array"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/multi-export?locale=de_DE&format=jsonflat", body)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAddProjectLocale(t *testing.T) {
	store := catalogtest.New()
	store.AddProject(catalog.Project{ID: "p1", PlanID: "default"})
	store.AddLocale(catalog.Locale{Code: "fr_FR"})
	srv := newTestServer(store, &fakeGate{}, nil)

	body := bytes.NewBufferString(`{"code":"fr_FR"}`)
	req := authRequest(http.MethodPost, "/api/v1/projects/p1/translations", body)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body)
	}
	if store.ProjectsByID["p1"].LocalesCount != 1 {
		t.Errorf("locales count = %d, want 1", store.ProjectsByID["p1"].LocalesCount)
	}

	// Activating the same locale again is a conflict.
	body = bytes.NewBufferString(`{"code":"fr_FR"}`)
	req = authRequest(http.MethodPost, "/api/v1/projects/p1/translations", body)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("repeat status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestAddProjectLocaleMalformedCode(t *testing.T) {
	store := catalogtest.New()
	store.AddProject(catalog.Project{ID: "p1", PlanID: "default"})
	srv := newTestServer(store, &fakeGate{}, nil)

	body := bytes.NewBufferString(`{"code":"!!not a tag!!"}`)
	req := authRequest(http.MethodPost, "/api/v1/projects/p1/translations", body)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAddProjectLocaleUnknownCode(t *testing.T) {
	store := catalogtest.New()
	store.AddProject(catalog.Project{ID: "p1", PlanID: "default"})
	srv := newTestServer(store, &fakeGate{}, nil)

	body := bytes.NewBufferString(`{"code":"xx_XX"}`)
	req := authRequest(http.MethodPost, "/api/v1/projects/p1/translations", body)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestListProjectLocales(t *testing.T) {
	store := catalogtest.New()
	seedProject(store, "p1", "de_DE")
	srv := newTestServer(store, &fakeGate{}, nil)

	req := authRequest(http.MethodGet, "/api/v1/projects/p1/translations", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "de_DE") {
		t.Errorf("body missing locale: %s", rec.Body)
	}
}

func TestListTranslations(t *testing.T) {
	store := catalogtest.New()
	plID := seedProject(store, "p1", "de_DE")
	seedTerm(store, "p1", plID, "greeting", "Hallo")
	srv := newTestServer(store, &fakeGate{}, nil)

	req := authRequest(http.MethodGet, "/api/v1/projects/p1/translations/de_DE", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Hallo") {
		t.Errorf("body missing translation: %s", rec.Body)
	}
}

func TestDeleteProjectLocale(t *testing.T) {
	store := catalogtest.New()
	plID := seedProject(store, "p1", "de_DE")
	seedTerm(store, "p1", plID, "greeting", "Hallo")
	srv := newTestServer(store, &fakeGate{}, nil)

	req := authRequest(http.MethodDelete, "/api/v1/projects/p1/translations/de_DE", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusNoContent, rec.Body)
	}
	if len(store.TranslationRows) != 0 {
		t.Errorf("translation rows = %d, want 0", len(store.TranslationRows))
	}
	if len(store.ProjectLocaleRows) != 0 {
		t.Errorf("project locales = %d, want 0", len(store.ProjectLocaleRows))
	}
	if store.ProjectsByID["p1"].LocalesCount != 0 {
		t.Errorf("locales count = %d, want 0", store.ProjectsByID["p1"].LocalesCount)
	}
}

func TestDeleteInactiveLocale(t *testing.T) {
	store := catalogtest.New()
	store.AddProject(catalog.Project{ID: "p1", PlanID: "default"})
	srv := newTestServer(store, &fakeGate{}, nil)

	req := authRequest(http.MethodDelete, "/api/v1/projects/p1/translations/de_DE", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
