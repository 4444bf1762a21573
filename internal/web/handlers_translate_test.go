package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/termhub/termhub/internal/catalog/catalogtest"
)

func TestTranslate(t *testing.T) {
	store := catalogtest.New()
	plID := seedProject(store, "p1", "de_DE")
	seedTerm(store, "p1", plID, "greeting", "Hallo")
	srv := newTestServer(store, &fakeGate{}, nil)

	tests := []struct {
		name   string
		locale string
		key    string
	}{
		{"exact locale", "de_DE", "greeting"},
		{"language prefix", "de", "greeting"},
		{"regional variant falls back by prefix", "de_AT", "greeting"},
		{"key matched case-insensitively", "de_DE", "Greeting"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := bytes.NewBufferString(`{"locale":"` + tt.locale + `","key":"` + tt.key + `"}`)
			req := authRequest(http.MethodPost, "/api/v1/projects/p1/translate", body)
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
			}
			if !strings.Contains(rec.Body.String(), `"value":"Hallo"`) {
				t.Errorf("body missing value: %s", rec.Body)
			}
		})
	}
}

func TestTranslateNotFound(t *testing.T) {
	store := catalogtest.New()
	plID := seedProject(store, "p1", "de_DE")
	seedTerm(store, "p1", plID, "greeting", "Hallo")
	srv := newTestServer(store, &fakeGate{}, nil)

	tests := []struct {
		name string
		body string
	}{
		{"unknown term", `{"locale":"de_DE","key":"farewell"}`},
		{"no locale for language", `{"locale":"fr_FR","key":"greeting"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authRequest(http.MethodPost, "/api/v1/projects/p1/translate", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)

			if rec.Code != http.StatusNotFound {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
			}
		})
	}
}

func TestTranslateMissingFields(t *testing.T) {
	srv := newTestServer(catalogtest.New(), &fakeGate{}, nil)

	req := authRequest(http.MethodPost, "/api/v1/projects/p1/translate", bytes.NewBufferString(`{"locale":"de_DE"}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestMultiTranslate(t *testing.T) {
	store := catalogtest.New()
	plID := seedProject(store, "p1", "de_DE")
	seedTerm(store, "p1", plID, "greeting", "Hallo")
	seedTerm(store, "p1", plID, "farewell", "Tschüss")
	srv := newTestServer(store, &fakeGate{}, nil)

	body := bytes.NewBufferString(`{"locale":"de","keys":["greeting","","unknown","FAREWELL"]}`)
	req := authRequest(http.MethodPost, "/api/v1/projects/p1/multi-translate", body)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}

	var resp struct {
		Data struct {
			Values []*string `json:"values"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	values := resp.Data.Values
	if len(values) != 4 {
		t.Fatalf("values length = %d, want 4", len(values))
	}
	if values[0] == nil || *values[0] != "Hallo" {
		t.Errorf("values[0] = %v, want Hallo", values[0])
	}
	if values[1] != nil {
		t.Errorf("values[1] = %v, want null for empty key", *values[1])
	}
	if values[2] != nil {
		t.Errorf("values[2] = %v, want null for unknown key", *values[2])
	}
	if values[3] == nil || *values[3] != "Tschüss" {
		t.Errorf("values[3] = %v, want Tschüss", values[3])
	}
}

func TestMultiTranslateUnknownLocale(t *testing.T) {
	store := catalogtest.New()
	seedProject(store, "p1", "de_DE")
	srv := newTestServer(store, &fakeGate{}, nil)

	body := bytes.NewBufferString(`{"locale":"fr_FR","keys":["greeting"]}`)
	req := authRequest(http.MethodPost, "/api/v1/projects/p1/multi-translate", body)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDict(t *testing.T) {
	store := catalogtest.New()
	plDE := seedProject(store, "p1", "de_DE")
	seedTerm(store, "p1", plDE, "greeting", "Hallo")
	plFR := seedProject(store, "p1", "fr_FR")
	seedTerm(store, "p1", plFR, "farewell", "au revoir")
	srv := newTestServer(store, &fakeGate{}, nil)

	req := authRequest(http.MethodGet, "/api/v1/projects/p1/dict", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}

	var resp struct {
		Data []dictRow `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("rows = %d, want 2", len(resp.Data))
	}
	byLocale := make(map[string]dictRow, len(resp.Data))
	for _, row := range resp.Data {
		byLocale[row.LocaleCode] = row
	}
	if row := byLocale["de_DE"]; row.Term != "greeting" || row.Value != "Hallo" {
		t.Errorf("de_DE row = %+v", row)
	}
	if row := byLocale["fr_FR"]; row.Term != "farewell" || row.Value != "au revoir" {
		t.Errorf("fr_FR row = %+v", row)
	}
}

func TestDictEmptyProject(t *testing.T) {
	store := catalogtest.New()
	seedProject(store, "p1", "de_DE")
	srv := newTestServer(store, &fakeGate{}, nil)

	req := authRequest(http.MethodGet, "/api/v1/projects/p1/dict", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("body = %s, want empty data array", rec.Body)
	}
}
