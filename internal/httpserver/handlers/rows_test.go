package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adisetya/sheethub/internal/auth"
	"github.com/adisetya/sheethub/internal/domain"
	"github.com/adisetya/sheethub/internal/httpserver/deps"
	"github.com/adisetya/sheethub/internal/logger"
	"github.com/adisetya/sheethub/internal/notes"
	"github.com/adisetya/sheethub/internal/view"
	"golang.org/x/oauth2"
)

func testDeps(t *testing.T) deps.Deps {
	t.Helper()

	engine := view.NewEngine(nil)
	rows := make([]domain.Row, 0, 20)
	for i := 0; i < 20; i++ {
		rows = append(rows, domain.Row{
			ID:       fmt.Sprintf("r%d", i),
			Title:    fmt.Sprintf("Sheet %02d", i),
			Link:     fmt.Sprintf("https://sheets.example/%d", i),
			Category: "Ops",
		})
	}
	rows[3].Category = "Finance"
	engine.LoadRows(rows)

	log := logger.New("error", false)
	jar := auth.NewCookieJar(false)
	manager := auth.NewManager(auth.Options{
		Config: &oauth2.Config{},
		Sinks:  []auth.TokenSink{jar},
		Logger: log,
	})

	return deps.Deps{
		Logger:        log,
		StartTime:     time.Now(),
		TimeNow:       time.Now,
		Engine:        engine,
		Auth:          manager,
		Jar:           jar,
		Notes:         notes.NewClient("", time.Second, log),
		AppURL:        "http://localhost:3000",
		ReloadTrigger: make(chan struct{}, 1),
	}
}

func testRouter(d deps.Deps) chi.Router {
	r := chi.NewRouter()
	r.Get("/api/rows", Rows(d))
	r.Post("/api/rows", AddRow(d))
	r.Post("/api/rows/import", ImportRows(d))
	r.Get("/api/rows/export", ExportRows(d))
	r.Get("/api/views", ListViews(d))
	r.Post("/api/views", SaveView(d))
	r.Post("/api/views/{name}/apply", ApplyView(d))
	r.Delete("/api/views/{name}", DeleteView(d))
	r.Get("/api/notes", ListNotes(d))
	r.Get("/api/auth/google/status", AuthStatus(d))
	r.Post("/api/upload", Upload(d))
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path, body string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var rdr *strings.Reader
	if body == "" {
		rdr = strings.NewReader("")
	} else {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	out := map[string]json.RawMessage{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

func TestRowsEndpoint(t *testing.T) {
	r := testRouter(testDeps(t))

	rec, _ := doJSON(t, r, http.MethodGet, "/api/rows?category=Finance&sort=title_asc", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		view.Model
		Query string `json:"query"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Pager.Total)
	assert.Equal(t, "r3", resp.Visible[0].ID)
	assert.Contains(t, resp.Query, "category=Finance")
	assert.Contains(t, resp.Query, "sort=title_asc")
	// facets still describe the full set
	assert.Equal(t, 20, resp.Facets.Total)
}

func TestAddRowEndpoint(t *testing.T) {
	d := testDeps(t)
	r := testRouter(d)

	rec, _ := doJSON(t, r, http.MethodPost, "/api/rows", `{"title":"New","link":"https://new"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var row domain.Row
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
	assert.True(t, strings.HasPrefix(row.ID, "local_"))
	assert.Len(t, d.Engine.Rows(), 21)

	rec, _ = doJSON(t, r, http.MethodPost, "/api/rows", `{"title":"no link"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, r, http.MethodPost, "/api/rows", `{broken`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportEndpoint(t *testing.T) {
	d := testDeps(t)
	r := testRouter(d)

	t.Run("json", func(t *testing.T) {
		rec, _ := doJSON(t, r, http.MethodPost, "/api/rows/import",
			`{"items":[{"title":"Imp","link":"https://imp"}]}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, d.Engine.Rows(), 21)
	})

	t.Run("csv", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/rows/import",
			strings.NewReader("CsvRow,https://csv"))
		req.Header.Set("Content-Type", "text/csv")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, d.Engine.Rows(), 22)
	})

	t.Run("invalid row rejects whole batch", func(t *testing.T) {
		rec, _ := doJSON(t, r, http.MethodPost, "/api/rows/import",
			`{"items":[{"title":"ok","link":"https://ok"},{"title":"no link"}]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Len(t, d.Engine.Rows(), 22)
	})
}

func TestExportEndpoint(t *testing.T) {
	r := testRouter(testDeps(t))

	rec, _ := doJSON(t, r, http.MethodGet, "/api/rows/export?format=csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "title,link,category"))

	rec, _ = doJSON(t, r, http.MethodGet, "/api/rows/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var doc view.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Len(t, doc.Items, 20)
}

func TestViewsEndpoints(t *testing.T) {
	r := testRouter(testDeps(t))

	rec, _ := doJSON(t, r, http.MethodPost, "/api/views",
		`{"name":"finance","query":"category=Finance&sort=title_asc"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = doJSON(t, r, http.MethodGet, "/api/views", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var views []domain.SavedView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "finance", views[0].Name)
	assert.Equal(t, "Finance", views[0].Filters.Category)

	rec, _ = doJSON(t, r, http.MethodPost, "/api/views/finance/apply", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, r, http.MethodPost, "/api/views/ghost/apply", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, r, http.MethodDelete, "/api/views/finance", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = doJSON(t, r, http.MethodDelete, "/api/views/finance", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, r, http.MethodPost, "/api/views", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotesEndpointSampleMode(t *testing.T) {
	r := testRouter(testDeps(t))

	rec, _ := doJSON(t, r, http.MethodGet, "/api/notes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got []domain.Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "sample_1", got[0].ID)
}

func TestAuthStatusEndpoint(t *testing.T) {
	r := testRouter(testDeps(t))

	rec, _ := doJSON(t, r, http.MethodGet, "/api/auth/google/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Connected bool   `json:"connected"`
		State     string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Connected)
	assert.Equal(t, "unauthenticated", resp.State)
}

func TestAuthStatusSeedsFromCookies(t *testing.T) {
	d := testDeps(t)
	r := testRouter(d)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/status", nil)
	req.AddCookie(&http.Cookie{Name: "google_access_token", Value: "at"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// the jar picked up the client copy
	got, err := d.Jar.Read(req.Context())
	require.NoError(t, err)
	assert.Equal(t, "at", got.AccessToken)
}

func TestUploadRequiresSession(t *testing.T) {
	r := testRouter(testDeps(t))

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("img"))
	req.Header.Set("Content-Type", "image/png")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
