package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/adisetya/sheethub/internal/domain"
	"github.com/adisetya/sheethub/internal/httpserver/deps"
	"github.com/adisetya/sheethub/internal/logger"
	"github.com/adisetya/sheethub/internal/view"
)

const maxImportBytes = 10 << 20

type rowsResponse struct {
	view.Model
	Query string `json:"query"`
}

// Rows seeds the engine from the request query parameters and returns the
// resulting view model plus the canonical encoding of that state. Apply,
// snapshot and encode happen atomically so concurrent requests each get a
// model matching their own query.
func Rows(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		model, query := d.Engine.QueryModel(r.URL.Query())
		writeJSON(w, http.StatusOK, rowsResponse{Model: model, Query: query})
	}
}

// AddRow appends a user-added row to the local set.
func AddRow(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var row domain.Row
		if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}

		added, err := d.Engine.AddRow(r.Context(), row)
		if err != nil {
			writeError(d, w, err)
			return
		}

		d.Logger.Info("row added", logger.String("id", added.ID))
		writeJSON(w, http.StatusCreated, added)
	}
}

// ImportRows parses a CSV or JSON payload and merges the rows into the
// local set. The whole payload is validated before anything is applied.
func ImportRows(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read body"})
			return
		}

		var rows []domain.Row
		if strings.HasPrefix(r.Header.Get("Content-Type"), "text/csv") {
			rows, err = view.ParseCSV(string(body))
		} else {
			rows, err = view.ParseJSON(body)
		}
		if err != nil {
			writeError(d, w, err)
			return
		}

		if err := d.Engine.Import(r.Context(), rows); err != nil {
			writeError(d, w, err)
			return
		}

		d.Logger.Info("rows imported", logger.Int("count", len(rows)))
		writeJSON(w, http.StatusOK, map[string]int{"imported": len(rows)})
	}
}

// ExportRows streams the current filtered set as JSON or CSV.
func ExportRows(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("format") {
		case "csv":
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="rows.csv"`)
			_, _ = w.Write([]byte(d.Engine.ExportCSV()))
		default:
			data, err := d.Engine.ExportJSON()
			if err != nil {
				writeError(d, w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Content-Disposition", `attachment; filename="rows.json"`)
			_, _ = w.Write(data)
		}
	}
}
