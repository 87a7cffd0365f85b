package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/adisetya/sheethub/internal/httpserver/deps"
	"github.com/adisetya/sheethub/internal/logger"
)

type saveViewRequest struct {
	Name  string `json:"name"`
	Query string `json:"query,omitempty"` // optional encoded state to apply first
}

// ListViews returns the saved views in order.
func ListViews(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Engine.ListViews())
	}
}

// SaveView captures the request state (or the engine's current state when
// no query is given) under a name. Saving an existing name replaces it and
// moves it to the end of the list.
func SaveView(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveViewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}

		if req.Query != "" {
			params, err := url.ParseQuery(req.Query)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid query"})
				return
			}
			d.Engine.ApplyQuery(params)
		}

		saved, err := d.Engine.SaveView(r.Context(), req.Name)
		if err != nil {
			writeError(d, w, err)
			return
		}

		d.Logger.Info("view saved", logger.String("name", saved.Name))
		writeJSON(w, http.StatusCreated, saved)
	}
}

// ApplyView restores a saved view and returns the resulting model.
func ApplyView(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		model, query, err := d.Engine.ApplyViewModel(name)
		if err != nil {
			writeError(d, w, err)
			return
		}
		writeJSON(w, http.StatusOK, rowsResponse{Model: model, Query: query})
	}
}

// DeleteView removes a saved view by name.
func DeleteView(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if err := d.Engine.DeleteView(r.Context(), name); err != nil {
			writeError(d, w, err)
			return
		}
		d.Logger.Info("view deleted", logger.String("name", name))
		w.WriteHeader(http.StatusNoContent)
	}
}
