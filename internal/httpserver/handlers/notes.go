package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adisetya/sheethub/internal/domain"
	"github.com/adisetya/sheethub/internal/httpserver/deps"
	"github.com/adisetya/sheethub/internal/logger"
)

// ListNotes fetches all notes from the spreadsheet backend.
func ListNotes(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notes, err := d.Notes.List(r.Context())
		if err != nil {
			writeError(d, w, err)
			return
		}
		writeJSON(w, http.StatusOK, notes)
	}
}

// GetNote returns a single note by id from the last fetched set.
func GetNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		note, err := d.Notes.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(d, w, err)
			return
		}
		writeJSON(w, http.StatusOK, note)
	}
}

// CreateNote validates and appends a note through the backend.
func CreateNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.NoteInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}

		note, err := d.Notes.Create(r.Context(), in)
		if err != nil {
			writeError(d, w, err)
			return
		}

		d.Logger.Info("note created", logger.String("id", note.ID))
		writeJSON(w, http.StatusCreated, note)
	}
}

// UpdateNote replaces mutable fields of a note by id.
func UpdateNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.NoteInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}

		note, err := d.Notes.Update(r.Context(), chi.URLParam(r, "id"), in)
		if err != nil {
			writeError(d, w, err)
			return
		}
		writeJSON(w, http.StatusOK, note)
	}
}

// DeleteNote removes a note by id.
func DeleteNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := d.Notes.Delete(r.Context(), id); err != nil {
			writeError(d, w, err)
			return
		}
		d.Logger.Info("note deleted", logger.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
