package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/adisetya/sheethub/internal/apperrors"
	"github.com/adisetya/sheethub/internal/httpserver/deps"
	"github.com/adisetya/sheethub/internal/logger"
)

type themePayload struct {
	Theme string `json:"theme"`
}

// Theme returns the stored theme preference, empty when never set.
func Theme(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := d.Prefs.Theme(r.Context())
		if err != nil {
			writeError(d, w, err)
			return
		}
		writeJSON(w, http.StatusOK, themePayload{Theme: v})
	}
}

// SaveTheme stores the theme preference. The value is opaque to the server
// beyond a non-empty check.
func SaveTheme(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req themePayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}
		if req.Theme == "" {
			writeError(d, w, fmt.Errorf("%w: missing required field %q", apperrors.ErrValidation, "theme"))
			return
		}

		if err := d.Prefs.SaveTheme(r.Context(), req.Theme); err != nil {
			writeError(d, w, err)
			return
		}

		d.Logger.Info("theme preference saved", logger.String("theme", req.Theme))
		writeJSON(w, http.StatusOK, req)
	}
}
