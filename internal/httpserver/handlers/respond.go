package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/adisetya/sheethub/internal/apperrors"
	"github.com/adisetya/sheethub/internal/httpserver/deps"
	"github.com/adisetya/sheethub/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels to HTTP statuses. Everything
// unrecognized is a 500 with the detail kept out of the response body.
func writeError(d deps.Deps, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := err.Error()

	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrImportParse):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrUnauthenticated),
		errors.Is(err, apperrors.ErrRefreshFailed),
		errors.Is(err, apperrors.ErrTokenExchange):
		status = http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrRemoteFetch):
		status = http.StatusBadGateway
	default:
		d.Logger.Error("request failed", logger.Error(err))
		msg = "internal error"
	}

	writeJSON(w, status, errorResponse{Error: msg})
}
