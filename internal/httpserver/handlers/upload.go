package handlers

import (
	"io"
	"net/http"

	"github.com/adisetya/sheethub/internal/drive"
	"github.com/adisetya/sheethub/internal/httpserver/deps"
	"github.com/adisetya/sheethub/internal/logger"
)

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload pushes an image attachment to Drive under the caller's session.
// Accepts a multipart form with a "file" part or a raw body with a
// Content-Type header. The token is refreshed first if needed.
func Upload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Jar.SeedFromRequest(r)

		rec, err := d.Auth.EnsureFreshToken(r.Context())
		if err != nil {
			setTokenCookies(w, d.Jar)
			writeError(d, w, err)
			return
		}
		setTokenCookies(w, d.Jar)

		name, contentType, data, err := readUpload(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		url, err := d.Uploader.Upload(r.Context(), rec.AccessToken, name, contentType, data)
		if err != nil {
			writeError(d, w, err)
			return
		}

		d.Logger.Info("attachment uploaded",
			logger.String("name", name), logger.Int("bytes", len(data)))
		writeJSON(w, http.StatusOK, uploadResponse{URL: url})
	}
}

func readUpload(r *http.Request) (name, contentType string, data []byte, err error) {
	// one byte past the cap distinguishes "too large" from "exactly at cap"
	limit := int64(drive.MaxUploadBytes) + 1

	if mf, header, ferr := r.FormFile("file"); ferr == nil {
		defer func() { _ = mf.Close() }()
		data, err = io.ReadAll(io.LimitReader(mf, limit))
		if err != nil {
			return "", "", nil, err
		}
		return header.Filename, header.Header.Get("Content-Type"), data, nil
	}

	data, err = io.ReadAll(io.LimitReader(r.Body, limit))
	if err != nil {
		return "", "", nil, err
	}
	name = r.URL.Query().Get("name")
	if name == "" {
		name = "attachment"
	}
	return name, r.Header.Get("Content-Type"), data, nil
}
