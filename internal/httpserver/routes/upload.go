package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/adisetya/sheethub/internal/httpserver/deps"
	"github.com/adisetya/sheethub/internal/httpserver/handlers"
)

func init() { Register(registerUpload) }

func registerUpload(r chi.Router, d deps.Deps) {
	r.Post("/api/upload", handlers.Upload(d))
}
