package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/adisetya/sheethub/internal/httpserver/deps"
	"github.com/adisetya/sheethub/internal/httpserver/handlers"
)

func init() { Register(registerTheme) }

func registerTheme(r chi.Router, d deps.Deps) {
	r.Route("/api/theme", func(r chi.Router) {
		r.Get("/", handlers.Theme(d))
		r.Put("/", handlers.SaveTheme(d))
	})
}
