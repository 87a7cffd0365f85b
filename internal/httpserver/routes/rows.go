package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/adisetya/sheethub/internal/httpserver/deps"
	"github.com/adisetya/sheethub/internal/httpserver/handlers"
)

func init() { Register(registerRows) }

func registerRows(r chi.Router, d deps.Deps) {
	r.Route("/api/rows", func(r chi.Router) {
		r.Get("/", handlers.Rows(d))
		r.Post("/", handlers.AddRow(d))
		r.Post("/import", handlers.ImportRows(d))
		r.Get("/export", handlers.ExportRows(d))
	})
}
