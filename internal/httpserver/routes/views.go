package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/adisetya/sheethub/internal/httpserver/deps"
	"github.com/adisetya/sheethub/internal/httpserver/handlers"
)

func init() { Register(registerViews) }

func registerViews(r chi.Router, d deps.Deps) {
	r.Route("/api/views", func(r chi.Router) {
		r.Get("/", handlers.ListViews(d))
		r.Post("/", handlers.SaveView(d))
		r.Post("/{name}/apply", handlers.ApplyView(d))
		r.Delete("/{name}", handlers.DeleteView(d))
	})
}
