package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/adisetya/sheethub/internal/httpserver/deps"
	"github.com/adisetya/sheethub/internal/httpserver/handlers"
)

func init() { Register(registerNotes) }

func registerNotes(r chi.Router, d deps.Deps) {
	r.Route("/api/notes", func(r chi.Router) {
		r.Get("/", handlers.ListNotes(d))
		r.Post("/", handlers.CreateNote(d))
		r.Get("/{id}", handlers.GetNote(d))
		r.Put("/{id}", handlers.UpdateNote(d))
		r.Delete("/{id}", handlers.DeleteNote(d))
	})
}
