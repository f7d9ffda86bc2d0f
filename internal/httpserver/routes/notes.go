package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartnote/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartnote/internal/httpserver/handlers"
)

func init() { api.Add(registerNotes) }

func registerNotes(r chi.Router, d deps.Deps) {
	r.Get("/notes", handlers.ListNotes(d))
	r.Post("/notes", handlers.SaveNote(d))
	r.Get("/notes/{id}", handlers.GetNote(d))
	r.Delete("/notes/{id}", handlers.DeleteNote(d))
	r.Post("/notes/{id}/pin", handlers.TogglePin(d))

	r.Get("/palette", handlers.Palette(d))

	r.Get("/preferences", handlers.GetPreferences(d))
	r.Put("/preferences", handlers.UpdatePreferences(d))
}
