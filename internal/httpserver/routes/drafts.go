package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartnote/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartnote/internal/httpserver/handlers"
)

func init() { api.Add(registerDrafts) }

func registerDrafts(r chi.Router, d deps.Deps) {
	r.Post("/drafts", handlers.StartDraft(d))
	r.Get("/drafts/{id}", handlers.GetDraft(d))
	r.Delete("/drafts/{id}", handlers.StopDraft(d))
	r.Post("/drafts/{id}/fragments", handlers.PushFragments(d))
}
