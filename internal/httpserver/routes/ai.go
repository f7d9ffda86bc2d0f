package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartnote/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartnote/internal/httpserver/handlers"
)

func init() { api.Add(registerAI) }

func registerAI(r chi.Router, d deps.Deps) {
	limited := r.With(aiRateLimit(d))
	limited.Post("/notes/{id}/summarize", handlers.Summarize(d))
	limited.Post("/notes/{id}/translate", handlers.Translate(d))
	limited.Post("/chat", handlers.Chat(d))
}
