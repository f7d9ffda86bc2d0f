package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartnote/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartnote/internal/httpserver/handlers"
)

func init() {
	Register(registerHealthz)
	ops.Add(registerOps)
}

func registerHealthz(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
}

func registerOps(r chi.Router, d deps.Deps) {
	r.Get("/readyz", handlers.Readyz(d))
	r.Get("/infra", handlers.Infra(d))
	r.Post("/persist", handlers.Persist(d))
}
