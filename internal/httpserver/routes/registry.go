package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartnote/internal/httpserver/deps"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

// Group is a set of registrars sharing a path prefix and middlewares.
type Group struct {
	Prefix string
	Mws    []func(d deps.Deps) Middleware
	regs   []Registrar
}

var (
	root   = &Group{}
	groups = []*Group{root}
)

// NewGroup declares a prefix whose routes all pass through mws. Middlewares
// are built from deps when the routes are mounted.
func NewGroup(prefix string, mws ...func(d deps.Deps) Middleware) *Group {
	g := &Group{Prefix: prefix, Mws: mws}
	groups = append(groups, g)
	return g
}

// Add appends a registrar to the group.
func (g *Group) Add(reg Registrar) { g.regs = append(g.regs, reg) }

// Register adds a registrar at the router root.
func Register(reg Registrar) { root.Add(reg) }

// Called once from server.New()
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, g := range groups {
		if g.Prefix == "" && len(g.Mws) == 0 {
			for _, reg := range g.regs {
				reg(r, d)
			}
			continue
		}
		mount := func(sub chi.Router) {
			for _, mw := range g.Mws {
				sub.Use(mw(d))
			}
			for _, reg := range g.regs {
				reg(sub, d)
			}
		}
		if g.Prefix == "" {
			r.Group(mount)
			continue
		}
		r.Route(g.Prefix, mount)
	}
}
