package routes

import (
	"github.com/MrSnakeDoc/smartnote/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartnote/internal/httpserver/mw"
)

func allowCIDRS(d deps.Deps) Middleware {
	return mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)
}

func aiRateLimit(d deps.Deps) Middleware {
	return mw.RateLimit(mw.RateLimitConfig{
		Burst:          d.AIRateBurst,
		RefillInterval: d.AIRateRefill,
		MaxEntries:     10_000,
		TrustProxy:     d.TrustProxy,
	})
}

// api holds every JSON endpoint; ops holds the operator endpoints.
var (
	api = NewGroup("/api", allowCIDRS)
	ops = NewGroup("", allowCIDRS)
)
