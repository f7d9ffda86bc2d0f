package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/smartnote/internal/logger"
	"github.com/MrSnakeDoc/smartnote/internal/utils"
)

// AllowOnlyCIDRS allows only specific IPs/CIDRs. An empty list does not
// filter. trustProxy should be true behind a trusted reverse proxy/tunnel.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debugf("AllowOnlyCIDRS: initialized with %d rules, trustProxy=%v", m.Len(), trustProxy)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Warn("request rejected by CIDR allow-list",
					logger.String("ip", ip),
					logger.String("path", r.URL.Path))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
