package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/smartnote/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartnote/internal/logger"
)

// Persist triggers an immediate persistence flush.
func Persist(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.FlushTrigger <- struct{}{}:
			d.Logger.Info("manual flush triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusAccepted)
			if _, err := w.Write([]byte("✅ Flush triggered successfully\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		default:
			d.Logger.Warn("flush already pending",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusTooManyRequests)
			if _, err := w.Write([]byte("⏳ Flush already pending, please wait\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		}
	}
}
