package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/smartnote/internal/ai"
	"github.com/MrSnakeDoc/smartnote/internal/domain"
	"github.com/MrSnakeDoc/smartnote/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartnote/internal/logger"
	"github.com/MrSnakeDoc/smartnote/internal/notes"
	"github.com/MrSnakeDoc/smartnote/internal/transcript"
)

const maxBodyBytes = 1 << 20

// PersistedHeader tells whether a mutation reached the blob store. "false"
// means the change is live in memory and waits for the flusher.
const PersistedHeader = "X-Persisted"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to status codes. Unknown errors are logged
// and reported as 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, d deps.Deps, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		d.Logger.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// applied handles the error of a mutation. An unsaved change still answers
// with its result, flagged through PersistedHeader; any other error is
// written and applied returns false.
func applied(w http.ResponseWriter, r *http.Request, d deps.Deps, err error) bool {
	switch {
	case err == nil:
		w.Header().Set(PersistedHeader, "true")
		return true
	case notes.IsUnsaved(err):
		w.Header().Set(PersistedHeader, "false")
		return true
	default:
		writeError(w, r, d, err)
		return false
	}
}

func statusFor(err error) int {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, transcript.ErrDraftNotFound), errors.Is(err, transcript.ErrClosed):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnsupportedCapability):
		return http.StatusNotImplemented
	case errors.Is(err, ai.ErrDisabled):
		return http.StatusServiceUnavailable
	case domain.IsService(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into v. Malformed bodies are
// validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &domain.ValidationError{Field: "body", Reason: "empty request body"}
		}
		return &domain.ValidationError{Field: "body", Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}
