package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartnote/internal/domain"
	"github.com/MrSnakeDoc/smartnote/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartnote/internal/logger"
	"github.com/MrSnakeDoc/smartnote/internal/transcript"
)

type startDraftRequest struct {
	Language *domain.Language `json:"language,omitempty"`
	Initial  string           `json:"initial,omitempty"`
}

// StartDraft opens a dictation draft for the requested language, or the
// active one. An empty body is accepted.
func StartDraft(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Drafts == nil {
			writeError(w, r, d, domain.ErrUnsupportedCapability)
			return
		}

		var req startDraftRequest
		if r.ContentLength != 0 {
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, r, d, err)
				return
			}
		}

		lang := d.Notes.Store().Preferences().ActiveLanguage
		if req.Language != nil {
			lang = *req.Language
		}

		snap, err := d.Drafts.Start(lang, req.Initial)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		d.Logger.Debug("draft started",
			logger.String("draft_id", snap.ID),
			logger.String("locale", snap.Locale))
		writeJSON(w, http.StatusCreated, snap)
	}
}

func GetDraft(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Drafts == nil {
			writeError(w, r, d, domain.ErrUnsupportedCapability)
			return
		}
		snap, err := d.Drafts.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// StopDraft ends the draft and returns its final text.
func StopDraft(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Drafts == nil {
			writeError(w, r, d, domain.ErrUnsupportedCapability)
			return
		}
		snap, err := d.Drafts.Stop(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

type pushFragmentsRequest struct {
	Fragments []transcript.Fragment `json:"fragments"`
}

// PushFragments queues recognizer output for the draft and returns 202; the
// draft applies it asynchronously.
func PushFragments(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Drafts == nil {
			writeError(w, r, d, domain.ErrUnsupportedCapability)
			return
		}

		var req pushFragmentsRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}

		// The draft outlives the request; a client disconnect must not drop
		// fragments half way.
		ctx := context.WithoutCancel(r.Context())
		if err := d.Drafts.Push(ctx, chi.URLParam(r, "id"), req.Fragments); err != nil {
			writeError(w, r, d, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}
