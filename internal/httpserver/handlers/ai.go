package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartnote/internal/ai"
	"github.com/MrSnakeDoc/smartnote/internal/domain"
	"github.com/MrSnakeDoc/smartnote/internal/httpserver/deps"
)

type summaryResponse struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
}

func Summarize(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		summary, err := d.Notes.Summarize(r.Context(), id)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, summaryResponse{ID: id, Summary: summary})
	}
}

type translateRequest struct {
	TargetLanguage domain.Language `json:"targetLanguage"`
}

type translateResponse struct {
	Note   domain.Note `json:"note"`
	Merged bool        `json:"merged"`
}

func Translate(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req translateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}

		n, merged, err := d.Notes.Translate(r.Context(), chi.URLParam(r, "id"), req.TargetLanguage)
		if !applied(w, r, d, err) {
			return
		}
		writeJSON(w, http.StatusOK, translateResponse{Note: n, Merged: merged})
	}
}

type chatRequest struct {
	History []ai.Message `json:"history"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chat answers the last user turn. An empty history gets the greeting
// without a provider call.
func Chat(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}
		if len(req.History) == 0 {
			writeJSON(w, http.StatusOK, chatResponse{Response: ai.Greeting})
			return
		}

		reply, err := d.Notes.Chat(r.Context(), req.History)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, chatResponse{Response: reply})
	}
}
