package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartnote/internal/domain"
	"github.com/MrSnakeDoc/smartnote/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartnote/internal/notes"
)

type listNotesResponse struct {
	Language domain.Language   `json:"language"`
	Query    string            `json:"query"`
	Notes    []domain.NoteView `json:"notes"`
}

// ListNotes returns the display list: ?q= filters, ?lang= picks the language
// (active language when omitted).
func ListNotes(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")

		var lang domain.Language
		if raw := strings.TrimSpace(r.URL.Query().Get("lang")); raw != "" {
			l, err := domain.ParseLanguage(raw)
			if err != nil {
				writeError(w, r, d, &domain.ValidationError{Field: "lang", Reason: err.Error()})
				return
			}
			lang = l
		}

		st := d.Notes.Store()
		if lang == 0 {
			lang = st.Preferences().ActiveLanguage
		}
		writeJSON(w, http.StatusOK, listNotesResponse{
			Language: lang,
			Query:    query,
			Notes:    st.View(query, lang),
		})
	}
}

type saveNoteRequest struct {
	ID       string `json:"id,omitempty"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Color    string `json:"color,omitempty"`
	IsPinned bool   `json:"isPinned,omitempty"`
}

// SaveNote creates a note when the body has no id, else updates it.
func SaveNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveNoteRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}

		n, created, err := d.Notes.Save(r.Context(), notes.SaveInput{
			ID:       strings.TrimSpace(req.ID),
			Title:    req.Title,
			Body:     req.Body,
			Color:    req.Color,
			IsPinned: req.IsPinned,
		})
		if !applied(w, r, d, err) {
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeJSON(w, status, n)
	}
}

func GetNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, ok := d.Notes.Store().Get(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, r, d, domain.ErrNotFound)
			return
		}
		writeJSON(w, http.StatusOK, n)
	}
}

// DeleteNote answers 204 even for an unknown id.
func DeleteNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !applied(w, r, d, d.Notes.Delete(r.Context(), chi.URLParam(r, "id"))) {
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func TogglePin(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := d.Notes.TogglePin(r.Context(), chi.URLParam(r, "id"))
		if !applied(w, r, d, err) {
			return
		}
		writeJSON(w, http.StatusOK, n)
	}
}

type paletteResponse struct {
	Colors  []string `json:"colors"`
	Default string   `json:"default"`
}

// Palette lists the colors a note may be tagged with.
func Palette(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, paletteResponse{Colors: notes.Palette(), Default: notes.DefaultColor})
	}
}
