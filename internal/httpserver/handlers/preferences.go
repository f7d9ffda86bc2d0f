package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/smartnote/internal/domain"
	"github.com/MrSnakeDoc/smartnote/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartnote/internal/notes"
)

func GetPreferences(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Notes.Store().Preferences())
	}
}

type preferencesRequest struct {
	ViewMode       *string          `json:"viewMode,omitempty"`
	ActiveLanguage *domain.Language `json:"activeLanguage,omitempty"`
}

// UpdatePreferences applies the fields present in the body.
func UpdatePreferences(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req preferencesRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}

		var u notes.PreferencesUpdate
		if req.ViewMode != nil {
			mode, err := domain.ParseViewMode(*req.ViewMode)
			if err != nil {
				writeError(w, r, d, err)
				return
			}
			u.ViewMode = &mode
		}
		u.ActiveLanguage = req.ActiveLanguage

		prefs, err := d.Notes.UpdatePreferences(r.Context(), u)
		if !applied(w, r, d, err) {
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	}
}
