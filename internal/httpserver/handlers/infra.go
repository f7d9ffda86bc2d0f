package handlers

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/smartnote/internal/ai"
	"github.com/MrSnakeDoc/smartnote/internal/config"
	"github.com/MrSnakeDoc/smartnote/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartnote/internal/store"
)

type componentStatus struct {
	OK          bool     `json:"ok"`
	Mode        string   `json:"mode,omitempty"`
	NotesLoaded *int     `json:"notes_loaded,omitempty"`
	Dirty       *bool    `json:"dirty,omitempty"`
	LastPersist string   `json:"last_persist,omitempty"`
	Keys        []string `json:"keys,omitempty"`
	CacheSize   *int     `json:"cache_entries,omitempty"`
	Active      *int     `json:"active,omitempty"`
	Impact      string   `json:"impact,omitempty"`
	Error       string   `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := d.Notes.Store()

		count := st.Count()
		dirty := st.Dirty()
		lastPersist := "never"
		if t := st.LastPersist(); !t.IsZero() {
			lastPersist = t.Format("2006-01-02 15:04:05")
		}

		storage := componentStatus{
			OK:          !dirty,
			Mode:        d.StoreBackend,
			NotesLoaded: &count,
			Dirty:       &dirty,
			LastPersist: lastPersist,
		}
		switch err := pingBlobs(r.Context(), d); {
		case err != nil:
			storage.OK = false
			storage.Impact = "changes-kept-in-memory"
			storage.Error = err.Error()
		case st.Unread():
			storage.Impact = "persisted-blob-unread-writes-held"
		case dirty:
			storage.Impact = "flush-pending"
		}
		if keys, err := listBlobs(r.Context(), d); err == nil {
			storage.Keys = keys
		}

		aiStatus := componentStatus{OK: d.AIProvider != config.ProviderNone, Mode: d.AIProvider}
		if !aiStatus.OK {
			aiStatus.Impact = "summarize-translate-chat-disabled"
		}
		if c, ok := d.AI.(*ai.Cached); ok {
			n := c.Len()
			aiStatus.CacheSize = &n
		}

		dictation := componentStatus{OK: d.Drafts != nil, Mode: "push"}
		if d.Drafts != nil {
			active := d.Drafts.Count()
			dictation.Active = &active
		} else {
			dictation.Mode = "disabled"
		}

		components := map[string]componentStatus{
			"storage":   storage,
			"ai":        aiStatus,
			"dictation": dictation,
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	// Storage failures risk losing edits on restart.
	if s, ok := components["storage"]; ok && !s.OK {
		return "degraded"
	}
	if a, ok := components["ai"]; ok && !a.OK {
		return "notes-only"
	}
	return "full"
}

func listBlobs(ctx context.Context, d deps.Deps) ([]string, error) {
	l, ok := d.Blobs.(store.Lister)
	if !ok {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return l.Keys(ctx)
}
