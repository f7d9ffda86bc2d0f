package domain

import (
	"iter"
	"slices"
	"strings"
	"time"
)

// NoteView is a display-ready note for one language.
type NoteView struct {
	ID        string      `json:"id"`
	Language  Language    `json:"language"`
	Content   NoteContent `json:"content"`
	Languages []Language  `json:"languages"`
	Color     string      `json:"color"`
	IsPinned  bool        `json:"isPinned"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Project filters notes to those written in lang whose title or body contains
// query (case-insensitive), then orders them pinned-first and by descending
// UpdatedAt. Equal keys keep the input order.
func Project(notes []Note, query string, lang Language) []NoteView {
	q := strings.ToLower(strings.TrimSpace(query))

	views := make([]NoteView, 0, len(notes))
	for i := range notes {
		n := &notes[i]
		c, ok := n.Content.Get(lang)
		if !ok {
			continue
		}
		if !matches(c, q) {
			continue
		}
		views = append(views, NoteView{
			ID:        n.ID,
			Language:  lang,
			Content:   c,
			Languages: n.Content.Languages(),
			Color:     n.Color,
			IsPinned:  n.IsPinned,
			CreatedAt: n.CreatedAt,
			UpdatedAt: n.UpdatedAt,
		})
	}

	slices.SortStableFunc(views, compareViews)
	return views
}

// ProjectSeq is Project as a restartable sequence. Each iteration recomputes
// the projection from notes.
func ProjectSeq(notes []Note, query string, lang Language) iter.Seq[NoteView] {
	return func(yield func(NoteView) bool) {
		for _, v := range Project(notes, query, lang) {
			if !yield(v) {
				return
			}
		}
	}
}

func matches(c NoteContent, lowerQuery string) bool {
	if lowerQuery == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Title), lowerQuery) ||
		strings.Contains(strings.ToLower(c.Body), lowerQuery)
}

func compareViews(a, b NoteView) int {
	if a.IsPinned != b.IsPinned {
		if a.IsPinned {
			return -1
		}
		return 1
	}
	// Newest first.
	return b.UpdatedAt.Compare(a.UpdatedAt)
}
