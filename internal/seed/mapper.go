package seed

import (
	"fmt"
	"time"

	"github.com/MrSnakeDoc/smartnote/internal/domain"
)

// Mapper converts seed entries to domain notes
type Mapper struct {
	defaultColor string
}

// NewMapper creates a mapper that fills empty colors with defaultColor
func NewMapper(defaultColor string) *Mapper {
	return &Mapper{defaultColor: defaultColor}
}

// MapNotes converts a seed file into notes, in file order.
// Any invalid entry fails the whole file.
func (m *Mapper) MapNotes(f File) ([]domain.Note, error) {
	notes := make([]domain.Note, 0, len(f.Notes))
	seen := make(map[string]bool, len(f.Notes))

	for i, e := range f.Notes {
		n, err := m.mapNote(e)
		if err != nil {
			return nil, fmt.Errorf("seed note %d: %w", i, err)
		}
		if seen[n.ID] {
			return nil, fmt.Errorf("seed note %d: duplicate id %s", i, n.ID)
		}
		seen[n.ID] = true
		notes = append(notes, n)
	}

	return notes, nil
}

func (m *Mapper) mapNote(e NoteEntry) (domain.Note, error) {
	created, err := time.Parse(time.RFC3339, e.CreatedAt)
	if err != nil {
		return domain.Note{}, fmt.Errorf("invalid createdAt: %w", err)
	}
	updated := created
	if e.UpdatedAt != "" {
		if updated, err = time.Parse(time.RFC3339, e.UpdatedAt); err != nil {
			return domain.Note{}, fmt.Errorf("invalid updatedAt: %w", err)
		}
	}

	var content domain.Content
	for code, c := range e.Content {
		lang, err := domain.ParseLanguage(code)
		if err != nil {
			return domain.Note{}, err
		}
		content.Set(lang, domain.NoteContent{Title: c.Title, Body: c.Body})
	}

	color := e.Color
	if color == "" {
		color = m.defaultColor
	}

	n := domain.Note{
		ID:        e.ID,
		Content:   content,
		Color:     color,
		IsPinned:  e.Pinned,
		CreatedAt: created.UTC(),
		UpdatedAt: updated.UTC(),
	}
	if err := n.Validate(); err != nil {
		return domain.Note{}, err
	}
	return n, nil
}
