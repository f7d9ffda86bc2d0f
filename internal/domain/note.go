package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// NoteContent is the language-specific payload of a note.
type NoteContent struct {
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
}

type contentSlot struct {
	present bool
	value   NoteContent
}

// Content holds at most one NoteContent per supported language.
// It is a fixed table with presence bits; the zero value is empty.
// Content is a value type, copying it copies every entry.
type Content struct {
	slots [numLanguages]contentSlot
}

// ContentOf builds a table holding a single entry.
func ContentOf(lang Language, c NoteContent) Content {
	var out Content
	out.Set(lang, c)
	return out
}

// Get returns the entry for lang and whether it is present.
func (c *Content) Get(lang Language) (NoteContent, bool) {
	if !lang.Valid() {
		return NoteContent{}, false
	}
	s := c.slots[lang-1]
	return s.value, s.present
}

// Has reports whether an entry exists for lang.
func (c *Content) Has(lang Language) bool {
	_, ok := c.Get(lang)
	return ok
}

// Set stores or replaces the entry for lang. Invalid languages are ignored.
func (c *Content) Set(lang Language, v NoteContent) {
	if !lang.Valid() {
		return
	}
	c.slots[lang-1] = contentSlot{present: true, value: v}
}

// Languages lists the languages that have an entry, in table order.
func (c *Content) Languages() []Language {
	out := make([]Language, 0, numLanguages)
	for _, l := range Languages() {
		if c.slots[l-1].present {
			out = append(out, l)
		}
	}
	return out
}

// Len is the number of present entries.
func (c *Content) Len() int {
	n := 0
	for _, s := range c.slots {
		if s.present {
			n++
		}
	}
	return n
}

// MarshalJSON encodes the table as {"gu": {...}, "en": {...}}.
func (c Content) MarshalJSON() ([]byte, error) {
	m := make(map[string]NoteContent, numLanguages)
	for _, l := range c.Languages() {
		m[l.Code()] = c.slots[l-1].value
	}
	return json.Marshal(m)
}

func (c *Content) UnmarshalJSON(b []byte) error {
	var m map[string]NoteContent
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	var out Content
	for code, v := range m {
		lang, err := ParseLanguage(code)
		if err != nil {
			return err
		}
		out.Set(lang, v)
	}
	*c = out
	return nil
}

// Note is a user-authored item with one or more language variants.
type Note struct {
	ID        string    `json:"id"`
	Content   Content   `json:"content"`
	Color     string    `json:"color"`
	IsPinned  bool      `json:"isPinned"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks the structural invariants of a decoded note.
func (n *Note) Validate() error {
	if n.ID == "" {
		return &ValidationError{Field: "id", Reason: "empty"}
	}
	if n.Content.Len() == 0 {
		return &ValidationError{Field: "content", Reason: fmt.Sprintf("note %s has no language entries", n.ID)}
	}
	if n.CreatedAt.IsZero() {
		return &ValidationError{Field: "createdAt", Reason: "missing"}
	}
	if n.UpdatedAt.Before(n.CreatedAt) {
		return &ValidationError{Field: "updatedAt", Reason: "before createdAt"}
	}
	return nil
}

// Touch moves UpdatedAt to now, never behind CreatedAt.
func (n *Note) Touch(now time.Time) {
	if now.Before(n.CreatedAt) {
		now = n.CreatedAt
	}
	n.UpdatedAt = now
}
