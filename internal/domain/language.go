package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Language is one of the closed set of languages a note can be written in.
// The zero value is not a valid language.
type Language uint8

const (
	Gujarati Language = iota + 1
	Hindi
	English

	// numLanguages sizes the per-note content table.
	numLanguages = int(English)
)

// DefaultLanguage is the active language of a fresh installation.
const DefaultLanguage = Gujarati

type languageInfo struct {
	code   string
	name   string
	locale string
}

var languages = [numLanguages + 1]languageInfo{
	Gujarati: {code: "gu", name: "Gujarati", locale: "gu-IN"},
	Hindi:    {code: "hi", name: "Hindi", locale: "hi-IN"},
	English:  {code: "en", name: "English", locale: "en-US"},
}

// Languages returns every supported language in table order.
func Languages() []Language {
	return []Language{Gujarati, Hindi, English}
}

// ParseLanguage resolves a language code ("gu", "hi", "en"), case-insensitively.
func ParseLanguage(code string) (Language, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, l := range Languages() {
		if languages[l].code == code {
			return l, nil
		}
	}
	return 0, &ValidationError{Field: "language", Reason: fmt.Sprintf("unsupported language %q", code)}
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	return l >= Gujarati && int(l) <= numLanguages
}

// Code is the short code used as a JSON key and in the API.
func (l Language) Code() string {
	if !l.Valid() {
		return ""
	}
	return languages[l].code
}

// Name is the English display name, used in translation prompts.
func (l Language) Name() string {
	if !l.Valid() {
		return ""
	}
	return languages[l].name
}

// Locale is the speech recognition locale for the language.
func (l Language) Locale() string {
	if !l.Valid() {
		return ""
	}
	return languages[l].locale
}

func (l Language) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Language(%d)", uint8(l))
	}
	return l.Code()
}

func (l Language) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid language %d", uint8(l))
	}
	return []byte(l.Code()), nil
}

func (l *Language) UnmarshalText(b []byte) error {
	parsed, err := ParseLanguage(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ViewMode is the persisted grid/list display preference.
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// ParseViewMode accepts "grid" or "list".
func ParseViewMode(s string) (ViewMode, error) {
	switch m := ViewMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ViewGrid, ViewList:
		return m, nil
	default:
		return "", &ValidationError{Field: "viewMode", Reason: fmt.Sprintf("unsupported view mode %q", s)}
	}
}

// Preferences is the small per-user preference blob, persisted apart from notes.
type Preferences struct {
	ViewMode       ViewMode `json:"viewMode"`
	ActiveLanguage Language `json:"activeLanguage"`
}

// DefaultPreferences is used when no preference blob exists or it cannot be decoded.
func DefaultPreferences() Preferences {
	return Preferences{ViewMode: ViewGrid, ActiveLanguage: DefaultLanguage}
}

// UnmarshalJSON rejects unknown view modes so a damaged blob falls back to defaults.
func (p *Preferences) UnmarshalJSON(b []byte) error {
	var raw struct {
		ViewMode       string   `json:"viewMode"`
		ActiveLanguage Language `json:"activeLanguage"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	mode, err := ParseViewMode(raw.ViewMode)
	if err != nil {
		return err
	}
	if !raw.ActiveLanguage.Valid() {
		return &ValidationError{Field: "activeLanguage", Reason: "missing"}
	}
	p.ViewMode = mode
	p.ActiveLanguage = raw.ActiveLanguage
	return nil
}
