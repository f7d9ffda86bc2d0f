package notes

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/MrSnakeDoc/smartnote/internal/domain"
)

const (
	MaxTitleLength = 100

	// MinSummaryLength is the shortest body worth summarizing.
	MinSummaryLength = 50
)

var palette = []string{
	"#F0F8F0",
	"#B2E4A8",
	"#A8B778",
	"#F3E5AB",
	"#FFDDC1",
	"#FFC0CB",
	"#C1D1FF",
	"#B2F7E8",
}

// DefaultColor is used when a note is saved without a color.
var DefaultColor = palette[0]

// Palette returns the selectable note colors.
func Palette() []string {
	return slices.Clone(palette)
}

// NormalizeColor maps a blank color to DefaultColor and rejects anything
// outside the palette. Matching ignores case; an accepted color is returned
// exactly as given, since the tag is carried through unchanged.
func NormalizeColor(color string) (string, error) {
	if strings.TrimSpace(color) == "" {
		return DefaultColor, nil
	}
	if !slices.ContainsFunc(palette, func(c string) bool { return strings.EqualFold(c, color) }) {
		return "", &domain.ValidationError{Field: "color", Reason: fmt.Sprintf("%q is not in the palette", color)}
	}
	return color, nil
}

// ValidateContent enforces the editor rules: a title of 1..100 characters
// and a non-empty body.
func ValidateContent(c domain.NoteContent) error {
	n := utf8.RuneCountInString(c.Title)
	switch {
	case n == 0:
		return &domain.ValidationError{Field: "title", Reason: "required"}
	case n > MaxTitleLength:
		return &domain.ValidationError{Field: "title", Reason: fmt.Sprintf("must be at most %d characters", MaxTitleLength)}
	}
	if c.Body == "" {
		return &domain.ValidationError{Field: "body", Reason: "required"}
	}
	return nil
}
