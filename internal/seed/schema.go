package seed

// File is the top-level structure of a seed file
type File struct {
	Notes []NoteEntry `yaml:"notes"`
}

// NoteEntry is one seed note. Content is keyed by language code.
// UpdatedAt defaults to CreatedAt.
type NoteEntry struct {
	ID        string                  `yaml:"id"`
	Color     string                  `yaml:"color,omitempty"`
	Pinned    bool                    `yaml:"pinned,omitempty"`
	CreatedAt string                  `yaml:"createdAt"`
	UpdatedAt string                  `yaml:"updatedAt,omitempty"`
	Content   map[string]ContentEntry `yaml:"content"`
}

type ContentEntry struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}
