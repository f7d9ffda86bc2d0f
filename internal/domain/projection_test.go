package domain

import (
	"slices"
	"testing"
	"time"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func note(id string, pinned bool, updated time.Time, lang Language, title, body string) Note {
	return Note{
		ID:        id,
		Content:   ContentOf(lang, NoteContent{Title: title, Body: body}),
		Color:     "#F0F8F0",
		IsPinned:  pinned,
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func ids(views []NoteView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func TestProjectOrdering(t *testing.T) {
	t1 := at("2023-01-01T00:00:00Z")
	t2 := at("2023-02-01T00:00:00Z")
	t3 := at("2023-03-01T00:00:00Z")

	a := note("A", true, t1, English, "a", "")
	b := note("B", false, t3, English, "b", "")
	c := note("C", true, t2, English, "c", "")

	want := []string{"C", "A", "B"}

	orders := map[string][]Note{
		"abc": {a, b, c},
		"bca": {b, c, a},
		"cab": {c, a, b},
		"bac": {b, a, c},
	}

	for name, in := range orders {
		t.Run(name, func(t *testing.T) {
			got := ids(Project(in, "", English))
			if !slices.Equal(got, want) {
				t.Errorf("Project() order = %v, want %v", got, want)
			}
		})
	}
}

func TestProjectPinnedBeforeNewer(t *testing.T) {
	// A pinned note beats a more recently updated unpinned one.
	x := note("X", true, at("2023-01-01T00:00:00Z"), English, "x", "")
	y := note("Y", false, at("2023-06-01T00:00:00Z"), English, "y", "")

	got := ids(Project([]Note{y, x}, "", English))
	if !slices.Equal(got, []string{"X", "Y"}) {
		t.Errorf("Project() = %v, want [X Y]", got)
	}
}

func TestProjectStableOnTies(t *testing.T) {
	ts := at("2023-05-05T12:00:00Z")
	in := []Note{
		note("1", false, ts, English, "one", ""),
		note("2", false, ts, English, "two", ""),
		note("3", true, ts, English, "three", ""),
		note("4", false, ts, English, "four", ""),
	}

	got := ids(Project(in, "", English))
	want := []string{"3", "1", "2", "4"}
	if !slices.Equal(got, want) {
		t.Errorf("Project() = %v, want %v", got, want)
	}
}

func TestProjectFiltering(t *testing.T) {
	shopping := note("s", false, at("2023-01-01T00:00:00Z"), English, "Shopping", "milk, eggs")

	tests := []struct {
		name  string
		query string
		lang  Language
		want  []string
	}{
		{name: "body match", query: "milk", lang: English, want: []string{"s"}},
		{name: "title match ignores case", query: "SHOP", lang: English, want: []string{"s"}},
		{name: "empty query", query: "", lang: English, want: []string{"s"}},
		{name: "whitespace query", query: "   ", lang: English, want: []string{"s"}},
		{name: "no match", query: "bread", lang: English, want: []string{}},
		{name: "missing language", query: "milk", lang: Hindi, want: []string{}},
		{name: "missing language empty query", query: "", lang: Hindi, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Project([]Note{shopping}, tt.query, tt.lang))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Project(%q, %s) = %v, want %v", tt.query, tt.lang, got, tt.want)
			}
		})
	}
}

func TestProjectOtherLanguageMatchIsHidden(t *testing.T) {
	n := note("n", false, at("2023-01-01T00:00:00Z"), English, "Shopping", "milk")
	n.Content.Set(Hindi, NoteContent{Title: "खरीदारी", Body: "दूध"})

	// "milk" only appears in the English entry.
	if got := Project([]Note{n}, "milk", Hindi); len(got) != 0 {
		t.Errorf("Project(milk, hi) = %v, want empty", ids(got))
	}

	got := Project([]Note{n}, "दूध", Hindi)
	if len(got) != 1 {
		t.Fatalf("Project(दूध, hi) returned %d views, want 1", len(got))
	}
	if got[0].Content.Title != "खरीदारी" {
		t.Errorf("view title = %q, want the Hindi title", got[0].Content.Title)
	}
	if !slices.Equal(got[0].Languages, []Language{Hindi, English}) {
		t.Errorf("view languages = %v, want [hi en]", got[0].Languages)
	}
}

func TestProjectDoesNotReorderInput(t *testing.T) {
	in := []Note{
		note("old", false, at("2022-01-01T00:00:00Z"), English, "a", ""),
		note("new", false, at("2024-01-01T00:00:00Z"), English, "b", ""),
	}
	_ = Project(in, "", English)
	if in[0].ID != "old" || in[1].ID != "new" {
		t.Errorf("Project() mutated its input order: %s, %s", in[0].ID, in[1].ID)
	}
}

func TestProjectSeqRestartable(t *testing.T) {
	in := []Note{
		note("a", false, at("2023-01-01T00:00:00Z"), Gujarati, "a", ""),
		note("b", true, at("2022-01-01T00:00:00Z"), Gujarati, "b", ""),
	}
	seq := ProjectSeq(in, "", Gujarati)

	for round := 0; round < 2; round++ {
		var got []string
		for v := range seq {
			got = append(got, v.ID)
		}
		if !slices.Equal(got, []string{"b", "a"}) {
			t.Errorf("round %d: ProjectSeq() = %v, want [b a]", round, got)
		}
	}

	// Early break must not panic.
	for range seq {
		break
	}
}
