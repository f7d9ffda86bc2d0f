// Package notes owns the authoritative note collection and the user's
// display preferences. Every mutation goes through Store, which hands out
// value snapshots only.
package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MrSnakeDoc/smartnote/internal/domain"
	"github.com/MrSnakeDoc/smartnote/internal/store"
)

// Origin tells where Rehydrate found the notes it loaded.
type Origin string

const (
	OriginBlob Origin = "blob"
	OriginSeed Origin = "seed"
)

// Store is the in-memory note collection, guarded by a RWMutex.
// Collection order is newest-created first and has no display meaning.
type Store struct {
	mu    sync.RWMutex
	notes []domain.Note
	prefs domain.Preferences

	// Mutation counters; a blob is dirty while its saved counter lags.
	notesVersion uint64
	prefsVersion uint64
	notesSaved   uint64
	prefsSaved   uint64
	lastPersist  time.Time

	// Set when Rehydrate could not read a blob. That blob is never written
	// until a later read of it succeeds.
	notesUnread bool
	prefsUnread bool

	persistMu sync.Mutex

	blobs    store.BlobStore
	ids      IDGenerator
	now      func() time.Time
	seeds    []domain.Note
	defaults domain.Preferences
}

// ErrUnread is returned by Persist while a blob that failed to load is
// protected from being overwritten.
var ErrUnread = errors.New("persisted blob not read yet")

type Option func(*Store)

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSeed sets the notes loaded when no persisted collection exists.
func WithSeed(seed []domain.Note) Option {
	return func(s *Store) { s.seeds = slices.Clone(seed) }
}

// WithDefaultPreferences sets the preferences used before any are saved.
func WithDefaultPreferences(p domain.Preferences) Option {
	return func(s *Store) {
		s.defaults = p
		s.prefs = p
	}
}

// NewStore creates an empty store persisting through blobs.
func NewStore(blobs store.BlobStore, opts ...Option) *Store {
	s := &Store{
		blobs:    blobs,
		ids:      UUIDGenerator{},
		now:      time.Now,
		prefs:    domain.DefaultPreferences(),
		defaults: domain.DefaultPreferences(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) clock() time.Time {
	return s.now().UTC()
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.notes, func(n domain.Note) bool { return n.ID == id })
}

// Create stores content under the active language as a new note and
// prepends it to the collection.
func (s *Store) Create(content domain.NoteContent, color string, isPinned bool) domain.Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	id := s.ids.NewID()
	for s.indexOf(id) >= 0 {
		id = s.ids.NewID()
	}

	n := domain.Note{
		ID:        id,
		Content:   domain.ContentOf(s.prefs.ActiveLanguage, content),
		Color:     color,
		IsPinned:  isPinned,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.notes = slices.Insert(s.notes, 0, n)
	s.notesVersion++
	return n
}

// Update replaces the active-language entry of a note. Other languages are
// left untouched. A missing id yields domain.ErrNotFound and no change.
func (s *Store) Update(id string, content domain.NoteContent) (domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Note{}, fmt.Errorf("update %s: %w", id, domain.ErrNotFound)
	}
	n := &s.notes[i]
	n.Content.Set(s.prefs.ActiveLanguage, content)
	n.Touch(s.clock())
	s.notesVersion++
	return *n, nil
}

// Delete removes a note. Unknown ids are ignored; removed reports whether
// anything changed.
func (s *Store) Delete(id string) (removed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.notes = slices.Delete(s.notes, i, i+1)
	s.notesVersion++
	return true
}

// TogglePin flips IsPinned. UpdatedAt is not touched.
func (s *Store) TogglePin(id string) (domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Note{}, fmt.Errorf("toggle pin %s: %w", id, domain.ErrNotFound)
	}
	n := &s.notes[i]
	n.IsPinned = !n.IsPinned
	s.notesVersion++
	return *n, nil
}

// Recolor changes the color tag. Like pinning, it is metadata and leaves
// UpdatedAt alone.
func (s *Store) Recolor(id, color string) (domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Note{}, fmt.Errorf("recolor %s: %w", id, domain.ErrNotFound)
	}
	n := &s.notes[i]
	if n.Color != color {
		n.Color = color
		s.notesVersion++
	}
	return *n, nil
}

// MergeTranslation adds content for lang unless the note already has an
// entry for it. merged is false when the note is gone, the language is
// already present or lang is invalid; the collection is unchanged then.
func (s *Store) MergeTranslation(id string, lang domain.Language, content domain.NoteContent) (n domain.Note, merged bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Note{}, false
	}
	cur := &s.notes[i]
	if !lang.Valid() || cur.Content.Has(lang) {
		return *cur, false
	}
	cur.Content.Set(lang, content)
	cur.Touch(s.clock())
	s.notesVersion++
	return *cur, true
}

// SetActiveLanguage changes the language used by Create, Update and views.
func (s *Store) SetActiveLanguage(lang domain.Language) error {
	if !lang.Valid() {
		return &domain.ValidationError{Field: "activeLanguage", Reason: "unsupported language"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prefs.ActiveLanguage != lang {
		s.prefs.ActiveLanguage = lang
		s.prefsVersion++
	}
	return nil
}

// SetViewMode stores the grid/list preference.
func (s *Store) SetViewMode(mode domain.ViewMode) error {
	if _, err := domain.ParseViewMode(string(mode)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prefs.ViewMode != mode {
		s.prefs.ViewMode = mode
		s.prefsVersion++
	}
	return nil
}

// Preferences returns the current preferences.
func (s *Store) Preferences() domain.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// Get returns a snapshot of one note.
func (s *Store) Get(id string) (domain.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Note{}, false
	}
	return s.notes[i], true
}

// Snapshot returns a copy of the whole collection in storage order.
func (s *Store) Snapshot() []domain.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notes)
}

// Count returns the number of notes
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// View projects the collection for lang. The zero Language means the
// active language.
func (s *Store) View(query string, lang domain.Language) []domain.NoteView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if lang == 0 {
		lang = s.prefs.ActiveLanguage
	}
	return domain.Project(s.notes, query, lang)
}

// Dirty reports whether some state has not reached the blob store yet, or
// a blob still has to be read back.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notesVersion != s.notesSaved || s.prefsVersion != s.prefsSaved ||
		s.notesUnread || s.prefsUnread
}

// Unread reports whether a persisted blob failed to load and is still
// protected from writes.
func (s *Store) Unread() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notesUnread || s.prefsUnread
}

// LastPersist returns the time of the last successful write, zero if none.
func (s *Store) LastPersist() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPersist
}

// Persist writes the notes and preferences blobs that changed since the
// last successful write. In-memory state is never touched on failure; the
// store stays dirty and the next call retries.
//
// A blob Rehydrate could not read is read again first. Until that succeeds
// it is not written and Persist reports ErrUnread inside a
// *domain.ServiceError.
func (s *Store) Persist(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.reread(ctx)

	s.mu.RLock()
	notes := slices.Clone(s.notes)
	prefs := s.prefs
	notesVersion, prefsVersion := s.notesVersion, s.prefsVersion
	notesUnread, prefsUnread := s.notesUnread, s.prefsUnread
	writeNotes := !notesUnread && notesVersion != s.notesSaved
	writePrefs := !prefsUnread && prefsVersion != s.prefsSaved
	s.mu.RUnlock()

	var errs []error
	if notesUnread {
		errs = append(errs, &domain.ServiceError{Op: "persist notes", Err: ErrUnread})
	}
	if prefsUnread {
		errs = append(errs, &domain.ServiceError{Op: "persist preferences", Err: ErrUnread})
	}

	if writeNotes {
		if notes == nil {
			notes = []domain.Note{}
		}
		data, err := json.Marshal(notes)
		if err != nil {
			return fmt.Errorf("failed to marshal notes: %w", err)
		}
		if err := s.blobs.Set(ctx, store.KeyNotes, data); err != nil {
			errs = append(errs, &domain.ServiceError{Op: "persist notes", Err: err})
			writeNotes = false
		}
	}

	if writePrefs {
		data, err := json.Marshal(prefs)
		if err != nil {
			return fmt.Errorf("failed to marshal preferences: %w", err)
		}
		if err := s.blobs.Set(ctx, store.KeyPreferences, data); err != nil {
			errs = append(errs, &domain.ServiceError{Op: "persist preferences", Err: err})
			writePrefs = false
		}
	}

	s.markSaved(writeNotes, notesVersion, writePrefs, prefsVersion)
	return errors.Join(errs...)
}

// reread retries the reads Rehydrate could not complete. A blob found now
// replaces what was loaded in its place, edits made since included: those
// were reported as unsaved. An absent or malformed blob keeps memory as is.
func (s *Store) reread(ctx context.Context) {
	s.mu.RLock()
	notesUnread, prefsUnread := s.notesUnread, s.prefsUnread
	s.mu.RUnlock()

	if notesUnread {
		if notes, found, err := s.readNotes(ctx); err == nil {
			s.mu.Lock()
			if found {
				s.notes = notes
				s.notesVersion++
				s.notesSaved = s.notesVersion
			}
			s.notesUnread = false
			s.mu.Unlock()
		}
	}

	if prefsUnread {
		if prefs, found, err := s.readPreferences(ctx); err == nil {
			s.mu.Lock()
			if found {
				s.prefs = prefs
				s.prefsVersion++
				s.prefsSaved = s.prefsVersion
			}
			s.prefsUnread = false
			s.mu.Unlock()
		}
	}
}

func (s *Store) markSaved(notes bool, notesVersion uint64, prefs bool, prefsVersion uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if notes {
		s.notesSaved = notesVersion
	}
	if prefs {
		s.prefsSaved = prefsVersion
	}
	if notes || prefs {
		s.lastPersist = s.clock()
	}
}

// Rehydrate replaces the in-memory state with the persisted blobs.
// An absent or malformed notes blob loads the seed set instead; absent or
// malformed preferences load the defaults. A blob store failure also falls
// back, and is returned as a *domain.ServiceError so the caller can report
// it. The blob that could not be read is then protected: Persist reads it
// again before it ever writes that key. Loaded state is considered clean.
func (s *Store) Rehydrate(ctx context.Context) (Origin, error) {
	var errs []error

	notes, found, notesErr := s.readNotes(ctx)
	origin := OriginBlob
	if !found {
		notes, origin = slices.Clone(s.seeds), OriginSeed
	}
	if notesErr != nil {
		errs = append(errs, notesErr)
	}

	prefs, found, prefsErr := s.readPreferences(ctx)
	if !found {
		prefs = s.defaults
	}
	if prefsErr != nil {
		errs = append(errs, prefsErr)
	}

	s.mu.Lock()
	s.notes = notes
	s.prefs = prefs
	s.notesSaved = s.notesVersion
	s.prefsSaved = s.prefsVersion
	s.notesUnread = notesErr != nil
	s.prefsUnread = prefsErr != nil
	s.mu.Unlock()

	if len(errs) > 0 {
		return origin, &domain.ServiceError{Op: "rehydrate", Err: errors.Join(errs...)}
	}
	return origin, nil
}

// readNotes reports found=false for an absent or malformed blob.
func (s *Store) readNotes(ctx context.Context) ([]domain.Note, bool, error) {
	data, ok, err := s.blobs.Get(ctx, store.KeyNotes)
	if err != nil || !ok {
		return nil, false, err
	}
	notes, err := DecodeNotes(data)
	if err != nil {
		// Malformed blobs are treated as absent.
		return nil, false, nil
	}
	return notes, true, nil
}

func (s *Store) readPreferences(ctx context.Context) (domain.Preferences, bool, error) {
	data, ok, err := s.blobs.Get(ctx, store.KeyPreferences)
	if err != nil || !ok {
		return domain.Preferences{}, false, err
	}
	var p domain.Preferences
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.Preferences{}, false, nil
	}
	return p, true, nil
}

// DecodeNotes parses a persisted notes blob and checks every note and the
// uniqueness of ids.
func DecodeNotes(data []byte) ([]domain.Note, error) {
	var notes []domain.Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notes: %w", err)
	}
	seen := make(map[string]struct{}, len(notes))
	for i := range notes {
		if err := notes[i].Validate(); err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
		if _, dup := seen[notes[i].ID]; dup {
			return nil, fmt.Errorf("duplicate note id %s", notes[i].ID)
		}
		seen[notes[i].ID] = struct{}{}
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	return notes, nil
}
