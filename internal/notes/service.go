package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MrSnakeDoc/smartnote/internal/ai"
	"github.com/MrSnakeDoc/smartnote/internal/domain"
	"github.com/MrSnakeDoc/smartnote/internal/logger"
)

const defaultPersistTimeout = 5 * time.Second

// Service runs user actions against the Store: it validates input, calls
// the AI gateway outside the store lock and persists after each mutation.
// A failed write is returned as an *UnsavedError next to the valid result;
// the edit stays in memory and the flusher retries it.
type Service struct {
	store          *Store
	ai             ai.Gateway
	logger         logger.Logger
	persistTimeout time.Duration
}

func NewService(store *Store, gateway ai.Gateway, log logger.Logger) *Service {
	if gateway == nil {
		gateway = ai.Disabled{}
	}
	return &Service{
		store:          store,
		ai:             gateway,
		logger:         log,
		persistTimeout: defaultPersistTimeout,
	}
}

// UnsavedError reports a change that was applied in memory but could not
// be written to the blob store. Results returned with it are valid.
type UnsavedError struct {
	Err error
}

func (e *UnsavedError) Error() string {
	return "change kept in memory, not persisted: " + e.Err.Error()
}

func (e *UnsavedError) Unwrap() error { return e.Err }

// IsUnsaved reports whether err wraps an *UnsavedError.
func IsUnsaved(err error) bool {
	var u *UnsavedError
	return errors.As(err, &u)
}

// Store exposes the underlying store for read paths.
func (s *Service) Store() *Store { return s.store }

// SaveInput is an editor submission. An empty ID creates a note.
type SaveInput struct {
	ID       string
	Title    string
	Body     string
	Color    string
	IsPinned bool
}

// Save creates a note when in.ID is empty, else replaces the active-language
// content of the existing note and applies a non-empty color. IsPinned is
// only read on create; use TogglePin afterwards.
func (s *Service) Save(ctx context.Context, in SaveInput) (n domain.Note, created bool, err error) {
	content := domain.NoteContent{Title: in.Title, Body: in.Body}
	if err := ValidateContent(content); err != nil {
		return domain.Note{}, false, err
	}
	color, err := NormalizeColor(in.Color)
	if err != nil {
		return domain.Note{}, false, err
	}

	if in.ID == "" {
		n = s.store.Create(content, color, in.IsPinned)
		s.logger.Info("note created", logger.String("note_id", n.ID))
		return n, true, s.persist(ctx)
	}

	n, err = s.store.Update(in.ID, content)
	if err != nil {
		return domain.Note{}, false, err
	}
	if strings.TrimSpace(in.Color) != "" && color != n.Color {
		if n, err = s.store.Recolor(in.ID, color); err != nil {
			return domain.Note{}, false, err
		}
	}
	s.logger.Debug("note updated", logger.String("note_id", n.ID))
	return n, false, s.persist(ctx)
}

// Delete removes a note; unknown ids are a no-op. The only error is an
// *UnsavedError.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !s.store.Delete(id) {
		return nil
	}
	s.logger.Info("note deleted", logger.String("note_id", id))
	return s.persist(ctx)
}

func (s *Service) TogglePin(ctx context.Context, id string) (domain.Note, error) {
	n, err := s.store.TogglePin(id)
	if err != nil {
		return domain.Note{}, err
	}
	return n, s.persist(ctx)
}

// Summarize asks the gateway for a summary of the note's active-language
// body. Notes are never modified.
func (s *Service) Summarize(ctx context.Context, id string) (string, error) {
	n, ok := s.store.Get(id)
	if !ok {
		return "", fmt.Errorf("summarize %s: %w", id, domain.ErrNotFound)
	}
	lang := s.store.Preferences().ActiveLanguage
	c, ok := n.Content.Get(lang)
	if !ok {
		return "", &domain.ValidationError{Field: "language", Reason: fmt.Sprintf("note has no %s content", lang)}
	}
	if utf8.RuneCountInString(c.Body) < MinSummaryLength {
		return "", &domain.ValidationError{Field: "body", Reason: fmt.Sprintf("needs at least %d characters to summarize", MinSummaryLength)}
	}

	summary, err := s.ai.Summarize(ctx, c.Body)
	if err != nil {
		s.logger.Warn("summarize failed", logger.String("note_id", id), logger.Error(err))
		return "", err
	}
	return summary, nil
}

// Translate translates the note's active-language content into target and
// merges it. merged is false when the note already had target content; no
// gateway call is made then. A note deleted while the call was in flight
// yields domain.ErrNotFound and the result is dropped.
func (s *Service) Translate(ctx context.Context, id string, target domain.Language) (n domain.Note, merged bool, err error) {
	if !target.Valid() {
		return domain.Note{}, false, &domain.ValidationError{Field: "targetLanguage", Reason: "unsupported language"}
	}
	n, ok := s.store.Get(id)
	if !ok {
		return domain.Note{}, false, fmt.Errorf("translate %s: %w", id, domain.ErrNotFound)
	}
	if n.Content.Has(target) {
		return n, false, nil
	}
	source := s.store.Preferences().ActiveLanguage
	c, ok := n.Content.Get(source)
	if !ok {
		return domain.Note{}, false, &domain.ValidationError{Field: "language", Reason: fmt.Sprintf("note has no %s content", source)}
	}

	tr, err := s.ai.Translate(ctx, c.Title, c.Body, target)
	if err != nil {
		s.logger.Warn("translate failed",
			logger.String("note_id", id),
			logger.String("target", target.Code()),
			logger.Error(err))
		return domain.Note{}, false, err
	}

	n, merged = s.store.MergeTranslation(id, target, domain.NoteContent{Title: tr.Title, Body: tr.Body})
	if n.ID == "" {
		s.logger.Info("translation discarded, note deleted", logger.String("note_id", id))
		return domain.Note{}, false, fmt.Errorf("translate %s: %w", id, domain.ErrNotFound)
	}
	if merged {
		return n, true, s.persist(ctx)
	}
	return n, false, nil
}

// Chat forwards the conversation to the assistant.
func (s *Service) Chat(ctx context.Context, history []ai.Message) (string, error) {
	reply, err := s.ai.Chat(ctx, history)
	if err != nil && domain.IsService(err) {
		s.logger.Warn("chat failed", logger.Error(err))
	}
	return reply, err
}

// PreferencesUpdate carries optional preference changes.
type PreferencesUpdate struct {
	ViewMode       *domain.ViewMode
	ActiveLanguage *domain.Language
}

func (s *Service) UpdatePreferences(ctx context.Context, u PreferencesUpdate) (domain.Preferences, error) {
	if u.ViewMode != nil {
		if err := s.store.SetViewMode(*u.ViewMode); err != nil {
			return domain.Preferences{}, err
		}
	}
	if u.ActiveLanguage != nil {
		if err := s.store.SetActiveLanguage(*u.ActiveLanguage); err != nil {
			return domain.Preferences{}, err
		}
	}
	return s.store.Preferences(), s.persist(ctx)
}

// persist writes outstanding changes. The request context only bounds the
// wait; a canceled client must not abort the write. Failures come back as
// *UnsavedError and never undo the change.
func (s *Service) persist(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()

	if err := s.store.Persist(ctx); err != nil {
		s.logger.Warn("persist failed, changes kept in memory", logger.Error(err))
		return &UnsavedError{Err: err}
	}
	return nil
}
