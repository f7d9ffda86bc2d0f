package transcript

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/smartnote/internal/domain"
)

// ErrDraftNotFound is returned for unknown or stopped draft ids.
var ErrDraftNotFound = errors.New("draft not found")

// Snapshot is a read-only view of a dictation session.
type Snapshot struct {
	ID        string          `json:"id"`
	Language  domain.Language `json:"language"`
	Locale    string          `json:"locale"`
	Body      string          `json:"body"`
	Interim   string          `json:"interim"`
	Finals    int             `json:"finals"`
	StartedAt time.Time       `json:"startedAt"`
	LastSeen  time.Time       `json:"lastSeen"`
}

type session struct {
	id        string
	lang      domain.Language
	source    Source
	draft     *Draft
	cancel    context.CancelFunc
	done      chan struct{}
	startedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *session) seen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *session) stop() {
	s.cancel()
	<-s.done
}

// Registry tracks the dictation sessions in progress.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[string]*session
	newSource func() Source
	now       func() time.Time
}

// NewRegistry creates a registry that opens one Source per draft.
func NewRegistry(newSource func() Source) *Registry {
	return &Registry{
		sessions:  make(map[string]*session),
		newSource: newSource,
		now:       time.Now,
	}
}

// NewPushRegistry is a Registry whose drafts are fed through Push.
func NewPushRegistry(buffer int) *Registry {
	return NewRegistry(func() Source { return NewChannelSource(buffer) })
}

// Start opens a source for lang's recognition locale and begins a draft
// seeded with initial. It fails with domain.ErrUnsupportedCapability when
// recognition is unavailable.
func (r *Registry) Start(lang domain.Language, initial string) (Snapshot, error) {
	if !lang.Valid() {
		return Snapshot{}, &domain.ValidationError{Field: "language", Reason: "unsupported language"}
	}

	src := r.newSource()
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := src.Listen(ctx, lang.Locale())
	if err != nil {
		cancel()
		return Snapshot{}, err
	}

	now := r.now()
	s := &session{
		id:        uuid.NewString(),
		lang:      lang,
		source:    src,
		draft:     NewDraft(initial),
		cancel:    cancel,
		done:      make(chan struct{}),
		startedAt: now,
		lastSeen:  now,
	}
	go func() {
		defer close(s.done)
		s.draft.Consume(ch)
	}()

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	return r.snapshot(s), nil
}

func (r *Registry) lookup(id string) (*session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrDraftNotFound)
	}
	return s, nil
}

// Push relays fragments, in order, to the draft's source. Pushed finals
// must carry a non-zero Seq so a retried request cannot append them twice;
// a batch with an unsequenced final is rejected as a whole.
func (r *Registry) Push(ctx context.Context, id string, fragments []Fragment) error {
	for i, f := range fragments {
		if f.Final && f.Seq == 0 {
			return &domain.ValidationError{Field: fmt.Sprintf("fragments[%d].seq", i), Reason: "required on final fragments"}
		}
	}
	s, err := r.lookup(id)
	if err != nil {
		return err
	}
	p, ok := s.source.(Pusher)
	if !ok {
		return fmt.Errorf("draft %s does not accept fragments: %w", id, domain.ErrUnsupportedCapability)
	}
	s.touch(r.now())
	for _, f := range fragments {
		if err := p.Push(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the current state of a draft.
func (r *Registry) Get(id string) (Snapshot, error) {
	s, err := r.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	return r.snapshot(s), nil
}

// Stop closes the source, waits for queued fragments to be applied and
// returns the final state.
func (r *Registry) Stop(id string) (Snapshot, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return Snapshot{}, fmt.Errorf("%s: %w", id, ErrDraftNotFound)
	}

	s.stop()
	return r.snapshot(s), nil
}

// StopIdle stops drafts without activity for longer than maxIdle and returns
// their ids.
func (r *Registry) StopIdle(now time.Time, maxIdle time.Duration) []string {
	r.mu.Lock()
	var idle []*session
	for id, s := range r.sessions {
		if now.Sub(s.seen()) > maxIdle {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	ids := make([]string, 0, len(idle))
	for _, s := range idle {
		s.stop()
		ids = append(ids, s.id)
	}
	return ids
}

// StopAll ends every draft.
func (r *Registry) StopAll() {
	r.mu.Lock()
	all := make([]*session, 0, len(r.sessions))
	for id, s := range r.sessions {
		all = append(all, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, s := range all {
		s.stop()
	}
}

// Count returns the number of active drafts
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) snapshot(s *session) Snapshot {
	body, interim, finals := s.draft.State()
	return Snapshot{
		ID:        s.id,
		Language:  s.lang,
		Locale:    s.lang.Locale(),
		Body:      body,
		Interim:   interim,
		Finals:    finals,
		StartedAt: s.startedAt,
		LastSeen:  s.seen(),
	}
}
