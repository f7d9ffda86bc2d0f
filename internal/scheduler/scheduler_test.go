package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/smartnote/internal/domain"
	"github.com/MrSnakeDoc/smartnote/internal/logger"
	"github.com/MrSnakeDoc/smartnote/internal/notes"
	"github.com/MrSnakeDoc/smartnote/internal/store"
	"github.com/MrSnakeDoc/smartnote/internal/transcript"
)

type flakyBlobs struct {
	*store.Memory
	mu   sync.Mutex
	fail bool
}

func (f *flakyBlobs) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func (f *flakyBlobs) Set(ctx context.Context, key string, data []byte) error {
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return errors.New("write refused")
	}
	return f.Memory.Set(ctx, key, data)
}

func TestFlusher_RetriesDirtyStore(t *testing.T) {
	log := logger.New("error", false)
	blobs := &flakyBlobs{Memory: store.NewMemory(), fail: true}
	s := notes.NewStore(blobs)

	s.Create(domain.NoteContent{Title: "t", Body: "b"}, "", false)
	if err := s.Persist(context.Background()); err == nil {
		t.Fatal("Persist() should fail while writes are refused")
	}

	trigger := make(chan struct{})
	f := NewFlusher(s, log, time.Hour, trigger)
	if err := f.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	blobs.setFail(false)
	trigger <- struct{}{}

	deadline := time.Now().Add(time.Second)
	for s.Dirty() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.Dirty() {
		t.Error("store still dirty after manual flush")
	}
	if _, ok, _ := blobs.Get(context.Background(), store.KeyNotes); !ok {
		t.Error("notes blob not written")
	}

	f.Stop()
}

func TestFlusher_StopFlushes(t *testing.T) {
	log := logger.New("error", false)
	blobs := store.NewMemory()
	s := notes.NewStore(blobs)

	f := NewFlusher(s, log, time.Hour, nil)
	if err := f.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	s.Create(domain.NoteContent{Title: "t", Body: "b"}, "", false)
	f.Stop()

	if s.Dirty() {
		t.Error("Stop() should flush outstanding changes")
	}
}

func TestFlusher_FlushCleanIsNoop(t *testing.T) {
	s := notes.NewStore(&flakyBlobs{Memory: store.NewMemory(), fail: true})
	f := NewFlusher(s, logger.New("error", false), time.Hour, nil)

	if err := f.Flush(context.Background()); err != nil {
		t.Errorf("Flush() on a clean store = %v, want nil", err)
	}
}

func TestDraftReaper_Reap(t *testing.T) {
	log := logger.New("error", false)
	drafts := transcript.NewPushRegistry(1)

	if _, err := drafts.Start(domain.English, ""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	dr := NewDraftReaper(drafts, log, time.Hour, 30*time.Minute)

	if n := dr.Reap(); n != 0 {
		t.Errorf("Reap() = %d right after start, want 0", n)
	}

	dr.now = func() time.Time { return time.Now().Add(time.Hour) }
	if n := dr.Reap(); n != 1 {
		t.Errorf("Reap() = %d after an hour, want 1", n)
	}
	if drafts.Count() != 0 {
		t.Errorf("Count() = %d, want 0", drafts.Count())
	}
}
