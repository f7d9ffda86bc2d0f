package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/smartnote/internal/logger"
)

// Persister is the part of the note store the flusher drives.
type Persister interface {
	Dirty() bool
	Persist(ctx context.Context) error
}

// Flusher retries persistence of a dirty note store, on a ticker or when
// triggered manually, and does a last flush on Stop.
type Flusher struct {
	store         Persister
	logger        logger.Logger
	interval      time.Duration
	timeout       time.Duration
	stopCh        chan struct{}
	doneCh        chan struct{}
	manualTrigger chan struct{}
}

// NewFlusher creates a new flusher. manualTrigger may be nil.
func NewFlusher(
	store Persister,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *Flusher {
	return &Flusher{
		store:         store,
		logger:        log,
		interval:      interval,
		timeout:       10 * time.Second,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic flush loop
func (f *Flusher) Start(ctx context.Context) error {
	ticker := time.NewTicker(f.interval)
	go func() {
		defer close(f.doneCh)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				f.flush(ctx)
			case <-f.manualTrigger:
				f.logger.Info("manual flush triggered")
				f.flush(ctx)
			case <-f.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop ends the loop and writes any outstanding changes.
func (f *Flusher) Stop() {
	close(f.stopCh)
	<-f.doneCh
	f.flush(context.Background())
}

// Flush persists the store if it is dirty and reports the outcome.
func (f *Flusher) Flush(ctx context.Context) error {
	if !f.store.Dirty() {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
	defer cancel()
	return f.store.Persist(ctx)
}

func (f *Flusher) flush(ctx context.Context) {
	if !f.store.Dirty() {
		f.logger.Debug("nothing to flush")
		return
	}
	if err := f.Flush(ctx); err != nil {
		f.logger.Error("flush failed", logger.Error(err))
		return
	}
	f.logger.Info("flushed pending changes")
}
