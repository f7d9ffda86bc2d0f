package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/smartnote/internal/logger"
)

const (
	// DefaultDraftMaxIdle is how long a dictation draft may go without fragments
	DefaultDraftMaxIdle = 15 * time.Minute
)

// IdleStopper is the part of the draft registry the reaper drives.
type IdleStopper interface {
	StopIdle(now time.Time, maxIdle time.Duration) []string
}

// DraftReaper stops dictation drafts that were abandoned by their client
type DraftReaper struct {
	drafts   IdleStopper
	logger   logger.Logger
	interval time.Duration
	maxIdle  time.Duration
	now      func() time.Time
	stopCh   chan struct{}
}

// NewDraftReaper creates a new draft reaper
func NewDraftReaper(
	drafts IdleStopper,
	log logger.Logger,
	interval time.Duration,
	maxIdle time.Duration,
) *DraftReaper {
	if maxIdle == 0 {
		maxIdle = DefaultDraftMaxIdle
	}

	return &DraftReaper{
		drafts:   drafts,
		logger:   log,
		interval: interval,
		maxIdle:  maxIdle,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic reaping
func (dr *DraftReaper) Start(ctx context.Context) error {
	ticker := time.NewTicker(dr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				dr.Reap()
			case <-dr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reaper
func (dr *DraftReaper) Stop() {
	close(dr.stopCh)
}

// Reap stops idle drafts and returns how many were stopped
func (dr *DraftReaper) Reap() int {
	stopped := dr.drafts.StopIdle(dr.now(), dr.maxIdle)
	if len(stopped) == 0 {
		dr.logger.Debug("no idle drafts")
		return 0
	}

	for _, id := range stopped {
		dr.logger.Info("stopped idle draft",
			logger.String("draft_id", id),
			logger.Duration("max_idle", dr.maxIdle))
	}
	return len(stopped)
}
