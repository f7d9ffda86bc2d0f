// Package transcript turns speech recognition output into note drafts.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/smartnote/internal/domain"
)

// Fragment is one recognition result. Interim fragments are previews that a
// later fragment replaces; final fragments are committed text. Seq, when
// non-zero, must increase across final fragments and lets a draft drop
// redelivered ones. Registry.Push requires it on finals.
type Fragment struct {
	Seq   uint64 `json:"seq,omitempty"`
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// Source emits fragments for a recognition locale until ctx is done, then
// closes the channel.
type Source interface {
	Listen(ctx context.Context, locale string) (<-chan Fragment, error)
}

// Pusher is implemented by sources that are fed from outside the process.
type Pusher interface {
	Push(ctx context.Context, f Fragment) error
}

var ErrClosed = errors.New("transcript source closed")

// SupportedLocale reports whether locale belongs to a supported language.
func SupportedLocale(locale string) bool {
	for _, l := range domain.Languages() {
		if l.Locale() == locale {
			return true
		}
	}
	return false
}

// ChannelSource is a Source fed through Push, typically by a browser
// recognizer relaying its results. It serves a single listener.
type ChannelSource struct {
	mu        sync.Mutex
	ch        chan Fragment
	listening bool
	closed    bool
}

func NewChannelSource(buffer int) *ChannelSource {
	return &ChannelSource{ch: make(chan Fragment, buffer)}
}

func (c *ChannelSource) Listen(ctx context.Context, locale string) (<-chan Fragment, error) {
	if !SupportedLocale(locale) {
		return nil, fmt.Errorf("locale %q: %w", locale, domain.ErrUnsupportedCapability)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listening || c.closed {
		return nil, errors.New("transcript source already in use")
	}
	c.listening = true

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		defer c.mu.Unlock()
		c.closed = true
		close(c.ch)
	}()

	return c.ch, nil
}

// Push delivers a fragment to the listener, waiting for buffer space.
func (c *ChannelSource) Push(ctx context.Context, f Fragment) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || !c.listening {
		return ErrClosed
	}
	select {
	case c.ch <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unsupported is the Source used where no recognizer is available.
type Unsupported struct{}

func (Unsupported) Listen(context.Context, string) (<-chan Fragment, error) {
	return nil, fmt.Errorf("speech recognition: %w", domain.ErrUnsupportedCapability)
}
