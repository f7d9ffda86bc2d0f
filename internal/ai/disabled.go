package ai

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/smartnote/internal/domain"
)

// ErrDisabled is wrapped by every Disabled call.
var ErrDisabled = errors.New("no AI provider configured")

// Disabled is the Gateway used when no provider is configured. Every call
// fails as an unavailable service.
type Disabled struct{}

func (Disabled) Summarize(context.Context, string) (string, error) {
	return "", serviceErr("summarize", ErrDisabled)
}

func (Disabled) Translate(context.Context, string, string, domain.Language) (Translation, error) {
	return Translation{}, serviceErr("translate", ErrDisabled)
}

func (Disabled) Chat(context.Context, []Message) (string, error) {
	return "", serviceErr("chat", ErrDisabled)
}
