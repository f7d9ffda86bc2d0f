// Package ai talks to hosted language models for note summaries,
// translations and the SmartBot assistant.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/smartnote/internal/domain"
)

// Role is the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one turn of a chat history.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Translation is a translated note title and body.
type Translation struct {
	Title string `json:"translatedTitle"`
	Body  string `json:"translatedBody"`
}

// Gateway is the contract the note service depends on. Every failure of the
// remote model is reported as a *domain.ServiceError; bad input is a
// *domain.ValidationError.
type Gateway interface {
	Summarize(ctx context.Context, body string) (string, error)
	Translate(ctx context.Context, title, body string, target domain.Language) (Translation, error)
	Chat(ctx context.Context, history []Message) (string, error)
}

// Request is a single completion call to a provider.
type Request struct {
	System   string
	Messages []Message
	// JSON asks the provider for a JSON object response.
	JSON bool
}

// Provider is a hosted model backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrMalformedOutput is returned when a model answer does not match the
// expected response shape.
var ErrMalformedOutput = errors.New("malformed model output")

// PromptGateway implements Gateway on top of a Provider: it builds the
// prompts, then decodes and checks the structured answers.
type PromptGateway struct {
	provider Provider
}

func NewGateway(p Provider) *PromptGateway {
	return &PromptGateway{provider: p}
}

type summaryOutput struct {
	Summary string `json:"summary"`
}

type chatOutput struct {
	Response string `json:"response"`
}

func (g *PromptGateway) Summarize(ctx context.Context, body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", &domain.ValidationError{Field: "note", Reason: "required"}
	}

	var out summaryOutput
	err := g.completeJSON(ctx, "summarize", Request{
		System:   summarizeSystemPrompt,
		Messages: []Message{{Role: RoleUser, Text: summarizeUserPrompt(body)}},
		JSON:     true,
	}, &out)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Summary) == "" {
		return "", serviceErr("summarize", fmt.Errorf("%w: empty summary", ErrMalformedOutput))
	}
	return strings.TrimSpace(out.Summary), nil
}

func (g *PromptGateway) Translate(ctx context.Context, title, body string, target domain.Language) (Translation, error) {
	if !target.Valid() {
		return Translation{}, &domain.ValidationError{Field: "targetLanguage", Reason: "unsupported language"}
	}
	if title == "" && body == "" {
		return Translation{}, &domain.ValidationError{Field: "note", Reason: "nothing to translate"}
	}

	var out Translation
	err := g.completeJSON(ctx, "translate", Request{
		System:   translateSystemPrompt,
		Messages: []Message{{Role: RoleUser, Text: translateUserPrompt(title, body, target)}},
		JSON:     true,
	}, &out)
	if err != nil {
		return Translation{}, err
	}
	if out.Title == "" || out.Body == "" {
		return Translation{}, serviceErr("translate", fmt.Errorf("%w: missing translated title or body", ErrMalformedOutput))
	}
	return out, nil
}

func (g *PromptGateway) Chat(ctx context.Context, history []Message) (string, error) {
	if err := ValidateHistory(history); err != nil {
		return "", err
	}

	var out chatOutput
	err := g.completeJSON(ctx, "chat", Request{
		System:   chatSystemPrompt,
		Messages: history,
		JSON:     true,
	}, &out)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Response) == "" {
		return "", serviceErr("chat", fmt.Errorf("%w: empty response", ErrMalformedOutput))
	}
	return out.Response, nil
}

func (g *PromptGateway) completeJSON(ctx context.Context, op string, req Request, out any) error {
	raw, err := g.provider.Complete(ctx, req)
	if err != nil {
		return serviceErr(op, fmt.Errorf("%s: %w", g.provider.Name(), err))
	}
	if err := json.Unmarshal(stripCodeFence(raw), out); err != nil {
		return serviceErr(op, fmt.Errorf("%w: %v", ErrMalformedOutput, err))
	}
	return nil
}

// ValidateHistory checks roles and that the history ends with a user turn.
func ValidateHistory(history []Message) error {
	if len(history) == 0 {
		return &domain.ValidationError{Field: "history", Reason: "empty"}
	}
	for i, m := range history {
		if m.Role != RoleUser && m.Role != RoleModel {
			return &domain.ValidationError{Field: "history", Reason: fmt.Sprintf("message %d has unknown role %q", i, m.Role)}
		}
	}
	last := history[len(history)-1]
	if last.Role != RoleUser || strings.TrimSpace(last.Text) == "" {
		return &domain.ValidationError{Field: "history", Reason: "must end with a non-empty user message"}
	}
	return nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add.
func stripCodeFence(s string) []byte {
	b := bytes.TrimSpace([]byte(s))
	b = bytes.TrimPrefix(b, []byte("```json"))
	b = bytes.TrimPrefix(b, []byte("```"))
	b = bytes.TrimSuffix(b, []byte("```"))
	return bytes.TrimSpace(b)
}

func serviceErr(op string, err error) error {
	return &domain.ServiceError{Op: op, Err: err}
}
