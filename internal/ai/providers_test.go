package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGemini_Complete(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))

		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"response\":"},{"text":"\"hi\"}"}]}}]}`))
	}))
	defer srv.Close()

	g := NewGemini(GeminiConfig{APIKey: "secret", Model: "test-model", BaseURL: srv.URL, Timeout: time.Second})
	out, err := g.Complete(context.Background(), Request{
		System:   "sys",
		Messages: []Message{{Role: RoleModel, Text: Greeting}, {Role: RoleUser, Text: "hello"}},
		JSON:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"response":"hi"}`, out)

	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "sys", got.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "application/json", got.GenerationConfig.ResponseMimeType)
	require.Len(t, got.Contents, 2)
	assert.Equal(t, "model", got.Contents[0].Role)
	assert.Equal(t, "user", got.Contents[1].Role)
}

func TestGemini_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGemini(GeminiConfig{BaseURL: srv.URL, Timeout: time.Second})
	_, err := g.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Text: "x"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAI_Complete(t *testing.T) {
	var got struct {
		Model          string `json:"model"`
		ResponseFormat struct {
			Type string `json:"type"`
		} `json:"response_format"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"summary\":\"ok\"}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	o := NewOpenAI(OpenAIConfig{APIKey: "key", Model: "gpt-test", BaseURL: srv.URL + "/v1", Timeout: time.Second})
	g := NewGateway(o)

	summary, err := g.Summarize(context.Background(), "some note body")
	require.NoError(t, err)
	assert.Equal(t, "ok", summary)

	assert.Equal(t, "gpt-test", got.Model)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
}

func TestOpenAI_MapsModelRole(t *testing.T) {
	var roles []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, m := range req.Messages {
			roles = append(roles, m.Role)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"response\":\"fine\"}"}}]}`))
	}))
	defer srv.Close()

	g := NewGateway(NewOpenAI(OpenAIConfig{APIKey: "k", BaseURL: srv.URL, Timeout: time.Second}))
	reply, err := g.Chat(context.Background(), []Message{
		{Role: RoleModel, Text: Greeting},
		{Role: RoleUser, Text: "how are you?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "fine", reply)
	assert.Equal(t, []string{"system", "assistant", "user"}, roles)
}
