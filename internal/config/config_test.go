package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/smartnote/internal/domain"
)

// isolate points .env lookup at a missing file so the developer's own
// .env never leaks into a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("SMARTNOTE_ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg := Load()

	if cfg.ListenPort != ":8080" {
		t.Errorf("ListenPort = %q, want :8080", cfg.ListenPort)
	}
	if cfg.StoreBackend != StoreFile {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, StoreFile)
	}
	if cfg.AIProvider != ProviderNone {
		t.Errorf("AIProvider = %q, want %q", cfg.AIProvider, ProviderNone)
	}
	if cfg.DefaultLanguage != domain.Gujarati {
		t.Errorf("DefaultLanguage = %v, want gu", cfg.DefaultLanguage)
	}
	if cfg.DraftMaxIdle != 15*time.Minute {
		t.Errorf("DraftMaxIdle = %v, want 15m", cfg.DraftMaxIdle)
	}
	if !cfg.DictationEnabled {
		t.Error("DictationEnabled = false, want true")
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "SMARTNOTE_STORE=memory\nSMARTNOTE_DEFAULT_LANGUAGE=en\nSMARTNOTE_LISTEN_PORT=:9999\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("SMARTNOTE_ENV_FILE", path)
	// The real environment wins over the file.
	t.Setenv("SMARTNOTE_LISTEN_PORT", ":7000")

	// godotenv sets variables directly; clean them up after the test.
	t.Cleanup(func() {
		_ = os.Unsetenv("SMARTNOTE_STORE")
		_ = os.Unsetenv("SMARTNOTE_DEFAULT_LANGUAGE")
	})

	cfg := Load()

	if cfg.StoreBackend != StoreMemory {
		t.Errorf("StoreBackend = %q, want memory", cfg.StoreBackend)
	}
	if cfg.DefaultLanguage != domain.English {
		t.Errorf("DefaultLanguage = %v, want en", cfg.DefaultLanguage)
	}
	if cfg.ListenPort != ":7000" {
		t.Errorf("ListenPort = %q, want :7000", cfg.ListenPort)
	}
}

func TestLoadPanicsOnInvalidCombinations(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "unknown store",
			env:  map[string]string{"SMARTNOTE_STORE": "postgres"},
		},
		{
			name: "unknown provider",
			env:  map[string]string{"SMARTNOTE_AI_PROVIDER": "claude"},
		},
		{
			name: "openai without key",
			env:  map[string]string{"SMARTNOTE_AI_PROVIDER": "openai"},
		},
		{
			name: "gemini without key",
			env:  map[string]string{"SMARTNOTE_AI_PROVIDER": "gemini"},
		},
		{
			name: "redis password required but empty",
			env: map[string]string{
				"SMARTNOTE_STORE":                   "redis",
				"SMARTNOTE_REDIS_PASSWORD_REQUIRED": "true",
			},
		},
		{
			name: "bad default language",
			env:  map[string]string{"SMARTNOTE_DEFAULT_LANGUAGE": "fr"},
		},
		{
			name: "zero flush interval",
			env:  map[string]string{"SMARTNOTE_FLUSH_INTERVAL": "0s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			defer func() {
				if r := recover(); r == nil {
					t.Errorf("Load() should have panicked")
				}
			}()
			Load()
		})
	}
}

func TestRedacted(t *testing.T) {
	cfg := &Config{RedisPassword: "secret", OpenAIKey: "sk-1", GeminiKey: ""}
	r := cfg.Redacted()

	if r.RedisPassword != "***REDACTED***" || r.OpenAIKey != "***REDACTED***" {
		t.Errorf("Redacted() leaked secrets: %+v", r)
	}
	if r.GeminiKey != "" {
		t.Errorf("Redacted() GeminiKey = %q, want empty", r.GeminiKey)
	}
	if cfg.RedisPassword != "secret" {
		t.Error("Redacted() mutated the original config")
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "single", input: "127.0.0.1", expected: []string{"127.0.0.1"}},
		{name: "spaces and quotes", input: ` "10.0.0.0/8" , '192.168.1.1' ,, `, expected: []string{"10.0.0.0/8", "192.168.1.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitAndTrim(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("splitAndTrim() = %v, want %v", result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("splitAndTrim()[%d] = %v, want %v", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestMustLanguage(t *testing.T) {
	t.Setenv("TEST_LANG", "hi")
	if got := mustLanguage("TEST_LANG", domain.English); got != domain.Hindi {
		t.Errorf("mustLanguage() = %v, want hi", got)
	}
	if got := mustLanguage("TEST_LANG_MISSING", domain.English); got != domain.English {
		t.Errorf("mustLanguage() missing = %v, want en", got)
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{name: "true value", key: "TEST_BOOL", value: "true", def: false, expected: true},
		{name: "false value", key: "TEST_BOOL_FALSE", value: "false", def: true, expected: false},
		{name: "invalid value uses default", key: "TEST_BOOL_INVALID", value: "invalid", def: true, expected: true},
		{name: "missing variable uses default", key: "TEST_BOOL_MISSING", value: "", def: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}
