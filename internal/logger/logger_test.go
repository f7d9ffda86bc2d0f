package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		if parseLevel(lvl) == nil {
			t.Errorf("parseLevel(%q) = nil, want a level", lvl)
		}
	}
	if parseLevel("verbose") != nil {
		t.Error("parseLevel(verbose) should be nil")
	}
}

func TestNewWithOptions_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smartnote.log")

	log := NewWithOptions(Options{Level: "info", File: path})
	log.With(String("component", "test")).Info("hello", Int("n", 1), Error(errors.New("boom")))
	log.Debug("filtered out")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	out := string(data)
	for _, want := range []string{`"msg":"hello"`, `"component":"test"`, `"n":1`, `"error":"boom"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log file missing %s: %s", want, out)
		}
	}
	if strings.Contains(out, "filtered out") {
		t.Error("debug line written at info level")
	}
}
