package store

import (
	"context"
	"testing"
)

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, err := m.Get(ctx, KeyNotes); ok || err != nil {
		t.Fatalf("Get() on empty store = ok %v, err %v; want absent", ok, err)
	}

	payload := []byte(`[{"id":"1"}]`)
	if err := m.Set(ctx, KeyNotes, payload); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// The store must not alias the caller's buffer.
	payload[0] = 'X'

	got, ok, err := m.Get(ctx, KeyNotes)
	if err != nil || !ok {
		t.Fatalf("Get() = ok %v, err %v", ok, err)
	}
	if string(got) != `[{"id":"1"}]` {
		t.Errorf("Get() = %s, want original payload", got)
	}

	got[0] = 'Y'
	again, _, _ := m.Get(ctx, KeyNotes)
	if again[0] != '[' {
		t.Error("Get() returned an aliased buffer")
	}
}

func TestMemory_Keys(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Set(ctx, KeyPreferences, []byte(`{}`))
	_ = m.Set(ctx, KeyNotes, []byte(`[]`))

	keys, err := m.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if len(keys) != 2 || keys[0] != KeyNotes || keys[1] != KeyPreferences {
		t.Errorf("Keys() = %v, want [%s %s]", keys, KeyNotes, KeyPreferences)
	}
}
