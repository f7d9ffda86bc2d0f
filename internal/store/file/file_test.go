package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")

	s, err := New(dir)
	require.NoError(t, err)

	_, ok, err := s.Get(ctx, "notes")
	require.NoError(t, err)
	assert.False(t, ok, "missing file should be absent")

	require.NoError(t, s.Set(ctx, "notes", []byte(`[]`)))
	require.NoError(t, s.Set(ctx, "notes", []byte(`[{"id":"1"}]`)))

	got, ok, err := s.Get(ctx, "notes")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "notes.json", entries[0].Name())

	assert.NoError(t, s.Ping(ctx))
}

func TestStore_Keys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "preferences", []byte(`{}`)))
	require.NoError(t, s.Set(ctx, "notes", []byte(`[]`)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, tempFilePrefix+"123"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("x"), 0o644))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes", "preferences"}, keys)
}

func TestStore_RejectsPathKeys(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../escape", "a/b", ""} {
		err := s.Set(context.Background(), key, []byte("x"))
		assert.Error(t, err, "key %q", key)
	}
}

func TestStore_CanceledContext(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Set(ctx, "notes", []byte("x")), context.Canceled)
}
