package transcript

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/smartnote/internal/domain"
)

func TestRegistry_PushAndStop(t *testing.T) {
	r := NewPushRegistry(8)
	ctx := context.Background()

	snap, err := r.Start(domain.Gujarati, "")
	require.NoError(t, err)
	assert.Equal(t, "gu-IN", snap.Locale)
	assert.Equal(t, 1, r.Count())

	require.NoError(t, r.Push(ctx, snap.ID, []Fragment{
		{Text: "નમ"},
		{Seq: 1, Text: "નમસ્તે ", Final: true},
		{Seq: 1, Text: "નમસ્તે ", Final: true},
		{Text: "દુ"},
	}))

	assert.Eventually(t, func() bool {
		got, err := r.Get(snap.ID)
		return err == nil && got.Interim == "દુ"
	}, time.Second, 5*time.Millisecond)

	final, err := r.Stop(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "નમસ્તે ", final.Body)
	assert.Equal(t, 1, final.Finals)
	assert.Zero(t, r.Count())

	_, err = r.Get(snap.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
	assert.ErrorIs(t, r.Push(ctx, snap.ID, []Fragment{{Text: "late"}}), ErrDraftNotFound)
}

func TestRegistry_PushRequiresSeqOnFinals(t *testing.T) {
	r := NewPushRegistry(8)
	defer r.StopAll()

	snap, err := r.Start(domain.English, "")
	require.NoError(t, err)

	err = r.Push(context.Background(), snap.ID, []Fragment{
		{Seq: 1, Text: "kept? ", Final: true},
		{Text: "retry me", Final: true},
	})
	assert.True(t, domain.IsValidation(err), "Push() error = %v", err)

	// The rejected batch applies nothing.
	require.NoError(t, r.Push(context.Background(), snap.ID, []Fragment{{Text: "pre"}}))
	assert.Eventually(t, func() bool {
		got, err := r.Get(snap.ID)
		return err == nil && got.Interim == "pre"
	}, time.Second, 5*time.Millisecond)
	got, err := r.Get(snap.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Body)
	assert.Zero(t, got.Finals)
}

func TestRegistry_Unsupported(t *testing.T) {
	r := NewRegistry(func() Source { return Unsupported{} })

	_, err := r.Start(domain.English, "")
	assert.ErrorIs(t, err, domain.ErrUnsupportedCapability)
	assert.Zero(t, r.Count())

	_, err = NewPushRegistry(1).Start(domain.Language(0), "")
	assert.True(t, domain.IsValidation(err))
}

func TestRegistry_StopIdle(t *testing.T) {
	r := NewPushRegistry(1)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return base }

	old, err := r.Start(domain.English, "")
	require.NoError(t, err)

	r.now = func() time.Time { return base.Add(time.Hour) }
	fresh, err := r.Start(domain.Hindi, "")
	require.NoError(t, err)

	stopped := r.StopIdle(base.Add(90*time.Minute), 45*time.Minute)
	assert.Equal(t, []string{old.ID}, stopped)

	_, err = r.Get(fresh.ID)
	assert.NoError(t, err)

	r.StopAll()
	assert.Zero(t, r.Count())
}

func TestChannelSource(t *testing.T) {
	src := NewChannelSource(1)

	_, err := src.Listen(context.Background(), "fr-FR")
	assert.ErrorIs(t, err, domain.ErrUnsupportedCapability)

	assert.ErrorIs(t, src.Push(context.Background(), Fragment{Text: "x"}), ErrClosed)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := src.Listen(ctx, "en-US")
	require.NoError(t, err)

	_, err = src.Listen(ctx, "en-US")
	assert.Error(t, err, "a source serves one listener")

	require.NoError(t, src.Push(context.Background(), Fragment{Text: "a", Final: true}))
	assert.Equal(t, Fragment{Text: "a", Final: true}, <-ch)

	cancel()
	_, open := <-ch
	assert.False(t, open, "channel should close when the listener context ends")
	assert.ErrorIs(t, src.Push(context.Background(), Fragment{Text: "b"}), ErrClosed)
}
