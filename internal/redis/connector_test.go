package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/smartnote/internal/logger"
)

func testOptions(addr string) ConnectOptions {
	return ConnectOptions{
		Addr:           addr,
		DialTimeout:    200 * time.Millisecond,
		ReadTimeout:    200 * time.Millisecond,
		WriteTimeout:   200 * time.Millisecond,
		PoolSize:       2,
		ConnectTimeout: 500 * time.Millisecond,
		RetryInterval:  50 * time.Millisecond,
		MaxWait:        100 * time.Millisecond,
		PingTimeout:    100 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestNew_Connects(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := New(context.Background(), testOptions(mr.Addr()), logger.New("error", false))
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()).Err())
}

func TestNew_TimesOut(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	start := time.Now()
	_, err = New(context.Background(), testOptions(addr), logger.New("error", false))
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestNew_InvalidOptions(t *testing.T) {
	opts := testOptions("localhost:0")
	opts.ConnectTimeout = 0

	_, err := New(context.Background(), opts, logger.New("error", false))
	assert.Error(t, err)
}

func TestConnectOptionsValidate(t *testing.T) {
	opts := testOptions("localhost:0")
	require.NoError(t, opts.Validate())

	opts.MaxWait = 0
	opts.WarnThreshold = -1
	err := opts.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MaxWait")
	assert.Contains(t, err.Error(), "WarnThreshold")
}

func TestBackoffIsCapped(t *testing.T) {
	b := backoff{next: time.Second, max: 3 * time.Second}
	got := []time.Duration{b.step(), b.step(), b.step(), b.step()}
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}
	assert.Equal(t, want, got)
}
