package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct{ calls atomic.Int32 }

func (c *countingRefresher) Refresh() int {
	c.calls.Add(1)
	return 0
}

func TestNew_EmptySpecDisables(t *testing.T) {
	s, err := New("", nil, &countingRefresher{})
	require.NoError(t, err)
	assert.Nil(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Run(ctx)
}

func TestNew_InvalidSpec(t *testing.T) {
	_, err := New("not a cron", time.UTC, &countingRefresher{})
	assert.Error(t, err)
}

func TestRun_InvokesRefresh(t *testing.T) {
	r := &countingRefresher{}
	s, err := New("@every 20ms", time.UTC, r)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.calls.Load() > 0 }, 3*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
