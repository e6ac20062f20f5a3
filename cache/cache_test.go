package cache

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"VibeWake/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiredKeyIsPerMinute(t *testing.T) {
	a := time.Date(2024, 5, 6, 7, 30, 0, 0, time.UTC)
	b := time.Date(2024, 5, 6, 7, 30, 59, 0, time.UTC)
	c := time.Date(2024, 5, 6, 7, 31, 0, 0, time.UTC)

	assert.Equal(t, "vibewake:fired:x:202405060730", FiredKey("x", a))
	assert.Equal(t, FiredKey("x", a), FiredKey("x", b))
	assert.NotEqual(t, FiredKey("x", a), FiredKey("x", c))
	assert.NotEqual(t, FiredKey("x", a), FiredKey("y", a))
}

type writes struct {
	mu    sync.Mutex
	got   [][]byte
	block chan struct{}
}

func (w *writes) write(ctx context.Context, data []byte) error {
	if w.block != nil {
		<-w.block
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.got = append(w.got, data)
	return nil
}

func (w *writes) modes() []model.SessionMode {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []model.SessionMode
	for _, d := range w.got {
		var st model.SessionState
		if json.Unmarshal(d, &st) == nil {
			out = append(out, st.Mode)
		}
	}
	return out
}

func TestSessionCacheKeepsLatest(t *testing.T) {
	w := &writes{block: make(chan struct{})}
	c := newSessionCache(w.write)
	ctx, cancel := context.WithCancel(context.Background())
	go c.Run(ctx)

	c.SessionChanged(model.SessionState{Mode: model.ModeRinging})
	// The worker is stuck in the first write; these two collapse into one.
	time.Sleep(20 * time.Millisecond)
	c.SessionChanged(model.SessionState{Mode: model.ModeSnoozePending})
	c.SessionChanged(model.SessionState{Mode: model.ModeIdle})
	close(w.block)

	require.Eventually(t, func() bool { return len(w.modes()) == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []model.SessionMode{model.ModeRinging, model.ModeIdle}, w.modes())

	cancel()
	<-c.Done()
}

func TestSessionCacheFlushesOnShutdown(t *testing.T) {
	w := &writes{}
	c := newSessionCache(w.write)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c.SessionChanged(model.SessionState{Mode: model.ModeIdle})
	c.Run(ctx)
	assert.Len(t, w.modes(), 1)
}
