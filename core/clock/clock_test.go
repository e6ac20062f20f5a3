package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeAfterFunc(t *testing.T) {
	c := NewFake(time.Date(2024, 5, 6, 7, 0, 0, 0, time.UTC))

	var fired []string
	c.AfterFunc(2*time.Minute, func() { fired = append(fired, "b") })
	c.AfterFunc(time.Minute, func() { fired = append(fired, "a") })
	stopped := c.AfterFunc(90*time.Second, func() { fired = append(fired, "x") })
	assert.True(t, stopped.Stop())
	assert.False(t, stopped.Stop())

	c.Advance(30 * time.Second)
	assert.Empty(t, fired)

	c.Advance(2 * time.Minute)
	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, 0, c.Pending())
}

func TestSourceAlignsToSecondBoundary(t *testing.T) {
	start := time.Date(2024, 5, 6, 7, 29, 58, 400_000_000, time.UTC)
	c := NewFake(start)
	src := NewSource(c, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go src.Run(ctx)

	require.Eventually(t, func() bool { return c.Pending() == 1 }, time.Second, time.Millisecond)
	c.Advance(600 * time.Millisecond)

	select {
	case tick := <-src.Ticks():
		assert.Equal(t, time.Date(2024, 5, 6, 7, 29, 59, 0, time.UTC), tick)
	case <-time.After(time.Second):
		t.Fatal("no tick delivered")
	}
}

func TestSourceDropsStaleTicks(t *testing.T) {
	c := NewFake(time.Date(2024, 5, 6, 7, 0, 0, 0, time.UTC))
	src := NewSource(c, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go src.Run(ctx)

	// Nobody reads for three ticks; only the newest must be waiting.
	for i := 0; i < 3; i++ {
		require.Eventually(t, func() bool { return c.Pending() == 1 }, time.Second, time.Millisecond)
		c.Advance(time.Second)
	}
	require.Eventually(t, func() bool { return c.Pending() == 1 }, time.Second, time.Millisecond)

	assert.Equal(t, c.Now(), <-src.Ticks())
	select {
	case tick := <-src.Ticks():
		t.Fatalf("unexpected queued tick %s", tick)
	default:
	}
}

func TestRealClockLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	assert.Equal(t, loc, NewReal(loc).Now().Location())
	assert.Equal(t, time.Local, NewReal(nil).Location)
}
