package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"VibeWake/core/alarm"
	"VibeWake/core/clock"
	"VibeWake/core/greeting"
	"VibeWake/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	states []model.SessionState
	ticks  int
}

func (r *recorder) SessionChanged(st model.SessionState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st)
}

func (r *recorder) Tick(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks++
}

func (r *recorder) modes() []model.SessionMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.SessionMode, 0, len(r.states))
	for _, st := range r.states {
		out = append(out, st.Mode)
	}
	return out
}

type stubLedger struct {
	claimed bool
	err     error
	calls   int
}

func (l *stubLedger) Claim(ctx context.Context, alarmID string, minute time.Time) (bool, error) {
	l.calls++
	return l.claimed, l.err
}

type engineHarness struct {
	engine *Engine
	store  *alarm.Store
	player *fakePlayer
	clock  *clock.Fake
	ticks  chan time.Time
	rec    *recorder
}

func newEngineHarness(t *testing.T, g Greeter, ledger FireLedger) *engineHarness {
	t.Helper()
	c := clock.NewFake(testStart)
	h := &engineHarness{
		store:  alarm.NewStore(c, nil),
		player: newFakePlayer(),
		clock:  c,
		ticks:  make(chan time.Time),
		rec:    &recorder{},
	}
	opts := Options{
		Clock:       c,
		Player:      h.player,
		Greeter:     g,
		Texts:       greeting.TextsFor("pt-BR"),
		SnoozeDelay: 5 * time.Minute,
	}
	if ledger != nil {
		opts.Ledger = ledger
	}
	h.engine = NewEngine(h.store, h.ticks, opts)
	h.engine.Observe(h.rec)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.engine.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return h
}

func (h *engineHarness) add(t *testing.T, a model.Alarm) {
	t.Helper()
	_, err := h.store.Add(context.Background(), a)
	require.NoError(t, err)
}

func (h *engineHarness) tick(at time.Time) {
	h.clock.Set(at)
	h.ticks <- at
}

func (h *engineHarness) state(t *testing.T) model.SessionState {
	t.Helper()
	st, err := h.engine.State()
	require.NoError(t, err)
	return st
}

func TestEngineFiresOncePerMinute(t *testing.T) {
	h := newEngineHarness(t, instantGreeter("Bom dia!"), nil)
	h.add(t, testAlarm("a", 7, 30))

	h.tick(time.Date(2024, 5, 6, 7, 29, 59, 0, time.UTC))
	assert.Equal(t, model.ModeIdle, h.state(t).Mode)

	h.tick(time.Date(2024, 5, 6, 7, 30, 0, 0, time.UTC))
	assert.Equal(t, model.ModeRinging, h.state(t).Mode)

	res, err := h.engine.Stop()
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, model.ModeIdle, res.State.Mode)

	h.tick(time.Date(2024, 5, 6, 7, 30, 45, 0, time.UTC))
	assert.Equal(t, model.ModeIdle, h.state(t).Mode, "must not refire within the same minute")
}

func TestEngineFiresAfterMissedSecondZero(t *testing.T) {
	h := newEngineHarness(t, instantGreeter("Bom dia!"), nil)
	h.add(t, testAlarm("a", 7, 30))

	h.tick(time.Date(2024, 5, 6, 7, 30, 3, 0, time.UTC))
	assert.Equal(t, model.ModeRinging, h.state(t).Mode)
}

func TestEngineFirstInsertedWins(t *testing.T) {
	h := newEngineHarness(t, instantGreeter("oi"), nil)
	h.add(t, testAlarm("A", 8, 0))
	h.add(t, testAlarm("B", 8, 0))

	h.tick(time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC))
	st := h.state(t)
	require.NotNil(t, st.ActiveAlarm)
	assert.Equal(t, "A", st.ActiveAlarm.ID)
}

func TestEngineGreetingArrivesAsync(t *testing.T) {
	g := newGateGreeter()
	h := newEngineHarness(t, g, nil)
	a := testAlarm("a", 7, 30)
	h.add(t, a)

	h.tick(time.Date(2024, 5, 6, 7, 30, 0, 0, time.UTC))
	assert.Equal(t, "Gerando saudação matinal...", h.state(t).Greeting)

	g.release(a.Label, "Bom dia, vamos lá!")
	require.Eventually(t, func() bool {
		return h.state(t).Greeting == "Bom dia, vamos lá!"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestEngineGreetingFailureStillRings(t *testing.T) {
	// The real Greeter maps provider errors to the fallback text.
	texts := greeting.TextsFor("pt-BR")
	g := greeting.NewGreeter(failingProvider{}, texts, time.Second)
	h := newEngineHarness(t, g, nil)
	h.add(t, testAlarm("a", 7, 30))

	h.tick(time.Date(2024, 5, 6, 7, 30, 0, 0, time.UTC))
	require.Eventually(t, func() bool {
		st := h.state(t)
		return st.Mode == model.ModeRinging && st.Greeting == texts.Fallback
	}, 2*time.Second, 5*time.Millisecond)
}

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }
func (failingProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("service unavailable")
}

func TestEngineSnoozeRefires(t *testing.T) {
	h := newEngineHarness(t, instantGreeter("oi"), nil)
	a := testAlarm("a", 7, 30)
	a.RepeatDays = model.NewWeekdaySet(time.Monday)
	h.add(t, a)

	h.tick(time.Date(2024, 5, 6, 7, 30, 0, 0, time.UTC))
	res, err := h.engine.Snooze()
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "Soneca ativada (5 min)", res.Notice)
	assert.Equal(t, model.ModeSnoozePending, res.State.Mode)

	// A scheduled alarm in the snooze window stays quiet.
	h.add(t, testAlarm("b", 7, 32))
	h.tick(time.Date(2024, 5, 6, 7, 32, 0, 0, time.UTC))
	assert.Equal(t, model.ModeSnoozePending, h.state(t).Mode)

	h.clock.Set(time.Date(2024, 5, 6, 7, 35, 0, 0, time.UTC))
	require.Eventually(t, func() bool {
		st := h.state(t)
		return st.Mode == model.ModeRinging && st.ActiveAlarm != nil && st.ActiveAlarm.ID == "a"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestEngineSnoozeSkipsDisabledAlarm(t *testing.T) {
	h := newEngineHarness(t, instantGreeter("oi"), nil)
	a := testAlarm("a", 7, 30)
	h.add(t, a)

	h.tick(time.Date(2024, 5, 6, 7, 30, 0, 0, time.UTC))
	_, err := h.engine.Snooze()
	require.NoError(t, err)
	_, _, err = h.store.Toggle(context.Background(), a.ID)
	require.NoError(t, err)

	h.clock.Advance(10 * time.Minute)
	require.Eventually(t, func() bool {
		return h.state(t).Mode == model.ModeIdle
	}, 2*time.Second, 5*time.Millisecond)
}

func TestEngineCancelSnooze(t *testing.T) {
	h := newEngineHarness(t, instantGreeter("oi"), nil)
	h.add(t, testAlarm("a", 7, 30))
	h.tick(time.Date(2024, 5, 6, 7, 30, 0, 0, time.UTC))
	_, err := h.engine.Snooze()
	require.NoError(t, err)

	res, err := h.engine.CancelSnooze()
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, model.ModeIdle, res.State.Mode)

	res, err = h.engine.CancelSnooze()
	require.NoError(t, err)
	assert.False(t, res.Changed)
}

func TestEngineInvalidTransitionsAreNoops(t *testing.T) {
	h := newEngineHarness(t, instantGreeter("oi"), nil)
	res, err := h.engine.Stop()
	require.NoError(t, err)
	assert.False(t, res.Changed)
	res, err = h.engine.Snooze()
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Empty(t, res.Notice)
	assert.Empty(t, h.rec.modes())
}

func TestEnginePreviewEndedFromPlayer(t *testing.T) {
	h := newEngineHarness(t, instantGreeter("oi"), nil)
	x := model.Track{ID: "x", SourceURL: "https://example.com/x.mp3"}

	res, err := h.engine.TogglePreview(x)
	require.NoError(t, err)
	assert.Equal(t, "x", res.State.PreviewingID)

	h.player.ended <- x.SourceURL
	require.Eventually(t, func() bool {
		return h.state(t).PreviewingID == ""
	}, 2*time.Second, 5*time.Millisecond)
}

func TestEngineLedger(t *testing.T) {
	ledger := &stubLedger{claimed: false}
	h := newEngineHarness(t, instantGreeter("oi"), ledger)
	h.add(t, testAlarm("a", 7, 30))

	h.tick(time.Date(2024, 5, 6, 7, 30, 0, 0, time.UTC))
	assert.Equal(t, model.ModeIdle, h.state(t).Mode, "claimed elsewhere")
	assert.Equal(t, 1, ledger.calls)
}

func TestEngineLedgerFailsOpen(t *testing.T) {
	ledger := &stubLedger{err: errors.New("redis: connection refused")}
	h := newEngineHarness(t, instantGreeter("oi"), ledger)
	h.add(t, testAlarm("a", 7, 30))

	h.tick(time.Date(2024, 5, 6, 7, 30, 0, 0, time.UTC))
	assert.Equal(t, model.ModeRinging, h.state(t).Mode)
}

func TestEngineNotifiesObservers(t *testing.T) {
	h := newEngineHarness(t, instantGreeter("oi"), nil)
	h.add(t, testAlarm("a", 7, 30))

	h.tick(time.Date(2024, 5, 6, 7, 30, 0, 0, time.UTC))
	_, err := h.engine.Stop()
	require.NoError(t, err)

	modes := h.rec.modes()
	require.NotEmpty(t, modes)
	assert.Equal(t, model.ModeRinging, modes[0])
	assert.Equal(t, model.ModeIdle, modes[len(modes)-1])
	h.rec.mu.Lock()
	assert.Equal(t, 1, h.rec.ticks)
	h.rec.mu.Unlock()
}

func TestEngineStoppedRejectsCommands(t *testing.T) {
	c := clock.NewFake(testStart)
	e := NewEngine(alarm.NewStore(c, nil), make(chan time.Time), Options{
		Clock: c, Player: newFakePlayer(), Greeter: instantGreeter("oi"),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, e.Run(ctx))

	_, err := e.State()
	assert.ErrorIs(t, err, ErrStopped)
}
