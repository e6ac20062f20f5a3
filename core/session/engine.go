package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"VibeWake/core/alarm"
	"VibeWake/core/clock"
	"VibeWake/core/greeting"
	"VibeWake/core/media"
	"VibeWake/logger"
	"VibeWake/model"
)

// ErrStopped is returned by commands submitted after the engine stopped.
var ErrStopped = errors.New("session engine stopped")

// FireLedger claims the right to fire an alarm for one minute across
// processes. Implementations fail open: an error lets the fire proceed.
type FireLedger interface {
	Claim(ctx context.Context, alarmID string, minute time.Time) (bool, error)
}

// SessionObserver is told about every session change. Called on the engine
// goroutine; it must not block.
type SessionObserver interface {
	SessionChanged(state model.SessionState)
}

// TickObserver receives every clock tick. Same rules as SessionObserver.
type TickObserver interface {
	Tick(now time.Time)
}

// Options configures an Engine.
type Options struct {
	Clock       clock.Clock
	Player      media.Player
	Greeter     Greeter
	Texts       greeting.Texts
	SnoozeDelay time.Duration
	Ledger      FireLedger // optional
}

type command struct {
	fn   func()
	done chan struct{}
}

// Engine owns the session. Clock ticks, user commands, greeting results,
// snooze expiry and player notifications are all applied on the goroutine
// running Run, so the scheduler, machine and store reads never race.
type Engine struct {
	machine   *Machine
	scheduler *alarm.Scheduler
	store     *alarm.Store
	player    media.Player
	ticks     <-chan time.Time
	ledger    FireLedger
	texts     greeting.Texts
	delay     time.Duration

	sessionObservers []SessionObserver
	tickObservers    []TickObserver

	commands chan command
	done     chan struct{}
}

// NewEngine wires an engine. ticks is usually clock.Source.Ticks().
func NewEngine(store *alarm.Store, ticks <-chan time.Time, opts Options) *Engine {
	if opts.SnoozeDelay <= 0 {
		opts.SnoozeDelay = 5 * time.Minute
	}
	return &Engine{
		machine:   NewMachine(opts.Clock, opts.Player, opts.Greeter, opts.Texts.Placeholder, opts.SnoozeDelay),
		scheduler: alarm.NewScheduler(),
		store:     store,
		player:    opts.Player,
		ticks:     ticks,
		ledger:    opts.Ledger,
		texts:     opts.Texts,
		delay:     opts.SnoozeDelay,
		commands:  make(chan command),
		done:      make(chan struct{}),
	}
}

// Observe registers o for every observer interface it implements. Call before Run.
func (e *Engine) Observe(o interface{}) {
	if so, ok := o.(SessionObserver); ok {
		e.sessionObservers = append(e.sessionObservers, so)
	}
	if to, ok := o.(TickObserver); ok {
		e.tickObservers = append(e.tickObservers, to)
	}
}

// Run processes events until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)
	e.machine.bind(ctx)

	for {
		select {
		case <-ctx.Done():
			e.machine.Shutdown()
			logger.Info("Session engine stopped")
			return nil

		case now := <-e.ticks:
			e.tick(ctx, now)

		case cmd := <-e.commands:
			cmd.fn()
			close(cmd.done)

		case res := <-e.machine.Greetings():
			if e.machine.ApplyGreeting(res) {
				e.notify()
			}

		case seq := <-e.machine.SnoozeDue():
			e.snoozeExpired(seq)

		case url := <-e.player.Ended():
			if e.machine.PreviewEnded(url) {
				e.notify()
			}
		}
	}
}

func (e *Engine) tick(ctx context.Context, now time.Time) {
	for _, o := range e.tickObservers {
		o.Tick(now)
	}

	a, ok := e.scheduler.Evaluate(now, e.store.List(), e.machine.Mode())
	if !ok {
		return
	}
	if e.ledger != nil {
		cctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		claimed, err := e.ledger.Claim(cctx, a.ID, now)
		cancel()
		if err != nil {
			logger.Warn("Fire ledger unavailable, firing anyway", logger.String("alarm", a.ID), logger.ErrorField(err))
		} else if !claimed {
			logger.Info("Alarm already fired for this minute", logger.String("alarm", a.ID))
			return
		}
	}
	e.fire(a, "schedule")
}

func (e *Engine) fire(a model.Alarm, reason string) bool {
	if !e.machine.Fire(a) {
		return false
	}
	logger.Info("Alarm ringing",
		logger.String("alarm", a.ID),
		logger.String("time", a.Time.String()),
		logger.String("label", a.Label),
		logger.String("reason", reason))
	e.notify()
	return true
}

// snoozeExpired re-fires the snoozed alarm if it still exists and is enabled.
// Its repeat days are not consulted.
func (e *Engine) snoozeExpired(seq uint64) {
	snoozed, ok := e.machine.TakeSnooze(seq)
	if !ok {
		return
	}
	current, exists := e.store.Get(snoozed.ID)
	if !exists || !current.Enabled {
		logger.Info("Snoozed alarm gone or disabled, not ringing again", logger.String("alarm", snoozed.ID))
		e.notify()
		return
	}
	if !e.fire(current, "snooze") {
		e.notify()
	}
}

func (e *Engine) notify() {
	if len(e.sessionObservers) == 0 {
		return
	}
	st := e.machine.State()
	for _, o := range e.sessionObservers {
		o.SessionChanged(st)
	}
}

// do runs fn on the engine goroutine and waits for it.
func (e *Engine) do(fn func()) error {
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case e.commands <- cmd:
	case <-e.done:
		return ErrStopped
	}
	<-cmd.done
	return nil
}

func (e *Engine) transition(fn func() bool) (model.TransitionResult, error) {
	var res model.TransitionResult
	err := e.do(func() {
		res.Changed = fn()
		if res.Changed {
			e.notify()
		}
		res.State = e.machine.State()
	})
	return res, err
}

// State returns the current session snapshot.
func (e *Engine) State() (model.SessionState, error) {
	var st model.SessionState
	err := e.do(func() { st = e.machine.State() })
	return st, err
}

// Stop silences the ringing alarm.
func (e *Engine) Stop() (model.TransitionResult, error) {
	return e.transition(e.machine.Stop)
}

// Snooze silences the ringing alarm and re-rings it after the snooze delay.
func (e *Engine) Snooze() (model.TransitionResult, error) {
	res, err := e.transition(e.machine.Snooze)
	if err == nil && res.Changed && e.texts.SnoozeNotice != "" {
		res.Notice = fmt.Sprintf(e.texts.SnoozeNotice, int(e.delay.Round(time.Minute)/time.Minute))
	}
	return res, err
}

// CancelSnooze disarms a pending snooze.
func (e *Engine) CancelSnooze() (model.TransitionResult, error) {
	return e.transition(e.machine.CancelSnooze)
}

// TogglePreview starts or pauses previewing t.
func (e *Engine) TogglePreview(t model.Track) (model.TransitionResult, error) {
	return e.transition(func() bool { return e.machine.TogglePreview(t) })
}

// ForgetTrack stops a preview of the track with id, if any.
func (e *Engine) ForgetTrack(id string) error {
	_, err := e.transition(func() bool { return e.machine.ForgetTrack(id) })
	return err
}
