package clock

import (
	"context"
	"time"
)

// Timer is a one-shot timer armed through a Clock.
type Timer interface {
	// Stop prevents the timer from firing. It reports whether the call
	// stopped the timer before it fired.
	Stop() bool
}

// Clock is the source of wall-clock time. It is injected wherever time is
// read or a timer is armed, so tests can drive time by hand.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Real is the system clock in a fixed location.
type Real struct {
	Location *time.Location
}

// NewReal returns the system clock reporting times in loc (Local when nil).
func NewReal(loc *time.Location) *Real {
	if loc == nil {
		loc = time.Local
	}
	return &Real{Location: loc}
}

func (c *Real) Now() time.Time {
	return time.Now().In(c.Location)
}

func (c *Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Source emits the current time on a fixed cadence aligned to interval
// boundaries. A tick the consumer has not picked up is replaced by the newer
// one, so a slow consumer never blocks the source.
type Source struct {
	clock    Clock
	interval time.Duration
	ticks    chan time.Time
	wake     chan struct{}

	cancel context.CancelFunc
}

// NewSource creates a tick source. interval must be positive.
func NewSource(c Clock, interval time.Duration) *Source {
	if interval <= 0 {
		interval = time.Second
	}
	return &Source{
		clock:    c,
		interval: interval,
		ticks:    make(chan time.Time, 1),
		wake:     make(chan struct{}, 1),
		cancel:   func() {},
	}
}

// Ticks returns the channel ticks are delivered on.
func (s *Source) Ticks() <-chan time.Time {
	return s.ticks
}

// Run blocks until ctx is done.
func (s *Source) Run(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	defer s.cancel()

	timer := s.arm()
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-s.wake:
			now := s.clock.Now()
			s.publish(now)
			timer = s.arm()
		}
	}
}

// Interrupt stops a running source.
func (s *Source) Interrupt() error {
	s.cancel()
	return nil
}

// arm schedules the next wake-up at the following interval boundary.
func (s *Source) arm() Timer {
	now := s.clock.Now()
	next := now.Truncate(s.interval).Add(s.interval)
	return s.clock.AfterFunc(next.Sub(now), func() {
		select {
		case s.wake <- struct{}{}:
		default:
		}
	})
}

func (s *Source) publish(now time.Time) {
	select {
	case s.ticks <- now:
		return
	default:
	}
	// Drop the stale tick and deliver the fresh one.
	select {
	case <-s.ticks:
	default:
	}
	select {
	case s.ticks <- now:
	default:
	}
}
