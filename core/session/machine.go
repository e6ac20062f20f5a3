package session

import (
	"context"
	"time"

	"VibeWake/core/clock"
	"VibeWake/core/media"
	"VibeWake/logger"
	"VibeWake/model"
)

// Greeter produces the greeting shown while an alarm rings. It must not fail.
type Greeter interface {
	Greet(ctx context.Context, label string) string
}

// GreetingResult is a finished greeting for one fire of the session.
type GreetingResult struct {
	Seq     uint64
	AlarmID string
	Text    string
}

type pendingSnooze struct {
	seq   uint64
	alarm model.Alarm
	until time.Time
	timer clock.Timer
}

// Machine is the ringing session state machine plus the preview state. It is
// not safe for concurrent use: the Engine calls it from a single goroutine.
// Invalid transitions are no-ops reported as false.
type Machine struct {
	clock       clock.Clock
	player      media.Player
	greeter     Greeter
	placeholder string
	snoozeDelay time.Duration

	ringing       bool
	active        *model.Alarm
	ringingSince  time.Time
	greeting      string
	greetingReady bool
	fireSeq       uint64

	previewing *model.Track

	snooze    *pendingSnooze
	snoozeSeq uint64

	ctx       context.Context
	greetings chan GreetingResult
	snoozeDue chan uint64
}

// NewMachine creates an idle machine.
func NewMachine(c clock.Clock, p media.Player, g Greeter, placeholder string, snoozeDelay time.Duration) *Machine {
	if snoozeDelay <= 0 {
		snoozeDelay = 5 * time.Minute
	}
	return &Machine{
		clock:       c,
		player:      p,
		greeter:     g,
		placeholder: placeholder,
		snoozeDelay: snoozeDelay,
		ctx:         context.Background(),
		greetings:   make(chan GreetingResult, 4),
		snoozeDue:   make(chan uint64, 4),
	}
}

// bind sets the context greeting requests run under.
func (m *Machine) bind(ctx context.Context) {
	m.ctx = ctx
}

// Greetings delivers finished greeting requests.
func (m *Machine) Greetings() <-chan GreetingResult {
	return m.greetings
}

// SnoozeDue delivers the sequence number of an expired snooze.
func (m *Machine) SnoozeDue() <-chan uint64 {
	return m.snoozeDue
}

// Mode reports the externally visible mode. An armed snooze reads as
// snooze_pending while nothing rings.
func (m *Machine) Mode() model.SessionMode {
	switch {
	case m.ringing:
		return model.ModeRinging
	case m.snooze != nil:
		return model.ModeSnoozePending
	default:
		return model.ModeIdle
	}
}

// Fire starts ringing a. It is a no-op while already ringing. Any armed
// snooze is dropped and any preview is overridden.
func (m *Machine) Fire(a model.Alarm) bool {
	if m.ringing {
		return false
	}
	m.disarmSnooze()
	m.previewing = nil

	m.fireSeq++
	alarm := a
	m.ringing = true
	m.active = &alarm
	m.ringingSince = m.clock.Now()
	m.greeting = m.placeholder
	m.greetingReady = false

	if err := m.player.Load(a.Track.URL); err != nil {
		logger.Warn("Failed to load alarm track", logger.String("alarm", a.ID), logger.String("url", a.Track.URL), logger.ErrorField(err))
	}
	if err := m.player.SetLooping(true); err != nil {
		logger.Warn("Failed to enable looping", logger.String("alarm", a.ID), logger.ErrorField(err))
	}
	if err := m.player.Play(); err != nil {
		logger.Warn("Alarm playback did not start, ringing silently",
			logger.String("alarm", a.ID),
			logger.ErrorField(err))
	}

	m.requestGreeting(m.fireSeq, a)
	return true
}

func (m *Machine) requestGreeting(seq uint64, a model.Alarm) {
	ctx, greeter, out := m.ctx, m.greeter, m.greetings
	go func() {
		text := greeter.Greet(ctx, a.Label)
		select {
		case out <- GreetingResult{Seq: seq, AlarmID: a.ID, Text: text}:
		case <-ctx.Done():
		}
	}()
}

// ApplyGreeting stores res if it belongs to the fire that is still ringing.
func (m *Machine) ApplyGreeting(res GreetingResult) bool {
	if !m.ringing || res.Seq != m.fireSeq {
		logger.Debug("Discarding stale greeting", logger.String("alarm", res.AlarmID))
		return false
	}
	m.greeting = res.Text
	m.greetingReady = true
	return true
}

// Stop silences the ringing alarm.
func (m *Machine) Stop() bool {
	if !m.ringing {
		return false
	}
	if err := m.player.Stop(); err != nil {
		logger.Warn("Failed to stop player", logger.ErrorField(err))
	}
	m.clearRinging()
	return true
}

// Snooze silences the ringing alarm and arms a one-shot re-fire of the same
// alarm after the snooze delay.
func (m *Machine) Snooze() bool {
	if !m.ringing {
		return false
	}
	if err := m.player.Stop(); err != nil {
		logger.Warn("Failed to stop player", logger.ErrorField(err))
	}
	a := *m.active
	m.clearRinging()

	m.snoozeSeq++
	seq, due := m.snoozeSeq, m.snoozeDue
	s := &pendingSnooze{
		seq:   seq,
		alarm: a,
		until: m.clock.Now().Add(m.snoozeDelay),
	}
	s.timer = m.clock.AfterFunc(m.snoozeDelay, func() {
		select {
		case due <- seq:
		default:
		}
	})
	m.snooze = s
	return true
}

// TakeSnooze consumes the armed snooze if seq identifies it and returns the
// alarm to re-fire.
func (m *Machine) TakeSnooze(seq uint64) (model.Alarm, bool) {
	if m.snooze == nil || m.snooze.seq != seq {
		return model.Alarm{}, false
	}
	a := m.snooze.alarm
	m.snooze = nil
	return a, true
}

// CancelSnooze disarms a pending snooze.
func (m *Machine) CancelSnooze() bool {
	if m.snooze == nil {
		return false
	}
	m.disarmSnooze()
	return true
}

func (m *Machine) disarmSnooze() {
	if m.snooze == nil {
		return
	}
	m.snooze.timer.Stop()
	m.snooze = nil
}

func (m *Machine) clearRinging() {
	m.ringing = false
	m.active = nil
	m.ringingSince = time.Time{}
	m.greeting = ""
	m.greetingReady = false
	m.previewing = nil
}

// TogglePreview starts previewing t, or pauses it when t is already
// previewing. Ignored while an alarm rings.
func (m *Machine) TogglePreview(t model.Track) bool {
	if m.ringing {
		return false
	}
	if m.previewing != nil && m.previewing.ID == t.ID {
		if err := m.player.Pause(); err != nil {
			logger.Warn("Failed to pause preview", logger.String("track", t.ID), logger.ErrorField(err))
		}
		m.previewing = nil
		return true
	}

	if err := m.player.Load(t.SourceURL); err != nil {
		logger.Warn("Failed to load preview", logger.String("track", t.ID), logger.ErrorField(err))
	}
	if err := m.player.SetLooping(false); err != nil {
		logger.Warn("Failed to disable looping", logger.ErrorField(err))
	}
	if err := m.player.Play(); err != nil {
		logger.Warn("Preview playback did not start", logger.String("track", t.ID), logger.ErrorField(err))
	}
	track := t
	m.previewing = &track
	return true
}

// PreviewEnded clears the preview when url is the track previewing.
func (m *Machine) PreviewEnded(url string) bool {
	if m.ringing || m.previewing == nil || m.previewing.SourceURL != url {
		return false
	}
	m.previewing = nil
	return true
}

// ForgetTrack stops the preview of a track that is going away.
func (m *Machine) ForgetTrack(id string) bool {
	if m.previewing == nil || m.previewing.ID != id {
		return false
	}
	if err := m.player.Stop(); err != nil {
		logger.Warn("Failed to stop player", logger.ErrorField(err))
	}
	m.previewing = nil
	return true
}

// Shutdown disarms timers and silences the player.
func (m *Machine) Shutdown() {
	m.disarmSnooze()
	if m.ringing || m.previewing != nil {
		if err := m.player.Stop(); err != nil {
			logger.Warn("Failed to stop player", logger.ErrorField(err))
		}
	}
	m.clearRinging()
}

// State returns a snapshot.
func (m *Machine) State() model.SessionState {
	st := model.SessionState{
		Mode:          m.Mode(),
		Greeting:      m.greeting,
		GreetingReady: m.greetingReady,
	}
	if m.active != nil {
		a := *m.active
		st.ActiveAlarm = &a
		since := m.ringingSince
		st.RingingSince = &since
	}
	if m.previewing != nil {
		st.PreviewingID = m.previewing.ID
	}
	if m.snooze != nil {
		st.Snooze = &model.SnoozeInfo{
			AlarmID: m.snooze.alarm.ID,
			Label:   m.snooze.alarm.Label,
			Until:   m.snooze.until,
		}
	}
	return st
}
