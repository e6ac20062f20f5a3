package model

import "time"

// SessionMode is the mode of the single global ringing session.
type SessionMode string

const (
	ModeIdle          SessionMode = "idle"
	ModeRinging       SessionMode = "ringing"
	ModeSnoozePending SessionMode = "snooze_pending"
)

// SnoozeInfo describes an armed snooze.
type SnoozeInfo struct {
	AlarmID string    `json:"alarmId"`
	Label   string    `json:"label"`
	Until   time.Time `json:"until"`
}

// SessionState is a snapshot of the session, safe to hand out.
type SessionState struct {
	Mode          SessionMode `json:"mode"`
	ActiveAlarm   *Alarm      `json:"activeAlarm,omitempty"`
	Greeting      string      `json:"greeting"`
	GreetingReady bool        `json:"greetingReady"`
	PreviewingID  string      `json:"previewingId,omitempty"`
	RingingSince  *time.Time  `json:"ringingSince,omitempty"`
	Snooze        *SnoozeInfo `json:"snooze,omitempty"`
}

// TransitionResult is returned by user-driven session commands. Invalid
// transitions are reported with Changed=false rather than as errors.
type TransitionResult struct {
	Changed bool         `json:"changed"`
	Notice  string       `json:"notice,omitempty"`
	State   SessionState `json:"state"`
}
