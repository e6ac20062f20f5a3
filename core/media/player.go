package media

import (
	"errors"
	"sync"
)

// ErrNoDevice is returned by Play when no playback device is listening, the
// server-side equivalent of a browser blocking autoplay.
var ErrNoDevice = errors.New("no playback device connected")

// Player is the single shared playback device.
type Player interface {
	Load(url string) error
	Play() error
	Pause() error
	Stop() error
	SetLooping(loop bool) error
	// Ended delivers the URL of media that finished playing on its own.
	Ended() <-chan string
}

// Action is a player command verb.
type Action string

const (
	ActionLoad  Action = "load"
	ActionPlay  Action = "play"
	ActionPause Action = "pause"
	ActionStop  Action = "stop"
	ActionLoop  Action = "loop"
)

// Command is what devices receive.
type Command struct {
	Action Action `json:"action"`
	URL    string `json:"url,omitempty"`
	Loop   bool   `json:"loop"`
}

// Device event kinds.
const (
	EventEnded      = "ended"
	EventPlayFailed = "play_failed"
)

// DeviceEvent is what devices report back.
type DeviceEvent struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	Reason string `json:"reason,omitempty"`
}

// deviceState tracks what the device should be doing, so late joiners can be
// brought in sync and commands carry full context.
type deviceState struct {
	mu      sync.Mutex
	url     string
	loop    bool
	playing bool
}

func (s *deviceState) apply(a Action, url string, loop bool) Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch a {
	case ActionLoad:
		s.url, s.playing = url, false
	case ActionPlay:
		s.playing = s.url != ""
	case ActionPause:
		s.playing = false
	case ActionStop:
		s.url, s.playing, s.loop = "", false, false
	case ActionLoop:
		s.loop = loop
	}
	return Command{Action: a, URL: s.url, Loop: s.loop}
}

// ended marks url finished and reports whether it was the current media.
func (s *deviceState) ended(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if url == "" || url != s.url {
		return false
	}
	if !s.loop {
		s.playing = false
	}
	return true
}

// resume returns the command a newly connected device needs, if any.
func (s *deviceState) resume() (Command, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return Command{}, false
	}
	return Command{Action: ActionPlay, URL: s.url, Loop: s.loop}, true
}

// notifyEnded forwards url without blocking the device reader.
func notifyEnded(ch chan string, url string) bool {
	select {
	case ch <- url:
		return true
	default:
		return false
	}
}
