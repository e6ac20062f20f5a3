package server

import (
	"time"

	"VibeWake/core/greeting"
	"VibeWake/core/media"
	"VibeWake/logger"
	"VibeWake/model"
)

// HubEvents forwards session changes and the live clock to websocket
// clients. Register it with session.Engine.Observe.
type HubEvents struct {
	hub      *media.Hub
	texts    greeting.Texts
	lastTick int64
}

func NewHubEvents(hub *media.Hub, texts greeting.Texts) *HubEvents {
	return &HubEvents{hub: hub, texts: texts}
}

func (e *HubEvents) SessionChanged(st model.SessionState) {
	if err := e.hub.Publish(media.MsgTypeSession, st); err != nil {
		logger.Warn("Failed to publish session", logger.ErrorField(err))
	}
}

// Tick publishes at most once per wall-clock second.
func (e *HubEvents) Tick(now time.Time) {
	sec := now.Unix()
	if sec == e.lastTick {
		return
	}
	e.lastTick = sec
	if err := e.hub.Publish(media.MsgTypeClock, NewClockView(now, e.texts)); err != nil {
		logger.Warn("Failed to publish clock", logger.ErrorField(err))
	}
}
