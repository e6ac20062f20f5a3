package server

import (
	"net/http"
	"time"

	"VibeWake/core/greeting"
	"VibeWake/model"
)

// ClockView is what the dashboard shows as the live clock.
type ClockView struct {
	Now  time.Time `json:"now"`
	Time string    `json:"time"`
	Date string    `json:"date"`
}

func NewClockView(now time.Time, texts greeting.Texts) ClockView {
	return ClockView{
		Now:  now,
		Time: model.TimeOfDayOf(now).String(),
		Date: texts.FormatDate(now),
	}
}

func (s *Server) handleClock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewClockView(s.deps.Clock.Now(), s.deps.Texts))
}
