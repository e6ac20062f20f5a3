package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"VibeWake/core/alarm"
	"VibeWake/logger"
	"VibeWake/model"

	"github.com/gorilla/mux"
)

// changedResponse reports whether a command had any effect. Unknown ids are
// not errors.
type changedResponse struct {
	Changed bool         `json:"changed"`
	Alarm   *model.Alarm `json:"alarm,omitempty"`
}

func (s *Server) handleListAlarms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Alarms.List())
}

func (s *Server) handleCreateAlarm(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAlarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := model.ParseTimeOfDay(req.Time)
	if err != nil {
		writeError(w, http.StatusBadRequest, alarm.ErrInvalidTime.Error())
		return
	}

	track := s.deps.Library.Default()
	if req.TrackID != "" {
		var ok bool
		if track, ok = s.deps.Library.Get(req.TrackID); !ok {
			writeError(w, http.StatusBadRequest, "unknown track")
			return
		}
	}

	label := strings.TrimSpace(req.Label)
	if label == "" {
		label = s.deps.Texts.DefaultLabel
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	created, err := s.deps.Alarms.Add(r.Context(), model.Alarm{
		Time:       t,
		Label:      label,
		Enabled:    enabled,
		RepeatDays: req.RepeatDays,
		Track:      track.Ref(),
	})
	if err != nil {
		if errors.Is(err, alarm.ErrInvalidTime) || errors.Is(err, alarm.ErrDuplicateID) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("Failed to create alarm", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to create alarm")
		return
	}
	logger.Info("Alarm created",
		logger.String("id", created.ID),
		logger.String("time", created.Time.String()),
		logger.String("days", created.RepeatDays.String()))
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleToggleAlarm(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	a, found, err := s.deps.Alarms.Toggle(r.Context(), id)
	if err != nil {
		logger.Error("Failed to toggle alarm", logger.String("id", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to toggle alarm")
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, changedResponse{})
		return
	}
	writeJSON(w, http.StatusOK, changedResponse{Changed: true, Alarm: &a})
}

func (s *Server) handleDeleteAlarm(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	removed, err := s.deps.Alarms.Remove(r.Context(), id)
	if err != nil {
		logger.Error("Failed to delete alarm", logger.String("id", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to delete alarm")
		return
	}
	writeJSON(w, http.StatusOK, changedResponse{Changed: removed})
}
