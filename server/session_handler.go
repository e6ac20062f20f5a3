package server

import (
	"net/http"

	"VibeWake/model"
)

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Engine.State()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.transition(w, s.deps.Engine.Stop)
}

func (s *Server) handleSnooze(w http.ResponseWriter, r *http.Request) {
	s.transition(w, s.deps.Engine.Snooze)
}

func (s *Server) handleCancelSnooze(w http.ResponseWriter, r *http.Request) {
	s.transition(w, s.deps.Engine.CancelSnooze)
}

// transition answers 200 for no-op transitions too; Changed tells them apart.
func (s *Server) transition(w http.ResponseWriter, fn func() (model.TransitionResult, error)) {
	res, err := fn()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}
