package server

import (
	"net/http"

	"VibeWake/logger"
)

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.deps.Hub == nil {
		writeError(w, http.StatusNotFound, "websocket hub disabled")
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", logger.ErrorField(err))
		return
	}
	logger.Info("WebSocket connected",
		logger.String("remote", r.RemoteAddr),
		logger.String("subject", SubjectFromContext(r.Context())))
	s.deps.Hub.ServeClient(conn)
}
