package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"VibeWake/core/alarm"
	"VibeWake/core/clock"
	"VibeWake/core/greeting"
	"VibeWake/core/library"
	"VibeWake/core/media"
	"VibeWake/core/session"
	"VibeWake/logger"
	"VibeWake/storage"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Deps are the components the HTTP surface drives.
type Deps struct {
	Clock     clock.Clock
	Engine    *session.Engine
	Alarms    *alarm.Store
	Library   *library.Library
	Hub       *media.Hub
	Texts     greeting.Texts
	JWTSecret string
	UploadDir string // served at /uploads/ when set
}

// Server is the REST and websocket front of the clock.
type Server struct {
	deps     Deps
	router   *mux.Router
	handler  http.Handler
	upgrader websocket.Upgrader
}

func New(deps Deps) *Server {
	s := &Server{
		deps:   deps,
		router: mux.NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.routes()
	// CORS wraps the router so preflights for any route are answered.
	s.handler = corsMiddleware(loggingMiddleware(s.router))
	return s
}

func (s *Server) routes() {
	r := s.router

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware(s.deps.JWTSecret))

	api.HandleFunc("/clock", s.handleClock).Methods(http.MethodGet)

	api.HandleFunc("/alarms", s.handleListAlarms).Methods(http.MethodGet)
	api.HandleFunc("/alarms", s.handleCreateAlarm).Methods(http.MethodPost)
	api.HandleFunc("/alarms/{id}/toggle", s.handleToggleAlarm).Methods(http.MethodPost)
	api.HandleFunc("/alarms/{id}", s.handleDeleteAlarm).Methods(http.MethodDelete)

	api.HandleFunc("/tracks", s.handleListTracks).Methods(http.MethodGet)
	api.HandleFunc("/tracks/import", s.handleImportTrack).Methods(http.MethodPost)
	api.HandleFunc("/tracks/{id}", s.handleDeleteTrack).Methods(http.MethodDelete)
	api.HandleFunc("/tracks/{id}/preview", s.handlePreviewTrack).Methods(http.MethodPost)

	api.HandleFunc("/session", s.handleSession).Methods(http.MethodGet)
	api.HandleFunc("/session/stop", s.handleStop).Methods(http.MethodPost)
	api.HandleFunc("/session/snooze", s.handleSnooze).Methods(http.MethodPost)
	api.HandleFunc("/session/snooze", s.handleCancelSnooze).Methods(http.MethodDelete)

	r.Handle("/ws", authMiddleware(s.deps.JWTSecret)(http.HandlerFunc(s.handleWebSocket))).Methods(http.MethodGet)

	// Player devices fetch imported audio by URL alone, so uploads stay
	// outside auth. Each path carries the track's random id and directories
	// are never listed.
	if s.deps.UploadDir != "" {
		r.PathPrefix(storage.URLPrefix).Handler(
			http.StripPrefix(storage.URLPrefix, http.FileServer(filesOnly{http.Dir(s.deps.UploadDir)})))
	}
}

// Handler returns the routed handler, for tests and custom servers.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}
