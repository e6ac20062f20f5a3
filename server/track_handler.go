package server

import (
	"errors"
	"net/http"

	"VibeWake/core/library"
	"VibeWake/core/media"
	"VibeWake/logger"

	"github.com/gorilla/mux"
)

// maxImportSize bounds a single imported file.
const maxImportSize = 64 << 20

func (s *Server) handleListTracks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Library.List())
}

func (s *Server) handleImportTrack(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	t, err := s.deps.Library.Import(r.Context(), header.Filename, file, header.Size)
	if errors.Is(err, library.ErrBadFilename) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		logger.Error("Failed to import track", logger.String("file", header.Filename), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to import track")
		return
	}
	s.publishLibrary()
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleDeleteTrack(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.deps.Library.Remove(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, library.ErrReadOnly):
			writeError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, library.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to delete track")
		}
		return
	}
	if err := s.deps.Engine.ForgetTrack(id); err != nil {
		logger.Warn("Session engine unavailable", logger.ErrorField(err))
	}
	s.publishLibrary()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePreviewTrack(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	t, ok := s.deps.Library.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, library.ErrNotFound.Error())
		return
	}
	res, err := s.deps.Engine.TogglePreview(t)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) publishLibrary() {
	if s.deps.Hub == nil {
		return
	}
	if err := s.deps.Hub.Publish(media.MsgTypeLibrary, s.deps.Library.List()); err != nil {
		logger.Warn("Failed to publish library", logger.ErrorField(err))
	}
}
