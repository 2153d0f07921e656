package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleActiveTask(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())
	task, err := s.playengine.SelectActiveTask(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handlePlayTask(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())

	// The task id in the path identifies which task the client believes
	// is active; the play engine always operates on the user's current
	// active task, so a mismatch is surfaced as a conflict rather than
	// silently played against the wrong task.
	taskID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req playTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	active, err := s.playengine.SelectActiveTask(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	if active.ID != taskID {
		writeError(w, http.StatusConflict, "active task has changed, fetch it again before playing")
		return
	}

	task, msg, err := s.playengine.Play(r.Context(), claims.UserID, req.RatingScore, req.Comment)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, playTaskResponse{Task: task, Message: msg})
}
