package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/ivan23kor/logpiper/internal/runtime"
	"github.com/ivan23kor/logpiper/internal/session"
)

// SessionsController handles the session directory endpoints.
type SessionsController struct {
	rt *runtime.Runtime
}

// NewSessionsController creates a new sessions controller.
func NewSessionsController(rt *runtime.Runtime) *SessionsController {
	return &SessionsController{rt: rt}
}

// RegisterRoutes registers session routes with the given mux.
//
// This method sets up HTTP endpoints for:
// - Directory listing and lookup (/v1/sessions, /v1/sessions/get)
// - Record reset and full deletion (/v1/sessions/reset)
// - Age-based cleanup (/v1/sessions/cleanup)
func (c *SessionsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/sessions", c.handleList)
	mux.HandleFunc("/v1/sessions/get", c.handleGet)
	mux.HandleFunc("/v1/sessions/reset", c.handleReset)
	mux.HandleFunc("/v1/sessions/cleanup", c.handleCleanup)
}

// handleList lists sessions newest first, optionally filtered by ?status=.
func (c *SessionsController) handleList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	var (
		sessions []*session.Session
		err      error
	)
	if status != "" {
		sessions, err = c.rt.Sessions().ListByStatus(session.Status(status))
	} else {
		sessions, err = c.rt.Sessions().List()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	out := make([]sessionJSON, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionJSON(s))
	}
	writeJSON(w, map[string]any{"sessions": out, "total": len(out)})
}

// handleGet returns one session's metadata plus its current record count.
func (c *SessionsController) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}
	sess, err := c.rt.Sessions().Load(id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	total, err := c.rt.Records().Count(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count records")
		return
	}
	writeJSON(w, map[string]any{"session": toSessionJSON(sess), "recordCount": total})
}

// handleReset clears a session's captured records and rewinds its cursor.
// With delete=true the session is removed entirely.
func (c *SessionsController) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req resetReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId")
		return
	}

	if req.Delete {
		if err := c.rt.Sessions().Delete(req.SessionID); err != nil {
			if errors.Is(err, session.ErrNotFound) {
				writeError(w, http.StatusNotFound, "session not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to delete session")
			return
		}
		writeJSON(w, map[string]any{"sessionId": req.SessionID, "deleted": true})
		return
	}

	sess, err := c.rt.Sessions().Load(req.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if err := os.Remove(c.rt.Records().RecordPath(req.SessionID)); err != nil && !os.IsNotExist(err) {
		writeError(w, http.StatusInternalServerError, "failed to remove records")
		return
	}
	sess.Cursor = 0
	sess.LastActivity = time.Now()
	if err := c.rt.Sessions().Save(sess); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist session")
		return
	}
	writeJSON(w, map[string]any{"sessionId": req.SessionID, "reset": true})
}

// handleCleanup deletes terminal sessions older than the requested age.
// maxAgeHours defaults to the configured retention.
func (c *SessionsController) handleCleanup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req cleanupReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	hours := req.MaxAgeHours
	if hours <= 0 {
		hours = c.rt.Config().Cleanup.MaxSessionAgeHours
	}
	removed, err := c.rt.Sessions().Cleanup(time.Duration(hours) * time.Hour)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cleanup failed")
		return
	}
	if removed == nil {
		removed = []string{}
	}
	writeJSON(w, map[string]any{"removed": removed, "count": len(removed)})
}
