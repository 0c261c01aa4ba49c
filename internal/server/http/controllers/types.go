package controllers

import (
	"time"

	"github.com/ivan23kor/logpiper/internal/logstore"
	"github.com/ivan23kor/logpiper/internal/session"
)

// Common request/response types for HTTP controllers.

// recordJSON is the wire shape of one stored record.
type recordJSON struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"sessionId"`
	Channel        string    `json:"channel"`
	Timestamp      time.Time `json:"timestamp"`
	Content        string    `json:"content"`
	SequenceNumber uint64    `json:"sequenceNumber"`
}

func toRecordJSON(rec logstore.Record) recordJSON {
	return recordJSON{
		ID:             rec.ID,
		SessionID:      rec.SessionID,
		Channel:        string(rec.Channel),
		Timestamp:      rec.Timestamp,
		Content:        rec.Content,
		SequenceNumber: rec.SequenceNumber,
	}
}

// logsResp is the page shape shared by reads and searches. Scalar fields
// always survive truncation; only Data is trimmed.
type logsResp struct {
	Data        []recordJSON `json:"data"`
	Total       int          `json:"total"`
	NextCursor  *uint64      `json:"nextCursor,omitempty"`
	PrevCursor  *uint64      `json:"prevCursor,omitempty"`
	HasMore     bool         `json:"hasMore"`
	HasPrevious bool         `json:"hasPrevious"`
	Consumed    int          `json:"consumed,omitempty"`
	Truncated   bool         `json:"truncated,omitempty"`
}

// countResp is the /v1/logs/count response.
type countResp struct {
	SessionID string `json:"sessionId"`
	Total     int    `json:"total"`
}

// sessionJSON is the wire shape of session metadata.
type sessionJSON struct {
	ID           string     `json:"id"`
	WorkDir      string     `json:"workDir"`
	Command      string     `json:"command"`
	Args         []string   `json:"args,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastActivity time.Time  `json:"lastActivity"`
	Status       string     `json:"status"`
	PID          *int       `json:"pid,omitempty"`
	EndedAt      *time.Time `json:"endedAt,omitempty"`
	Cursor       uint64     `json:"cursor"`
	ProjectName  string     `json:"projectName"`
	Signature    string     `json:"signature"`
}

func toSessionJSON(s *session.Session) sessionJSON {
	return sessionJSON{
		ID:           s.ID,
		WorkDir:      s.WorkDir,
		Command:      s.Command,
		Args:         s.Args,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
		Status:       string(s.Status),
		PID:          s.PID,
		EndedAt:      s.EndedAt,
		Cursor:       s.Cursor,
		ProjectName:  s.Metadata.ProjectName,
		Signature:    s.Metadata.Signature,
	}
}

// resetReq asks for a session's captured records to be cleared.
type resetReq struct {
	SessionID string `json:"sessionId"`
	// Delete removes the whole session instead of just its records.
	Delete bool `json:"delete,omitempty"`
}

// cleanupReq asks for terminal sessions older than MaxAgeHours to be removed.
type cleanupReq struct {
	MaxAgeHours int `json:"maxAgeHours,omitempty"`
}
