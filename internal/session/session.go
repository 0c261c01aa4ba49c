package session

import "time"

// Status is the lifecycle state of a session.
type Status string

// Session lifecycle states.
const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
	StatusCrashed Status = "crashed"
)

// Metadata holds the fixed descriptive fields plus one explicit extension map,
// keeping the on-disk schema checkable.
type Metadata struct {
	Signature   string            `json:"signature"`
	ProjectName string            `json:"projectName"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// Session identifies one monitored command invocation. It is owned exclusively
// by its producer while running; once terminal, ownership passes to whichever
// component last touches the metadata file.
type Session struct {
	ID           string     `json:"id"`
	WorkDir      string     `json:"workDir"`
	Command      string     `json:"command"`
	Args         []string   `json:"args,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastActivity time.Time  `json:"lastActivity"`
	Status       Status     `json:"status"`
	PID          *int       `json:"pid,omitempty"`
	EndedAt      *time.Time `json:"endedAt,omitempty"`

	// Cursor is the highest sequence number acknowledged as delivered.
	// It only ever advances.
	Cursor uint64 `json:"cursor"`

	Metadata Metadata `json:"metadata"`
}

// Terminal reports whether the session has left the running state.
func (s *Session) Terminal() bool { return s.Status != StatusRunning }
