package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned when a session metadata file does not exist.
var ErrNotFound = errors.New("session not found")

// Store manages session metadata files in a single directory.
//
// Layout: one <id>.json metadata file per session, next to the (at most one)
// <id>.jsonl record file written by the log store.
type Store struct {
	dir string
}

// NewStore creates the directory if needed and returns a Store over it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store manages.
func (s *Store) Dir() string { return s.dir }

// MetaPath returns the metadata file path for a session id.
func (s *Store) MetaPath(id string) string { return filepath.Join(s.dir, id+".json") }

// RecordPath returns the record file path for a session id.
func (s *Store) RecordPath(id string) string { return filepath.Join(s.dir, id+".jsonl") }

// Save rewrites the session metadata file wholesale.
func (s *Store) Save(sess *Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.MetaPath(sess.ID), b, 0o644); err != nil {
		return fmt.Errorf("write session meta: %w", err)
	}
	return nil
}

// Load reads a session's metadata. Returns ErrNotFound if absent.
func (s *Store) Load(id string) (*Session, error) {
	b, err := os.ReadFile(s.MetaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, fmt.Errorf("parse session meta %s: %w", id, err)
	}
	return &sess, nil
}

// List enumerates all sessions, newest first. Malformed metadata files are
// skipped.
func (s *Store) List() ([]*Session, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var sessions []*Session
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		sess, err := s.Load(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		sessions = append(sessions, sess)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// ListByStatus enumerates sessions with the given status, newest first.
func (s *Store) ListByStatus(status Status) ([]*Session, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	filtered := all[:0]
	for _, sess := range all {
		if sess.Status == status {
			filtered = append(filtered, sess)
		}
	}
	return filtered, nil
}

// AdvanceCursor moves the session's read-cursor to max(existing, through) and
// persists the change. Advancing to a lower value is a no-op.
func (s *Store) AdvanceCursor(id string, through uint64) error {
	sess, err := s.Load(id)
	if err != nil {
		return err
	}
	if through <= sess.Cursor {
		return nil
	}
	sess.Cursor = through
	sess.LastActivity = time.Now()
	return s.Save(sess)
}

// Touch updates the session's last-activity time.
func (s *Store) Touch(id string) error {
	sess, err := s.Load(id)
	if err != nil {
		return err
	}
	sess.LastActivity = time.Now()
	return s.Save(sess)
}

// Delete removes the session's metadata and record files. Missing files are
// not errors.
func (s *Store) Delete(id string) error {
	if err := os.Remove(s.RecordPath(id)); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(s.MetaPath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Cleanup deletes sessions whose last activity is older than maxAge.
// Running sessions are never cleaned up. Returns the ids removed.
func (s *Store) Cleanup(maxAge time.Duration) ([]string, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().Add(-maxAge)
	var removed []string
	for _, sess := range all {
		if sess.Status == StatusRunning {
			continue
		}
		if sess.LastActivity.After(cutoff) {
			continue
		}
		if err := s.Delete(sess.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return removed, err
		}
		removed = append(removed, sess.ID)
	}
	return removed, nil
}
