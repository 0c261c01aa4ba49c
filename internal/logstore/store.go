package logstore

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Store locates per-session record files within one directory.
type Store struct {
	dir string
}

// NewStore returns a Store over dir. The directory must already exist (the
// session store creates it).
func NewStore(dir string) *Store { return &Store{dir: dir} }

// Dir returns the directory the store manages.
func (s *Store) Dir() string { return s.dir }

// RecordPath returns the record file path for a session id.
func (s *Store) RecordPath(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".jsonl")
}

// maxLineBytes bounds a single stored line during scans. Well-formed records
// stay under the chunk byte budget; the headroom is for corrupt lines.
const maxLineBytes = 1 << 20

// scanLines streams the record file line by line, calling fn with each
// non-empty raw line. fn returns false to stop early. A missing file yields
// no calls and a nil error.
func (s *Store) scanLines(sessionID string, fn func(line []byte) bool) error {
	f, err := os.Open(s.RecordPath(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64<<10), maxLineBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if !fn(line) {
			return nil
		}
	}
	return scanner.Err()
}

// Appender assigns sequence numbers and durably appends records for a single
// session. There is exactly one Appender per session (single producer);
// readers and the consumption rewrite share the file without in-process
// locking.
type Appender struct {
	store     *Store
	sessionID string

	mu      sync.Mutex
	nextSeq uint64
}

// OpenAppender prepares an appender for the session's record file. The next
// sequence number continues after the highest one found in the file, so a
// producer reopening an existing file never reuses a sequence number.
//
// The file is opened per append rather than held open: the consumption
// rewrite may truncate or remove the file between flushes, and a held
// descriptor would keep appending to an unlinked inode.
func OpenAppender(store *Store, sessionID string) (*Appender, error) {
	a := &Appender{store: store, sessionID: sessionID}
	err := store.scanLines(sessionID, func(line []byte) bool {
		if rec, ok := ParseLine(line); ok && rec.SequenceNumber >= a.nextSeq {
			a.nextSeq = rec.SequenceNumber + 1
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("scan existing records: %w", err)
	}
	return a, nil
}

// Append assigns the next sequence number and durably appends one record.
// Append failures must not be swallowed: a lost append silently breaks
// sequence contiguity, so callers treat errors as fatal to the producer.
func (a *Appender) Append(channel Channel, content string, at time.Time) (Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	seq := a.nextSeq
	rec := Record{
		ID:             RecordID(a.sessionID, seq),
		SessionID:      a.sessionID,
		Channel:        channel,
		Timestamp:      at,
		Content:        content,
		SequenceNumber: seq,
	}
	line, err := EncodeLine(&rec)
	if err != nil {
		return Record{}, err
	}
	f, err := os.OpenFile(a.store.RecordPath(a.sessionID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return Record{}, fmt.Errorf("open record file: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return Record{}, fmt.Errorf("append record: %w", err)
	}
	if err := f.Close(); err != nil {
		return Record{}, fmt.Errorf("close record file: %w", err)
	}
	a.nextSeq = seq + 1
	return rec, nil
}

// NextSequence returns the sequence number the next append will be assigned.
func (a *Appender) NextSequence() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nextSeq
}
