package logstore

import (
	"encoding/json"
	"strconv"
	"time"
)

// Channel identifies the output stream a record was captured from.
type Channel string

// Capture channels.
const (
	ChannelStdout Channel = "stdout"
	ChannelStderr Channel = "stderr"
)

// Record is one durably stored unit of captured output. Immutable once
// appended.
type Record struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"sessionId"`
	Channel        Channel   `json:"channel"`
	Timestamp      time.Time `json:"timestamp"`
	Content        string    `json:"content"`
	SequenceNumber uint64    `json:"sequenceNumber"`
}

// RecordID builds the synthetic record id <sessionId>_<seq>.
func RecordID(sessionID string, seq uint64) string {
	return sessionID + "_" + strconv.FormatUint(seq, 10)
}

// EncodeLine renders the record as a single NDJSON line (newline included).
func EncodeLine(rec *Record) ([]byte, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// ParseLine decodes one stored line. The ok result is false for corrupt or
// partially written lines; these are skipped by readers, never fatal.
func ParseLine(line []byte) (Record, bool) {
	var rec Record
	if err := json.Unmarshal(line, &rec); err != nil {
		return Record{}, false
	}
	if rec.ID == "" || rec.SessionID == "" {
		return Record{}, false
	}
	return rec, true
}
