package logstore

import (
	"bytes"
	"fmt"
	"os"
)

// Consume removes records with sequence numbers at or below through from the
// session's record file, bounding its growth once a caller has durably
// received them. Unparseable lines are conservatively kept rather than risk
// data loss. If nothing remains, the file is deleted outright.
//
// The rewrite replaces the file contents in place (the format has no
// fixed-width records, so truncation is not possible). It is idempotent:
// re-consuming an already-pruned range is a no-op. It is not transactionally
// linked to the read that produced through, and it is not guarded against a
// concurrent producer append; that window is an accepted, documented gap.
//
// Returns the number of records dropped.
func (s *Store) Consume(sessionID string, through uint64) (int, error) {
	var keep bytes.Buffer
	dropped := 0
	err := s.scanLines(sessionID, func(line []byte) bool {
		rec, ok := ParseLine(line)
		if ok && rec.SequenceNumber <= through {
			dropped++
			return true
		}
		keep.Write(line)
		keep.WriteByte('\n')
		return true
	})
	if err != nil {
		return 0, err
	}
	if dropped == 0 {
		return 0, nil
	}

	path := s.RecordPath(sessionID)
	if keep.Len() == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return dropped, fmt.Errorf("remove consumed record file: %w", err)
		}
		return dropped, nil
	}
	// Full in-place rewrite. O_TRUNC on the existing path keeps the inode
	// valid for any appender that raced us.
	if err := os.WriteFile(path, keep.Bytes(), 0o644); err != nil {
		return dropped, fmt.Errorf("rewrite record file: %w", err)
	}
	return dropped, nil
}
