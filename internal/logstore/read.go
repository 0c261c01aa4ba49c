package logstore

// DefaultReadMaxBytes caps the serialized size of one page of records.
const DefaultReadMaxBytes = 1 << 20

// Page is the result of a paginated read. Cursors are sequence numbers;
// a cursor of 0 means "from the beginning" (or "from the tail" for reverse
// reads).
type Page struct {
	Records []Record
	// Total is the raw line count observed in the same pass, well-formed or
	// not. Corrupt lines still count, so gaps in the visible sequence are
	// possible and expected.
	Total       int
	NextCursor  *uint64
	PrevCursor  *uint64
	HasMore     bool
	HasPrevious bool
}

// Count streams the record file counting line boundaries. Returns 0 for an
// absent file. O(n) by design: no index is maintained.
func (s *Store) Count(sessionID string) (int, error) {
	total := 0
	err := s.scanLines(sessionID, func([]byte) bool {
		total++
		return true
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ReadForward returns up to limit well-formed records with sequence numbers
// strictly greater than cursor (cursor 0 reads from the beginning). Collection
// stops early once maxBytes of serialized records have been gathered; the
// scan itself continues so Total reflects the whole file.
func (s *Store) ReadForward(sessionID string, cursor uint64, limit, maxBytes int) (Page, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultReadMaxBytes
	}
	var page Page
	size := 0
	err := s.scanLines(sessionID, func(line []byte) bool {
		page.Total++
		rec, ok := ParseLine(line)
		if !ok {
			return true
		}
		if cursor > 0 && rec.SequenceNumber <= cursor {
			page.HasPrevious = true
			return true
		}
		if limit <= 0 || len(page.Records) >= limit {
			page.HasMore = true
			return true
		}
		if len(page.Records) > 0 && size+len(line) > maxBytes {
			page.HasMore = true
			return true
		}
		size += len(line)
		page.Records = append(page.Records, rec)
		return true
	})
	if err != nil {
		return Page{}, err
	}
	if page.HasMore && len(page.Records) > 0 {
		last := page.Records[len(page.Records)-1].SequenceNumber
		page.NextCursor = &last
	}
	if page.HasPrevious && len(page.Records) > 0 {
		first := page.Records[0].SequenceNumber
		page.PrevCursor = &first
	}
	return page, nil
}

// ReadReverse returns the most recent limit records with sequence numbers
// strictly below cursor (cursor 0 reads the tail of the file), most recent
// first.
//
// This is two passes over the file: the first determines the line total and
// the highest sequence number, the second re-reads the computed window. The
// cost is a direct consequence of the forward-only, unindexed file format and
// is accepted.
func (s *Store) ReadReverse(sessionID string, cursor uint64, limit int) (Page, error) {
	var page Page
	var maxSeq uint64
	wellFormed := 0
	err := s.scanLines(sessionID, func(line []byte) bool {
		page.Total++
		if rec, ok := ParseLine(line); ok {
			wellFormed++
			if rec.SequenceNumber > maxSeq {
				maxSeq = rec.SequenceNumber
			}
		}
		return true
	})
	if err != nil {
		return Page{}, err
	}
	if wellFormed == 0 {
		return page, nil
	}
	if limit <= 0 {
		page.HasMore = true
		return page, nil
	}

	// Window in sequence space: the limit records strictly before cursor,
	// or the tail when cursor is 0.
	end := maxSeq + 1
	if cursor > 0 && cursor < end {
		end = cursor
	}
	start := uint64(0)
	if end > uint64(limit) {
		start = end - uint64(limit)
	}

	err = s.scanLines(sessionID, func(line []byte) bool {
		rec, ok := ParseLine(line)
		if !ok {
			return true
		}
		if rec.SequenceNumber >= start && rec.SequenceNumber < end {
			page.Records = append(page.Records, rec)
		}
		return true
	})
	if err != nil {
		return Page{}, err
	}
	for i, j := 0, len(page.Records)-1; i < j; i, j = i+1, j-1 {
		page.Records[i], page.Records[j] = page.Records[j], page.Records[i]
	}

	if start > 0 {
		page.HasMore = true
		next := start
		page.NextCursor = &next
	}
	if end <= maxSeq {
		page.HasPrevious = true
		prev := end
		page.PrevCursor = &prev
	}
	return page, nil
}
