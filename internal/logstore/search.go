package logstore

import "strings"

// SearchPage is the result of a substring search. Unlike Page, its cursors
// are match ordinals: NextCursor is the number of matches consumed so far,
// and Total is the total match count.
type SearchPage struct {
	Records     []Record
	Total       int
	NextCursor  *uint64
	PrevCursor  *uint64
	HasMore     bool
	HasPrevious bool
}

// Search streams the record file matching query case-insensitively against
// record content and the session's originating command string. The first
// cursor matches are skipped; up to limit post-cursor matches are collected
// subject to the same serialized-size budget as forward reads.
func (s *Store) Search(sessionID, query, command string, cursor uint64, limit, maxBytes int) (SearchPage, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultReadMaxBytes
	}
	q := strings.ToLower(query)
	commandMatches := q != "" && strings.Contains(strings.ToLower(command), q)

	var page SearchPage
	size := 0
	err := s.scanLines(sessionID, func(line []byte) bool {
		rec, ok := ParseLine(line)
		if !ok {
			return true
		}
		if !commandMatches && !strings.Contains(strings.ToLower(rec.Content), q) {
			return true
		}
		page.Total++
		if uint64(page.Total) <= cursor {
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
		return SearchPage{}, err
	}
	if page.HasMore {
		next := cursor + uint64(len(page.Records))
		page.NextCursor = &next
	}
	if cursor > 0 {
		page.HasPrevious = true
		prev := uint64(0)
		if limit > 0 && cursor > uint64(limit) {
			prev = cursor - uint64(limit)
		}
		page.PrevCursor = &prev
	}
	return page, nil
}
