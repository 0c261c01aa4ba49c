// Package logstore implements the per-session append-only record store and
// its cursor-based readers.
//
// # Format
//
// One <sessionId>.jsonl file per session, one JSON object per line:
//
//	{"id":"<sessionId>_<seq>","sessionId":"...","channel":"stdout",
//	 "timestamp":"...","content":"...","sequenceNumber":N}
//
// Sequence numbers are 0-based, strictly increasing per session, with no gaps
// or reuse. Lines that fail to parse are treated as corrupt: readers skip
// them (they still count toward raw line totals) and the consumption rewrite
// conservatively keeps them.
//
// # Readers
//
// All reads stream the file line by line; nothing loads a session's history
// into memory. There is no index, so Count and reverse reads are O(n) by
// design — read cost is traded for append simplicity. A read concurrent with
// a consumption rewrite may observe a shorter file at the boundary; readers
// are tolerant of short and malformed reads, and consumption only prunes
// ranges a caller has already been handed.
package logstore
