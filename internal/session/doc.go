// Package session defines the Session entity and its on-disk metadata store.
//
// Each monitored command invocation is one Session. Metadata lives in
// <dataDir>/sessions/<id>.json and is rewritten wholesale on every mutation
// (status transition, cursor advancement). The companion record file
// <id>.jsonl is owned by package logstore; absence of either file for a
// listed id is treated as "no data", not an error.
package session
