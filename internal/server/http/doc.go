// Package httpserver exposes the session directory and log retrieval
// operations as a JSON-over-HTTP API under /v1.
package httpserver
