package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Helper functions for common HTTP responses.

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON writes a JSON response with the given data.
func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// parseLimit parses a limit query value.
//
// Returns def for empty strings, 0 for explicit "0", and def for garbage.
func parseLimit(limitStr string, def int) int {
	if limitStr == "" {
		return def
	}
	if limit, err := strconv.Atoi(limitStr); err == nil && limit >= 0 {
		return limit
	}
	return def
}

// parseCursor parses a cursor query value. Absent or invalid values mean
// "from the beginning" (cursor 0).
func parseCursor(s string) uint64 {
	if s == "" {
		return 0
	}
	if c, err := strconv.ParseUint(s, 10, 64); err == nil {
		return c
	}
	return 0
}

// parseBool parses a boolean query value with a default for absence.
func parseBool(s string, def bool) bool {
	if s == "" {
		return def
	}
	return s == "true" || s == "1"
}
