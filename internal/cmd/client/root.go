// Package client contains Cobra CLI commands for logpiper.
package client

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// DataDirFunc provides the resolved data directory for filesystem commands.
type DataDirFunc func() string
