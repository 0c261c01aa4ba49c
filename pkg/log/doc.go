// Package log provides structured logging for logpiper components.
//
// Example:
//
//	logger := log.NewLogger(log.WithLevel(log.DebugLevel), log.WithFormatter(&log.TextFormatter{}))
//	logger = logger.With(log.Component("chunker"))
//	logger.Info("flushed chunk", log.Str("session", id), log.Int("lines", n))
package log
