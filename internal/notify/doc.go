// Package notify batches and rate-limits detector hits before handing them to
// a pluggable sink. Hits arriving inside one batch window are delivered
// together; deliveries are spaced out by a minimum interval regardless of how
// fast hits arrive.
package notify
