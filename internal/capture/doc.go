// Package capture is the producer side of logpiper: it spawns a child
// process (or reads piped stdin), feeds its output through the chunking
// engine into the record store, and maintains the session's lifecycle
// metadata. Output is mirrored to the parent's stdout/stderr so wrapping a
// command stays transparent.
//
// Capture guarantees a final chunk flush on end-of-stream, process exit, and
// interrupt signals; trailing output is never lost.
package capture
