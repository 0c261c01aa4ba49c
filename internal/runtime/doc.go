// Package runtime wires the data directory, configuration, and stores for a
// single logpiper instance. Producers (capture) and consumers (server, CLI)
// both open a Runtime; coordination between them happens through the
// filesystem, not through shared in-process state.
package runtime
