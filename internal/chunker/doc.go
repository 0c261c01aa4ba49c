// Package chunker groups a continuous stream of raw output lines into
// coherent log records, balancing responsiveness against fragmentation.
//
// A burst of lines is appended to the in-progress chunk unless a flush is
// first required: the channel changed, the chunk hit its line or byte
// budget, or the burst carries a different service prefix. An inactivity
// timer bounds record latency for quiet streams, and Close forces a final
// flush so trailing output is never lost on shutdown.
package chunker
