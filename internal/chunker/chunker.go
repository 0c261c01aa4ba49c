package chunker

import (
	"strings"
	"sync"
	"time"

	"github.com/ivan23kor/logpiper/internal/config"
	"github.com/ivan23kor/logpiper/internal/logstore"
	logpkg "github.com/ivan23kor/logpiper/pkg/log"
)

// Sink receives one flushed chunk as a single record's worth of content.
// The timestamp is the arrival time of the chunk's first line.
type Sink func(channel logstore.Channel, content string, at time.Time) error

type chunkLine struct {
	text string
	at   time.Time
}

// Chunker accumulates output lines for one session and flushes them to its
// sink according to the chunking rules. Safe for use by multiple producer
// goroutines (one per captured pipe).
type Chunker struct {
	cfg    config.ChunkingConfig
	sink   Sink
	logger logpkg.Logger

	mu      sync.Mutex
	lines   []chunkLine
	channel logstore.Channel
	prefix  string
	size    int
	timer   *time.Timer
	closed  bool
}

// New returns a Chunker flushing to sink. Zero config values fall back to
// the built-in defaults.
func New(cfg config.ChunkingConfig, sink Sink, logger logpkg.Logger) *Chunker {
	def := config.Default().Chunking
	if cfg.MaxLines <= 0 {
		cfg.MaxLines = def.MaxLines
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = def.MaxBytes
	}
	if cfg.FlushIntervalMs <= 0 {
		cfg.FlushIntervalMs = def.FlushIntervalMs
	}
	return &Chunker{cfg: cfg, sink: sink, logger: logger}
}

// Ingest appends a burst of lines arriving on channel, flushing the
// in-progress chunk first when the rules require it. Every ingest rearms the
// inactivity timer.
func (c *Chunker) Ingest(channel logstore.Channel, lines []string, at time.Time) {
	if len(lines) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	burstSize := 0
	for _, l := range lines {
		burstSize += len(l) + 1
	}

	if len(c.lines) > 0 {
		switch {
		case channel != c.channel:
			c.flushLocked()
		case len(c.lines) >= c.cfg.MaxLines:
			c.flushLocked()
		case c.size+burstSize > c.cfg.MaxBytes:
			c.flushLocked()
		default:
			if p := ExtractServicePrefix(lines[0]); p != "" && p != c.prefix {
				c.flushLocked()
			}
		}
	}

	for _, l := range lines {
		if len(c.lines) == 0 {
			c.channel = channel
			c.prefix = ExtractServicePrefix(l)
		}
		c.lines = append(c.lines, chunkLine{text: l, at: at})
		c.size += len(l) + 1
		// a burst may itself overflow the line budget
		if len(c.lines) >= c.cfg.MaxLines {
			c.flushLocked()
		}
	}
	if len(c.lines) == 0 {
		// everything flushed; nothing left to schedule
		c.stopTimerLocked()
		return
	}
	c.armTimerLocked()
}

// Flush flushes the in-progress chunk on demand. Flushing an empty
// accumulator is a no-op.
func (c *Chunker) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushLocked()
}

// Close performs a final flush and stops the inactivity timer. Further
// ingests are discarded.
func (c *Chunker) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushLocked()
	c.stopTimerLocked()
	c.closed = true
}

func (c *Chunker) armTimerLocked() {
	c.stopTimerLocked()
	c.timer = time.AfterFunc(time.Duration(c.cfg.FlushIntervalMs)*time.Millisecond, c.Flush)
}

func (c *Chunker) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// flushLocked joins the accumulated lines into one record and hands it to the
// sink, then resets the accumulator. Caller holds c.mu.
func (c *Chunker) flushLocked() {
	if len(c.lines) == 0 {
		return
	}
	texts := make([]string, len(c.lines))
	for i, l := range c.lines {
		texts[i] = l.text
	}
	content := strings.Join(texts, "\n")
	at := c.lines[0].at
	channel := c.channel

	c.lines = nil
	c.prefix = ""
	c.size = 0
	c.stopTimerLocked()

	if err := c.sink(channel, content, at); err != nil && c.logger != nil {
		c.logger.Error("chunk flush failed", logpkg.Err(err), logpkg.Str("channel", string(channel)))
	}
}
