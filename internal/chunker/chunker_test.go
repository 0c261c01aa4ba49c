package chunker

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ivan23kor/logpiper/internal/config"
	"github.com/ivan23kor/logpiper/internal/logstore"
)

type flushed struct {
	channel logstore.Channel
	content string
	at      time.Time
}

type captureSink struct {
	mu      sync.Mutex
	flushes []flushed
}

func (cs *captureSink) sink(channel logstore.Channel, content string, at time.Time) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.flushes = append(cs.flushes, flushed{channel, content, at})
	return nil
}

func (cs *captureSink) all() []flushed {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]flushed(nil), cs.flushes...)
}

// newChunker uses a long inactivity window so tests control flush timing.
func newChunker(cs *captureSink) *Chunker {
	return New(config.ChunkingConfig{MaxLines: 20, MaxBytes: 8 << 10, FlushIntervalMs: 60_000}, cs.sink, nil)
}

func lines(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = prefix
	}
	return out
}

func TestChannelChangeFlushes(t *testing.T) {
	cs := &captureSink{}
	c := newChunker(cs)
	now := time.Now()

	c.Ingest(logstore.ChannelStdout, []string{"out 1", "out 2"}, now)
	c.Ingest(logstore.ChannelStderr, []string{"err 1"}, now)
	c.Close()

	got := cs.all()
	if len(got) != 2 {
		t.Fatalf("want 2 records, got %d", len(got))
	}
	if got[0].channel != logstore.ChannelStdout || got[0].content != "out 1\nout 2" {
		t.Fatalf("unexpected first record: %+v", got[0])
	}
	if got[1].channel != logstore.ChannelStderr || got[1].content != "err 1" {
		t.Fatalf("unexpected second record: %+v", got[1])
	}
}

func TestLineBudgetFlushesMidBurst(t *testing.T) {
	cs := &captureSink{}
	c := newChunker(cs)

	// a 25-line burst flushes at line 20, leaving 5 buffered
	c.Ingest(logstore.ChannelStdout, lines("x", 25), time.Now())
	got := cs.all()
	if len(got) != 1 {
		t.Fatalf("want 1 eager flush, got %d", len(got))
	}
	if n := strings.Count(got[0].content, "\n") + 1; n != 20 {
		t.Fatalf("want 20 lines in flushed record, got %d", n)
	}

	c.Close()
	got = cs.all()
	if len(got) != 2 {
		t.Fatalf("want buffered tail flushed on close, got %d records", len(got))
	}
	if n := strings.Count(got[1].content, "\n") + 1; n != 5 {
		t.Fatalf("want 5 buffered lines, got %d", n)
	}
}

func TestByteBudgetFlushes(t *testing.T) {
	cs := &captureSink{}
	c := New(config.ChunkingConfig{MaxLines: 100, MaxBytes: 64, FlushIntervalMs: 60_000}, cs.sink, nil)

	big := strings.Repeat("a", 40)
	c.Ingest(logstore.ChannelStdout, []string{big}, time.Now())
	// 41 + 41 bytes would exceed the 64-byte budget; the first chunk flushes
	c.Ingest(logstore.ChannelStdout, []string{big}, time.Now())
	got := cs.all()
	if len(got) != 1 {
		t.Fatalf("want 1 flush on byte budget, got %d", len(got))
	}
	if got[0].content != big {
		t.Fatalf("unexpected content %q", got[0].content)
	}
}

func TestServicePrefixChangeFlushes(t *testing.T) {
	cs := &captureSink{}
	c := newChunker(cs)
	now := time.Now()

	c.Ingest(logstore.ChannelStdout, []string{"api | listening"}, now)
	c.Ingest(logstore.ChannelStdout, []string{"api | ready"}, now)
	c.Ingest(logstore.ChannelStdout, []string{"worker | booted"}, now)
	c.Close()

	got := cs.all()
	if len(got) != 2 {
		t.Fatalf("want 2 records split by prefix, got %d", len(got))
	}
	if got[0].content != "api | listening\napi | ready" {
		t.Fatalf("unexpected api record: %q", got[0].content)
	}
	if got[1].content != "worker | booted" {
		t.Fatalf("unexpected worker record: %q", got[1].content)
	}
}

func TestUnprefixedLinesNeverTriggerPrefixRule(t *testing.T) {
	cs := &captureSink{}
	c := newChunker(cs)
	now := time.Now()

	c.Ingest(logstore.ChannelStdout, []string{"api | one"}, now)
	c.Ingest(logstore.ChannelStdout, []string{"plain continuation line"}, now)
	c.Close()

	got := cs.all()
	if len(got) != 1 {
		t.Fatalf("unprefixed burst should coalesce, got %d records", len(got))
	}
}

func TestInactivityTimerFlushes(t *testing.T) {
	cs := &captureSink{}
	c := New(config.ChunkingConfig{MaxLines: 20, MaxBytes: 8 << 10, FlushIntervalMs: 20}, cs.sink, nil)

	c.Ingest(logstore.ChannelStdout, []string{"lone line"}, time.Now())
	deadline := time.Now().Add(2 * time.Second)
	for len(cs.all()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timer flush never fired")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if cs.all()[0].content != "lone line" {
		t.Fatalf("unexpected content %q", cs.all()[0].content)
	}
	c.Close()
	if len(cs.all()) != 1 {
		t.Fatal("close after timer flush should not emit an empty record")
	}
}

func TestCloseFlushesTrailingOutput(t *testing.T) {
	cs := &captureSink{}
	c := newChunker(cs)

	c.Ingest(logstore.ChannelStderr, []string{"last words"}, time.Now())
	c.Close()
	got := cs.all()
	if len(got) != 1 || got[0].content != "last words" {
		t.Fatalf("trailing output lost: %+v", got)
	}

	// ingests after close are discarded
	c.Ingest(logstore.ChannelStdout, []string{"too late"}, time.Now())
	if len(cs.all()) != 1 {
		t.Fatal("ingest after close should be discarded")
	}
}

func TestFlushEmptyIsNoop(t *testing.T) {
	cs := &captureSink{}
	c := newChunker(cs)
	c.Flush()
	c.Close()
	if len(cs.all()) != 0 {
		t.Fatal("empty flush should emit nothing")
	}
}

func TestRecordTimestampIsFirstLineArrival(t *testing.T) {
	cs := &captureSink{}
	c := newChunker(cs)
	first := time.Unix(100, 0)
	second := time.Unix(200, 0)

	c.Ingest(logstore.ChannelStdout, []string{"a"}, first)
	c.Ingest(logstore.ChannelStdout, []string{"b"}, second)
	c.Close()
	got := cs.all()
	if len(got) != 1 {
		t.Fatalf("want 1 record, got %d", len(got))
	}
	if !got[0].at.Equal(first) {
		t.Fatalf("timestamp should be first arrival, got %v", got[0].at)
	}
}

func TestExtractServicePrefixOrder(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{"api | listening on :3000", "api"},
		{"[worker] job started", "worker"},
		{"db: connection pool ready", "db"},
		{"api | [worker] both", "api"},
		{"plain text line", ""},
		{"  leading space | no", ""},
		{"toolongname" + strings.Repeat("x", 40) + " | y", ""},
	}
	for _, tc := range cases {
		if got := ExtractServicePrefix(tc.line); got != tc.want {
			t.Fatalf("ExtractServicePrefix(%q) = %q, want %q", tc.line, got, tc.want)
		}
	}
}
