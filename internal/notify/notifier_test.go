package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/ivan23kor/logpiper/internal/config"
	"github.com/ivan23kor/logpiper/internal/detect"
)

type captureSink struct {
	mu      sync.Mutex
	batches []Batch
}

func (s *captureSink) Send(batch Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, batch)
	return nil
}

func (s *captureSink) all() []Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Batch(nil), s.batches...)
}

func hit(pattern string) detect.Hit {
	return detect.Hit{SessionID: "sess", Pattern: pattern, Severity: detect.SeverityError, Line: pattern}
}

func TestBatchWindowCoalesces(t *testing.T) {
	sink := &captureSink{}
	n := New(config.NotifyConfig{BatchWindowMs: 20, MinIntervalMs: 1, MaxBatch: 10}, sink)

	n.Publish(hit("a"))
	n.Publish(hit("b"))
	n.Publish(hit("c"))

	deadline := time.Now().Add(2 * time.Second)
	for len(sink.all()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("batch never delivered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	batches := sink.all()
	if len(batches) != 1 {
		t.Fatalf("want one coalesced batch, got %d", len(batches))
	}
	if len(batches[0].Notifications) != 3 {
		t.Fatalf("want 3 notifications, got %d", len(batches[0].Notifications))
	}
	n.Close()
}

func TestMaxBatchSuppressesOverflow(t *testing.T) {
	sink := &captureSink{}
	n := New(config.NotifyConfig{BatchWindowMs: 60_000, MinIntervalMs: 1, MaxBatch: 2}, sink)

	n.Publish(hit("a"))
	n.Publish(hit("b"))
	n.Publish(hit("c"))
	n.Publish(hit("d"))
	n.Flush()

	batches := sink.all()
	if len(batches) != 1 {
		t.Fatalf("want 1 batch, got %d", len(batches))
	}
	if len(batches[0].Notifications) != 2 || batches[0].Suppressed != 2 {
		t.Fatalf("want 2 delivered / 2 suppressed, got %d/%d",
			len(batches[0].Notifications), batches[0].Suppressed)
	}
	n.Close()
}

func TestCloseFlushesPending(t *testing.T) {
	sink := &captureSink{}
	n := New(config.NotifyConfig{BatchWindowMs: 60_000, MinIntervalMs: 60_000, MaxBatch: 10}, sink)

	n.Publish(hit("a"))
	n.Close()

	batches := sink.all()
	if len(batches) != 1 || len(batches[0].Notifications) != 1 {
		t.Fatalf("close should flush pending, got %+v", batches)
	}

	n.Publish(hit("late"))
	if len(sink.all()) != 1 {
		t.Fatal("publish after close should be discarded")
	}
}

func TestMinIntervalDelaysSecondBatch(t *testing.T) {
	sink := &captureSink{}
	n := New(config.NotifyConfig{BatchWindowMs: 5, MinIntervalMs: 200, MaxBatch: 10}, sink)
	base := time.Unix(1000, 0)
	current := base
	n.now = func() time.Time { return current }

	n.Publish(hit("a"))
	n.Flush()
	if len(sink.all()) != 1 {
		t.Fatal("first delivery should be immediate")
	}

	// second publish right after a delivery: timer is pushed past the
	// minimum interval rather than firing at the batch window
	n.Publish(hit("b"))
	time.Sleep(50 * time.Millisecond)
	if len(sink.all()) != 1 {
		t.Fatal("second batch should still be waiting out the min interval")
	}
	n.Close()
	if len(sink.all()) != 2 {
		t.Fatal("close should deliver the held batch")
	}
}

func TestEmptyFlushSendsNothing(t *testing.T) {
	sink := &captureSink{}
	n := New(config.NotifyConfig{}, sink)
	n.Flush()
	n.Close()
	if len(sink.all()) != 0 {
		t.Fatal("empty flush should not send")
	}
}
