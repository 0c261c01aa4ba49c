package notify

import (
	"sync"
	"time"

	"github.com/ivan23kor/logpiper/internal/config"
	"github.com/ivan23kor/logpiper/internal/detect"
	logpkg "github.com/ivan23kor/logpiper/pkg/log"
)

// Notification is one deliverable detector hit.
type Notification struct {
	SessionID string
	Pattern   string
	Severity  detect.Severity
	Line      string
	At        time.Time
}

// Batch is one rate-limited delivery. Suppressed counts hits dropped beyond
// the batch cap.
type Batch struct {
	Notifications []Notification
	Suppressed    int
}

// Sink receives batched notifications.
type Sink interface {
	Send(batch Batch) error
}

// LogSink writes batches to the structured logger. It is the default sink.
type LogSink struct {
	Logger logpkg.Logger
}

// Send logs every notification in the batch.
func (s *LogSink) Send(batch Batch) error {
	for _, n := range batch.Notifications {
		s.Logger.Warn("detected error pattern",
			logpkg.Str("session", n.SessionID),
			logpkg.Str("pattern", n.Pattern),
			logpkg.Str("severity", string(n.Severity)),
			logpkg.Str("line", n.Line),
		)
	}
	if batch.Suppressed > 0 {
		s.Logger.Warn("notifications suppressed", logpkg.Int("count", batch.Suppressed))
	}
	return nil
}

// Notifier batches hits within a window and enforces a minimum interval
// between deliveries.
type Notifier struct {
	cfg  config.NotifyConfig
	sink Sink
	now  func() time.Time

	mu       sync.Mutex
	pending  []Notification
	dropped  int
	timer    *time.Timer
	lastSend time.Time
	closed   bool
}

// New returns a Notifier delivering to sink. Zero config values fall back to
// the built-in defaults.
func New(cfg config.NotifyConfig, sink Sink) *Notifier {
	def := config.Default().Notify
	if cfg.BatchWindowMs <= 0 {
		cfg.BatchWindowMs = def.BatchWindowMs
	}
	if cfg.MinIntervalMs <= 0 {
		cfg.MinIntervalMs = def.MinIntervalMs
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = def.MaxBatch
	}
	return &Notifier{cfg: cfg, sink: sink, now: time.Now}
}

// Publish queues a hit for delivery.
func (n *Notifier) Publish(hit detect.Hit) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	if len(n.pending) >= n.cfg.MaxBatch {
		n.dropped++
		return
	}
	n.pending = append(n.pending, Notification{
		SessionID: hit.SessionID,
		Pattern:   hit.Pattern,
		Severity:  hit.Severity,
		Line:      hit.Line,
		At:        hit.At,
	})
	n.scheduleLocked()
}

// Flush delivers anything pending, ignoring the batch window but still
// honoring the minimum send interval via delay-free best effort (a final
// flush on shutdown must not wait).
func (n *Notifier) Flush() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deliverLocked()
}

// Close flushes and stops the notifier. Further publishes are discarded.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deliverLocked()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.closed = true
}

// scheduleLocked arms the delivery timer for the batch window, pushed out
// further if the minimum interval since the last delivery has not elapsed.
func (n *Notifier) scheduleLocked() {
	if n.timer != nil {
		return
	}
	delay := time.Duration(n.cfg.BatchWindowMs) * time.Millisecond
	minInterval := time.Duration(n.cfg.MinIntervalMs) * time.Millisecond
	if since := n.now().Sub(n.lastSend); !n.lastSend.IsZero() && since < minInterval {
		if wait := minInterval - since; wait > delay {
			delay = wait
		}
	}
	n.timer = time.AfterFunc(delay, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.timer = nil
		n.deliverLocked()
	})
}

func (n *Notifier) deliverLocked() {
	if len(n.pending) == 0 && n.dropped == 0 {
		return
	}
	batch := Batch{Notifications: n.pending, Suppressed: n.dropped}
	n.pending = nil
	n.dropped = 0
	n.lastSend = n.now()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	_ = n.sink.Send(batch)
}
