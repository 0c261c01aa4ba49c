package detect

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ivan23kor/logpiper/internal/logstore"
)

// Severity grades a classified hit.
type Severity string

// Severities, highest first.
const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
	SeverityWarning  Severity = "warning"
)

// Pattern is one classification rule.
type Pattern struct {
	Name     string
	Severity Severity
	Re       *regexp.Regexp
}

// DefaultPatterns returns the built-in classification rules.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{Name: "panic", Severity: SeverityCritical, Re: regexp.MustCompile(`(?i)\bpanic:|\bsegmentation fault\b|\bfatal error\b`)},
		{Name: "exception", Severity: SeverityError, Re: regexp.MustCompile(`(?i)\b(unhandled |uncaught )?exception\b|\btraceback \(most recent call last\)`)},
		{Name: "import-error", Severity: SeverityError, Re: regexp.MustCompile(`(?i)\b(importerror|modulenotfounderror|cannot find module)\b`)},
		{Name: "error", Severity: SeverityError, Re: regexp.MustCompile(`(?i)\berror\b[:!]?`)},
		{Name: "fs-error", Severity: SeverityError, Re: regexp.MustCompile(`\b(ENOENT|EACCES|EADDRINUSE|ECONNREFUSED)\b`)},
		{Name: "failed", Severity: SeverityWarning, Re: regexp.MustCompile(`(?i)\b(failed|failure)\b`)},
		{Name: "warning", Severity: SeverityWarning, Re: regexp.MustCompile(`(?i)\bwarn(ing)?\b[:!]?`)},
	}
}

// Hit is one classified occurrence within a record.
type Hit struct {
	Pattern   string
	Severity  Severity
	SessionID string
	Sequence  uint64
	Line      string
	At        time.Time
}

// Detector scans records for one session. It holds the per-pattern cooldown
// state, so each session gets its own Detector instance.
type Detector struct {
	patterns []Pattern
	cooldown time.Duration
	now      func() time.Time

	mu       sync.Mutex
	lastFire map[string]time.Time
}

// New returns a Detector with the given patterns and cooldown window.
// A nil patterns slice uses DefaultPatterns.
func New(patterns []Pattern, cooldown time.Duration) *Detector {
	if patterns == nil {
		patterns = DefaultPatterns()
	}
	return &Detector{
		patterns: patterns,
		cooldown: cooldown,
		now:      time.Now,
		lastFire: make(map[string]time.Time),
	}
}

// Scan classifies a record's content line by line, returning at most one hit
// per pattern per cooldown window.
func (d *Detector) Scan(rec logstore.Record) []Hit {
	var hits []Hit
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	for _, line := range strings.Split(rec.Content, "\n") {
		for _, p := range d.patterns {
			if !p.Re.MatchString(line) {
				continue
			}
			if last, ok := d.lastFire[p.Name]; ok && now.Sub(last) < d.cooldown {
				continue
			}
			d.lastFire[p.Name] = now
			hits = append(hits, Hit{
				Pattern:   p.Name,
				Severity:  p.Severity,
				SessionID: rec.SessionID,
				Sequence:  rec.SequenceNumber,
				Line:      line,
				At:        now,
			})
		}
	}
	return hits
}
