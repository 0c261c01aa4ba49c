package id

import (
	"strings"
	"testing"
)

func TestNewSessionIDParts(t *testing.T) {
	g := NewGenerator()
	sid := g.NewSessionID("My Project", Signature("npm", []string{"run", "dev"}))
	parts := strings.Split(sid, "_")
	if len(parts) != 3 {
		t.Fatalf("want 3 parts, got %d (%s)", len(parts), sid)
	}
	if parts[0] != "my-project" {
		t.Fatalf("unexpected project part %q", parts[0])
	}
	if len(parts[1]) != 8 {
		t.Fatalf("unexpected hash part %q", parts[1])
	}
}

func TestSameMillisecondDoesNotCollide(t *testing.T) {
	orig := NowMs
	NowMs = func() int64 { return 1000 }
	defer func() { NowMs = orig }()

	g := NewGenerator()
	a := g.NewSessionID("p", "cmd")
	b := g.NewSessionID("p", "cmd")
	if a == b {
		t.Fatalf("ids collided: %s", a)
	}
}

func TestSanitizeEmpty(t *testing.T) {
	g := NewGenerator()
	sid := g.NewSessionID("///", "cmd")
	if !strings.HasPrefix(sid, "session_") {
		t.Fatalf("expected fallback project name, got %s", sid)
	}
}
