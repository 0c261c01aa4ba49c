package runtime

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	cfgpkg "github.com/ivan23kor/logpiper/internal/config"
)

func TestOpenCreatesLayout(t *testing.T) {
	dir := t.TempDir()
	rt, err := Open(Options{DataDir: dir, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })

	if _, err := os.Stat(filepath.Join(dir, "sessions")); err != nil {
		t.Fatalf("sessions dir missing: %v", err)
	}
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if rt.Sessions().Dir() != rt.Records().Dir() {
		t.Fatal("session and record stores must share a directory")
	}
}

func TestCheckHealthMissingDir(t *testing.T) {
	dir := t.TempDir()
	rt, err := Open(Options{DataDir: dir, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := os.RemoveAll(filepath.Join(dir, "sessions")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := rt.CheckHealth(context.Background()); err == nil {
		t.Fatal("expected health failure after dir removal")
	}
}
