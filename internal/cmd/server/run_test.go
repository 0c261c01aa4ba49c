package serverrun

import (
	"context"
	"testing"
	"time"

	cfgpkg "github.com/ivan23kor/logpiper/internal/config"
)

func TestGetenvDefault(t *testing.T) {
	old := getenv
	defer func() { getenv = old }()
	getenv = func(key string) string {
		if key == "LOGPIPER_LOG_LEVEL" {
			return "debug"
		}
		return ""
	}
	if got := getenvDefault("LOGPIPER_LOG_LEVEL", "info"); got != "debug" {
		t.Fatalf("got %q", got)
	}
	if got := getenvDefault("LOGPIPER_LOG_FORMAT", "text"); got != "text" {
		t.Fatalf("got %q", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	dataDir := t.TempDir()
	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, Options{
			DataDir:  dataDir,
			HTTPAddr: "127.0.0.1:0",
			Config:   cfgpkg.Default(),
		})
	}()
	time.Sleep(200 * time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}
