package capture

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/ivan23kor/logpiper/internal/config"
	"github.com/ivan23kor/logpiper/internal/runtime"
	"github.com/ivan23kor/logpiper/internal/session"
	logpkg "github.com/ivan23kor/logpiper/pkg/log"
)

func testRunner(t *testing.T) (*Runner, *runtime.Runtime) {
	t.Helper()
	cfg := config.Default()
	// keep the inactivity flush quick so tests don't wait out the default
	cfg.Chunking.FlushIntervalMs = 50
	rt, err := runtime.Open(runtime.Options{
		DataDir: t.TempDir(),
		Config:  cfg,
		Logger:  logpkg.NewLogger(logpkg.WithLevel(logpkg.ErrorLevel)),
	})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	r := NewRunner(rt, rt.Logger())
	r.Stdout = io.Discard
	r.Stderr = io.Discard
	return r, rt
}

func TestRunCapturesOutputAndStops(t *testing.T) {
	r, rt := testRunner(t)

	res, err := r.Run(context.Background(), t.TempDir(), "sh", []string{"-c", "echo one; echo two; echo err >&2"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("exit code = %d, want 0", res.ExitCode)
	}

	sess, err := rt.Sessions().Load(res.SessionID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if sess.Status != session.StatusStopped {
		t.Fatalf("status = %q, want stopped", sess.Status)
	}
	if sess.EndedAt == nil {
		t.Fatal("EndedAt not set on terminal session")
	}
	if sess.PID == nil {
		t.Fatal("PID not persisted")
	}

	page, err := rt.Records().ReadForward(res.SessionID, 0, 100, 1<<20)
	if err != nil {
		t.Fatalf("read records: %v", err)
	}
	if page.Total == 0 {
		t.Fatal("no records captured")
	}
	var all strings.Builder
	for _, rec := range page.Records {
		all.WriteString(rec.Content)
		all.WriteString("\n")
	}
	for _, want := range []string{"one", "two", "err"} {
		if !strings.Contains(all.String(), want) {
			t.Fatalf("captured output missing %q:\n%s", want, all.String())
		}
	}
}

func TestRunNonZeroExitMarksCrashed(t *testing.T) {
	r, rt := testRunner(t)

	res, err := r.Run(context.Background(), t.TempDir(), "sh", []string{"-c", "echo boom; exit 3"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.ExitCode != 3 {
		t.Fatalf("exit code = %d, want 3", res.ExitCode)
	}
	sess, err := rt.Sessions().Load(res.SessionID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if sess.Status != session.StatusCrashed {
		t.Fatalf("status = %q, want crashed", sess.Status)
	}
}

func TestRunCancelledContextIsStopNotCrash(t *testing.T) {
	r, rt := testRunner(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()
	res, err := r.Run(ctx, t.TempDir(), "sh", []string{"-c", "echo started; sleep 30"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	sess, err := rt.Sessions().Load(res.SessionID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if sess.Status != session.StatusStopped {
		t.Fatalf("status = %q, want stopped after interrupt", sess.Status)
	}
}

func TestRunMissingBinaryCrashes(t *testing.T) {
	r, rt := testRunner(t)

	res, err := r.Run(context.Background(), t.TempDir(), "definitely-not-a-binary-xyz", nil)
	if err == nil {
		t.Fatal("expected start error for missing binary")
	}
	if res.SessionID == "" {
		t.Fatal("session should still be created for a failed start")
	}
	sess, err := rt.Sessions().Load(res.SessionID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if sess.Status != session.StatusCrashed {
		t.Fatalf("status = %q, want crashed", sess.Status)
	}
}

func TestRunPipeCapturesStdin(t *testing.T) {
	r, rt := testRunner(t)
	r.Stdin = strings.NewReader("alpha\nbeta\ngamma\n")

	res, err := r.RunPipe(context.Background(), t.TempDir(), "build-log")
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	sess, err := rt.Sessions().Load(res.SessionID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if sess.Status != session.StatusStopped {
		t.Fatalf("status = %q, want stopped at EOF", sess.Status)
	}
	if sess.Command != "build-log" {
		t.Fatalf("command = %q", sess.Command)
	}
	page, err := rt.Records().ReadForward(res.SessionID, 0, 10, 1<<20)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var all strings.Builder
	for _, rec := range page.Records {
		all.WriteString(rec.Content)
		all.WriteString("\n")
	}
	for _, want := range []string{"alpha", "beta", "gamma"} {
		if !strings.Contains(all.String(), want) {
			t.Fatalf("missing %q in captured input:\n%s", want, all.String())
		}
	}
}

func TestRunStderrChannelTagged(t *testing.T) {
	r, rt := testRunner(t)

	res, err := r.Run(context.Background(), t.TempDir(), "sh", []string{"-c", "echo oops >&2"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	page, err := rt.Records().ReadForward(res.SessionID, 0, 100, 1<<20)
	if err != nil {
		t.Fatalf("read records: %v", err)
	}
	found := false
	for _, rec := range page.Records {
		if rec.Channel == "stderr" && strings.Contains(rec.Content, "oops") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no stderr-tagged record with expected content: %+v", page.Records)
	}
}
