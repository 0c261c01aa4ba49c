package capture

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/ivan23kor/logpiper/internal/chunker"
	"github.com/ivan23kor/logpiper/internal/detect"
	"github.com/ivan23kor/logpiper/internal/logstore"
	"github.com/ivan23kor/logpiper/internal/notify"
	"github.com/ivan23kor/logpiper/internal/runtime"
	"github.com/ivan23kor/logpiper/internal/session"
	"github.com/ivan23kor/logpiper/pkg/id"
	logpkg "github.com/ivan23kor/logpiper/pkg/log"
)

// scanBufBytes bounds a single captured output line.
const scanBufBytes = 1 << 20

// Runner captures one command invocation per Run call.
type Runner struct {
	rt     *runtime.Runtime
	gen    *id.Generator
	logger logpkg.Logger

	// Stdout/Stderr receive the mirrored child output. Default to the
	// parent's own streams.
	Stdout io.Writer
	Stderr io.Writer

	// Stdin is the source read in pipe mode. Defaults to the parent's stdin.
	Stdin io.Reader
}

// NewRunner returns a Runner over rt.
func NewRunner(rt *runtime.Runtime, logger logpkg.Logger) *Runner {
	return &Runner{
		rt:     rt,
		gen:    id.NewGenerator(),
		logger: logger,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Stdin:  os.Stdin,
	}
}

// Result reports the outcome of a capture.
type Result struct {
	SessionID string
	ExitCode  int
}

// Run spawns the command, captures its output until exit or ctx
// cancellation, and finalizes the session. The child is asked to terminate
// with SIGTERM on cancellation and killed after a grace period.
func (r *Runner) Run(ctx context.Context, workDir, command string, args []string) (Result, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Result{}, err
		}
		workDir = wd
	}

	sess, appender, err := r.openSession(workDir, command, args)
	if err != nil {
		return Result{}, err
	}

	ch, notifier := r.buildPipeline(sess, appender)

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = workDir
	cmd.Stdin = os.Stdin
	cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGTERM) }
	cmd.WaitDelay = 5 * time.Second

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, err
	}
	if err := cmd.Start(); err != nil {
		r.finalize(sess, ch, notifier, session.StatusCrashed, -1)
		return Result{SessionID: sess.ID, ExitCode: -1}, fmt.Errorf("start %s: %w", command, err)
	}

	pid := cmd.Process.Pid
	sess.PID = &pid
	if err := r.rt.Sessions().Save(sess); err != nil {
		r.logger.Warn("persist session pid", logpkg.Err(err))
	}
	r.logger.Info("capture started",
		logpkg.Str("session", sess.ID),
		logpkg.Str("command", sess.Metadata.Signature),
		logpkg.Int("pid", pid),
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.scanPipe(stdout, logstore.ChannelStdout, r.Stdout, ch)
	}()
	go func() {
		defer wg.Done()
		r.scanPipe(stderr, logstore.ChannelStderr, r.Stderr, ch)
	}()
	wg.Wait()
	waitErr := cmd.Wait()

	exitCode := 0
	status := session.StatusStopped
	if waitErr != nil {
		exitCode = -1
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		// an interrupt requested by the caller is a stop, not a crash
		if ctx.Err() == nil {
			status = session.StatusCrashed
		}
	}
	r.finalize(sess, ch, notifier, status, exitCode)
	return Result{SessionID: sess.ID, ExitCode: exitCode}, nil
}

// openSession creates and persists a fresh running session plus its appender.
func (r *Runner) openSession(workDir, command string, args []string) (*session.Session, *logstore.Appender, error) {
	sig := id.Signature(command, args)
	project := filepath.Base(workDir)
	now := time.Now()
	sess := &session.Session{
		ID:           r.gen.NewSessionID(project, sig),
		WorkDir:      workDir,
		Command:      command,
		Args:         args,
		CreatedAt:    now,
		LastActivity: now,
		Status:       session.StatusRunning,
		Metadata: session.Metadata{
			Signature:   sig,
			ProjectName: project,
		},
	}
	if err := r.rt.Sessions().Save(sess); err != nil {
		return nil, nil, err
	}
	appender, err := logstore.OpenAppender(r.rt.Records(), sess.ID)
	if err != nil {
		return nil, nil, err
	}
	return sess, appender, nil
}

// buildPipeline wires appender, detector, and notifier behind one chunker.
func (r *Runner) buildPipeline(sess *session.Session, appender *logstore.Appender) (*chunker.Chunker, *notify.Notifier) {
	cfg := r.rt.Config()
	detector := detect.New(nil, time.Duration(cfg.Detect.CooldownMs)*time.Millisecond)
	notifier := notify.New(cfg.Notify, &notify.LogSink{Logger: r.logger})
	sink := func(channel logstore.Channel, content string, at time.Time) error {
		rec, err := appender.Append(channel, content, at)
		if err != nil {
			// a failed append breaks sequence contiguity; surface loudly
			r.logger.Error("record append failed", logpkg.Err(err), logpkg.Str("session", sess.ID))
			return err
		}
		for _, hit := range detector.Scan(rec) {
			notifier.Publish(hit)
		}
		return nil
	}
	return chunker.New(cfg.Chunking, sink, r.logger.With(logpkg.Component("chunker"))), notifier
}

// scanPipe reads one pipe line-wise, mirroring to out and feeding the chunker.
func (r *Runner) scanPipe(pipe io.Reader, channel logstore.Channel, out io.Writer, ch *chunker.Chunker) {
	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 64<<10), scanBufBytes)
	for scanner.Scan() {
		line := scanner.Text()
		if out != nil {
			fmt.Fprintln(out, line)
		}
		ch.Ingest(channel, []string{line}, time.Now())
	}
	if err := scanner.Err(); err != nil {
		r.logger.Warn("pipe scan ended", logpkg.Err(err), logpkg.Str("channel", string(channel)))
	}
}

// finalize force-flushes buffered output and records the terminal state.
func (r *Runner) finalize(sess *session.Session, ch *chunker.Chunker, notifier *notify.Notifier, status session.Status, exitCode int) {
	ch.Close()
	notifier.Close()
	now := time.Now()
	sess.Status = status
	sess.EndedAt = &now
	sess.LastActivity = now
	if err := r.rt.Sessions().Save(sess); err != nil {
		r.logger.Error("persist terminal session state", logpkg.Err(err), logpkg.Str("session", sess.ID))
	}
	r.logger.Info("capture finished",
		logpkg.Str("session", sess.ID),
		logpkg.Str("status", string(status)),
		logpkg.Int("exit_code", exitCode),
	)
}
