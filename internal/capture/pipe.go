package capture

import (
	"context"
	"os"

	"github.com/ivan23kor/logpiper/internal/logstore"
	"github.com/ivan23kor/logpiper/internal/session"
	logpkg "github.com/ivan23kor/logpiper/pkg/log"
)

// RunPipe captures piped stdin as the session's primary channel until EOF or
// ctx cancellation. label names the upstream producer in the session
// metadata; it defaults to "stdin".
func (r *Runner) RunPipe(ctx context.Context, workDir, label string) (Result, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Result{}, err
		}
		workDir = wd
	}
	if label == "" {
		label = "stdin"
	}

	sess, appender, err := r.openSession(workDir, label, nil)
	if err != nil {
		return Result{}, err
	}

	ch, notifier := r.buildPipeline(sess, appender)
	r.logger.Info("pipe capture started", logpkg.Str("session", sess.ID), logpkg.Str("label", label))

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.scanPipe(r.Stdin, logstore.ChannelStdout, r.Stdout, ch)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		// stdin may still be open; the final flush below preserves whatever
		// was buffered before the interrupt
	}

	r.finalize(sess, ch, notifier, session.StatusStopped, 0)
	return Result{SessionID: sess.ID}, nil
}
