// Package serverrun exposes a shared Run entrypoint used by the CLI to start
// the retrieval HTTP server, handling lifecycle and shutdown.
package serverrun

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cfgpkg "github.com/ivan23kor/logpiper/internal/config"
	"github.com/ivan23kor/logpiper/internal/runtime"
	httpserver "github.com/ivan23kor/logpiper/internal/server/http"
	logpkg "github.com/ivan23kor/logpiper/pkg/log"
)

// small wrapper to allow testing; replaced by os.Getenv at build time
var getenv = func(key string) string { return os.Getenv(key) }

func getenvDefault(key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

// Options configure one server run.
type Options struct {
	DataDir  string
	HTTPAddr string
	Config   cfgpkg.Config
}

// Run starts the HTTP server and blocks until ctx is cancelled or a
// termination signal arrives.
func Run(ctx context.Context, opts Options) error {
	// Layer a local signal context over the provided one so callers without
	// signal-aware contexts still shut down cleanly.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}

	cfg := &logpkg.Config{
		Level:  getenvDefault("LOGPIPER_LOG_LEVEL", "info"),
		Format: getenvDefault("LOGPIPER_LOG_FORMAT", "text"),
	}
	procLogger, err := logpkg.ApplyConfig(cfg)
	if err != nil {
		lvl := logpkg.InfoLevel
		if l, e := logpkg.ParseLevel(cfg.Level); e == nil {
			lvl = l
		}
		procLogger = logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}
	logpkg.RedirectStdLog(procLogger)

	rt, err := runtime.Open(runtime.Options{
		DataDir: opts.DataDir,
		Config:  opts.Config,
		Logger:  procLogger.With(logpkg.Component("runtime")),
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	procLogger.Info("Starting logpiper server",
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("data_dir", opts.DataDir),
		logpkg.Str("level", cfg.Level),
		logpkg.Str("format", cfg.Format),
	)

	hsrv := httpserver.New(rt)
	defer hsrv.Close()
	// ListenAndServe drains in-flight requests itself on cancellation.
	return hsrv.ListenAndServe(sctx, opts.HTTPAddr)
}
