package runtime

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	cfgpkg "github.com/ivan23kor/logpiper/internal/config"
	"github.com/ivan23kor/logpiper/internal/logstore"
	"github.com/ivan23kor/logpiper/internal/session"
	logpkg "github.com/ivan23kor/logpiper/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir string
	Config  cfgpkg.Config
	Logger  logpkg.Logger
}

// Runtime wires storage, config, and the session directory for one instance.
type Runtime struct {
	dataDir  string
	config   cfgpkg.Config
	logger   logpkg.Logger
	sessions *session.Store
	records  *logstore.Store
}

// Open initializes the data directory layout and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	if opts.Logger == nil {
		opts.Logger = logpkg.NewLogger()
	}
	sessionDir := filepath.Join(opts.DataDir, "sessions")
	sessions, err := session.NewStore(sessionDir)
	if err != nil {
		return nil, err
	}
	return &Runtime{
		dataDir:  opts.DataDir,
		config:   opts.Config,
		logger:   opts.Logger,
		sessions: sessions,
		records:  logstore.NewStore(sessionDir),
	}, nil
}

// Close releases runtime resources. The stores are filesystem-backed and
// hold no open handles between operations.
func (r *Runtime) Close() error { return nil }

// CheckHealth verifies the data directory is present and usable.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(r.sessions.Dir())
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("session path is not a directory")
	}
	return nil
}

// Sessions returns the session metadata store.
func (r *Runtime) Sessions() *session.Store { return r.sessions }

// Records returns the record store.
func (r *Runtime) Records() *logstore.Store { return r.records }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// Logger returns the runtime logger.
func (r *Runtime) Logger() logpkg.Logger { return r.logger }

// DataDir returns the resolved data directory.
func (r *Runtime) DataDir() string { return r.dataDir }
