package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	clientcmd "github.com/ivan23kor/logpiper/internal/cmd/client"
	serverrun "github.com/ivan23kor/logpiper/internal/cmd/server"
	"github.com/ivan23kor/logpiper/internal/capture"
	cfgpkg "github.com/ivan23kor/logpiper/internal/config"
	"github.com/ivan23kor/logpiper/internal/runtime"
	logpkg "github.com/ivan23kor/logpiper/pkg/log"
	"github.com/spf13/cobra"
)

func main() {
	// Respect LOGPIPER_LOG_LEVEL for both CLI and server start output
	level := os.Getenv("LOGPIPER_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "logpiper",
		Short: "Process output capture and retrieval",
		Long:  "logpiper captures a command's output into per-session log records and serves them for cursor-based retrieval.",
	}
	rootCmd.PersistentFlags().String("data-dir", os.Getenv("LOGPIPER_DATA_DIR"), "Data directory (if not specified, uses OS-specific application data directory)")
	rootCmd.PersistentFlags().String("config", os.Getenv("LOGPIPER_CONFIG"), "Config file (JSON or YAML)")

	dataDirFlag := func(cmd *cobra.Command) string {
		dir, _ := cmd.Flags().GetString("data-dir")
		return dir
	}
	loadConfig := func(cmd *cobra.Command) (cfgpkg.Config, error) {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := cfgpkg.Load(path)
		if err != nil {
			return cfgpkg.Config{}, err
		}
		cfgpkg.FromEnv(&cfg)
		return cfg, nil
	}
	openRuntime := func(cmd *cobra.Command) (*runtime.Runtime, error) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return nil, err
		}
		dir := dataDirFlag(cmd)
		if dir == "" {
			dir = cfg.DataDir
		}
		return runtime.Open(runtime.Options{
			DataDir: dir,
			Config:  cfg,
			Logger:  logger,
		})
	}

	// run
	runCmd := &cobra.Command{
		Use:   "run -- <command> [args...]",
		Short: "Run a command, capturing its output into a session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir, _ := cmd.Flags().GetString("workdir")
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			runner := capture.NewRunner(rt, logger)
			res, err := runner.Run(ctx, workDir, args[0], args[1:])
			if err != nil {
				return err
			}
			logger.Info("session recorded", logpkg.Str("session", res.SessionID))
			if res.ExitCode != 0 {
				os.Exit(res.ExitCode)
			}
			return nil
		},
	}
	runCmd.Flags().String("workdir", "", "Working directory for the child (default: current directory)")
	rootCmd.AddCommand(runCmd)

	// pipe
	pipeCmd := &cobra.Command{
		Use:   "pipe",
		Short: "Capture stdin into a session until EOF",
		RunE: func(cmd *cobra.Command, _ []string) error {
			label, _ := cmd.Flags().GetString("label")
			workDir, _ := cmd.Flags().GetString("workdir")
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			runner := capture.NewRunner(rt, logger)
			// captured stdin is not mirrored back to the terminal
			runner.Stdout = nil
			res, err := runner.RunPipe(ctx, workDir, label)
			if err != nil {
				return err
			}
			logger.Info("session recorded", logpkg.Str("session", res.SessionID))
			return nil
		},
	}
	pipeCmd.Flags().String("label", "", "Name of the upstream producer (default: stdin)")
	pipeCmd.Flags().String("workdir", "", "Project directory the capture belongs to (default: current directory)")
	rootCmd.AddCommand(pipeCmd)

	// serve
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the retrieval HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			httpAddr, _ := cmd.Flags().GetString("http")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")
			if logLevel != "" {
				_ = os.Setenv("LOGPIPER_LOG_LEVEL", logLevel)
			}
			if logFormat != "" {
				_ = os.Setenv("LOGPIPER_LOG_FORMAT", logFormat)
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := serverrun.Run(ctx, serverrun.Options{
				DataDir:  dataDirFlag(cmd),
				HTTPAddr: httpAddr,
				Config:   cfg,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	serveCmd.Flags().String("http", ":8080", "HTTP listen address")
	serveCmd.Flags().String("log-level", os.Getenv("LOGPIPER_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serveCmd.Flags().String("log-format", os.Getenv("LOGPIPER_LOG_FORMAT"), "Log format: text|json (default text)")
	rootCmd.AddCommand(serveCmd)

	// client command groups
	rootCmd.AddCommand(clientcmd.NewSessionsCommand(func() string {
		dir, _ := rootCmd.PersistentFlags().GetString("data-dir")
		return dir
	}))
	rootCmd.AddCommand(clientcmd.NewLogsCommand(apiURL))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// apiURL returns the server base URL from LOGPIPER_HTTP or a local default.
func apiURL() string {
	if v := os.Getenv("LOGPIPER_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
