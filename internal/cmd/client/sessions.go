package client

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivan23kor/logpiper/internal/config"
	"github.com/ivan23kor/logpiper/internal/logstore"
	"github.com/ivan23kor/logpiper/internal/session"
)

// NewSessionsCommand constructs the `sessions` command group.
//
// Session commands work directly against the data directory; no server is
// required.
func NewSessionsCommand(dataDir DataDirFunc) *cobra.Command {
	sessionsCmd := &cobra.Command{Use: "sessions", Short: "Session directory operations"}
	sessionsCmd.AddCommand(
		newSessionsListCommand(dataDir),
		newSessionsShowCommand(dataDir),
		newSessionsResetCommand(dataDir),
		newSessionsCleanupCommand(dataDir),
	)
	return sessionsCmd
}

func openStores(dataDir DataDirFunc) (*session.Store, *logstore.Store, error) {
	dir := dataDir()
	if dir == "" {
		dir = config.DefaultDataDir()
	}
	sessions, err := session.NewStore(filepath.Join(dir, "sessions"))
	if err != nil {
		return nil, nil, err
	}
	return sessions, logstore.NewStore(sessions.Dir()), nil
}

func toSessionRow(s *session.Session) sessionRow {
	return sessionRow{
		ID:           s.ID,
		Command:      s.Command,
		ProjectName:  s.Metadata.ProjectName,
		Status:       string(s.Status),
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
		EndedAt:      s.EndedAt,
		Cursor:       s.Cursor,
		Signature:    s.Metadata.Signature,
		WorkDir:      s.WorkDir,
	}
}

// newSessionsListCommand constructs the `sessions list` subcommand.
func newSessionsListCommand(dataDir DataDirFunc) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List captured sessions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, _ := cmd.Flags().GetString("status")
			format, _ := cmd.Flags().GetString("format")
			sessions, _, err := openStores(dataDir)
			if err != nil {
				return err
			}
			var list []*session.Session
			if status != "" {
				list, err = sessions.ListByStatus(session.Status(status))
			} else {
				list, err = sessions.List()
			}
			if err != nil {
				return err
			}
			rows := make([]sessionRow, 0, len(list))
			for _, s := range list {
				rows = append(rows, toSessionRow(s))
			}
			if format == "" {
				format = defaultFormat(cmd.OutOrStdout())
			}
			return writeSessions(cmd.OutOrStdout(), rows, format)
		},
	}
	listCmd.Flags().String("status", "", "Filter by status: running|stopped|crashed")
	listCmd.Flags().StringP("format", "f", "", "Output format: table|plain|json")
	return listCmd
}

// newSessionsShowCommand constructs the `sessions show` subcommand.
func newSessionsShowCommand(dataDir DataDirFunc) *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show one session's metadata and record count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, records, err := openStores(dataDir)
			if err != nil {
				return err
			}
			sess, err := sessions.Load(args[0])
			if err != nil {
				return err
			}
			total, err := records.Count(args[0])
			if err != nil {
				return err
			}
			row := toSessionRow(sess)
			row.RecordCount = total
			return writeJSONIndent(cmd.OutOrStdout(), row)
		},
	}
	return showCmd
}

// newSessionsResetCommand constructs the `sessions reset` subcommand.
func newSessionsResetCommand(dataDir DataDirFunc) *cobra.Command {
	resetCmd := &cobra.Command{
		Use:   "reset <session-id>",
		Short: "Clear a session's captured records (or delete it with --delete)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			del, _ := cmd.Flags().GetBool("delete")
			sessions, records, err := openStores(dataDir)
			if err != nil {
				return err
			}
			if del {
				if err := sessions.Delete(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			}
			sess, err := sessions.Load(args[0])
			if err != nil {
				return err
			}
			if err := os.Remove(records.RecordPath(args[0])); err != nil && !os.IsNotExist(err) {
				return err
			}
			sess.Cursor = 0
			sess.LastActivity = time.Now()
			if err := sessions.Save(sess); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset %s\n", args[0])
			return nil
		},
	}
	resetCmd.Flags().Bool("delete", false, "Remove the session entirely")
	return resetCmd
}

// newSessionsCleanupCommand constructs the `sessions cleanup` subcommand.
func newSessionsCleanupCommand(dataDir DataDirFunc) *cobra.Command {
	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete terminal sessions older than the retention window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			hours, _ := cmd.Flags().GetInt("max-age-hours")
			if hours <= 0 {
				hours = config.Default().Cleanup.MaxSessionAgeHours
			}
			sessions, _, err := openStores(dataDir)
			if err != nil {
				return err
			}
			removed, err := sessions.Cleanup(time.Duration(hours) * time.Hour)
			if err != nil {
				return err
			}
			for _, id := range removed {
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d session(s) removed\n", len(removed))
			return nil
		},
	}
	cleanupCmd.Flags().Int("max-age-hours", 0, "Delete sessions idle longer than this (default: configured retention)")
	return cleanupCmd
}
