package client

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// logsPageResp mirrors the server's page shape.
type logsPageResp struct {
	Data        []recordRow `json:"data"`
	Total       int         `json:"total"`
	NextCursor  *uint64     `json:"nextCursor"`
	PrevCursor  *uint64     `json:"prevCursor"`
	HasMore     bool        `json:"hasMore"`
	HasPrevious bool        `json:"hasPrevious"`
	Consumed    int         `json:"consumed"`
	Truncated   bool        `json:"truncated"`
}

// NewLogsCommand constructs the `logs` command group against the HTTP API.
func NewLogsCommand(baseURL BaseURLFunc) *cobra.Command {
	logsCmd := &cobra.Command{Use: "logs", Short: "Log retrieval over the HTTP API"}
	logsCmd.AddCommand(
		newLogsGetCommand(baseURL),
		newLogsSearchCommand(baseURL),
		newLogsCountCommand(baseURL),
	)
	return logsCmd
}

// newLogsGetCommand constructs the `logs get` subcommand.
func newLogsGetCommand(baseURL BaseURLFunc) *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get <session-id>",
		Short: "Fetch a page of records (consumes them unless --keep)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cursor, _ := cmd.Flags().GetUint64("cursor")
			limit, _ := cmd.Flags().GetInt("limit")
			reverse, _ := cmd.Flags().GetBool("reverse")
			keep, _ := cmd.Flags().GetBool("keep")
			format, _ := cmd.Flags().GetString("format")

			q := url.Values{}
			q.Set("session", args[0])
			if cursor > 0 {
				q.Set("cursor", strconv.FormatUint(cursor, 10))
			}
			if cmd.Flags().Changed("limit") {
				q.Set("limit", strconv.Itoa(limit))
			}
			if reverse {
				q.Set("reverse", "true")
			}
			if keep || reverse {
				q.Set("consume", "false")
			}

			var page logsPageResp
			if err := apiGet(cmd.Context(), baseURL(), "/v1/logs", q, &page); err != nil {
				return err
			}
			if format == "" {
				format = defaultFormat(cmd.OutOrStdout())
				// plain is the readable default for log content even on a TTY
				if format == "table" {
					format = "plain"
				}
			}
			if err := writeRecords(cmd.OutOrStdout(), page.Data, format); err != nil {
				return err
			}
			reportPage(cmd, page)
			return nil
		},
	}
	getCmd.Flags().Uint64("cursor", 0, "Resume after this sequence number")
	getCmd.Flags().Int("limit", 0, "Page size (server default when omitted)")
	getCmd.Flags().Bool("reverse", false, "Most recent records first")
	getCmd.Flags().Bool("keep", false, "Do not consume delivered records")
	getCmd.Flags().StringP("format", "f", "", "Output format: plain|table|json")
	return getCmd
}

// newLogsSearchCommand constructs the `logs search` subcommand.
func newLogsSearchCommand(baseURL BaseURLFunc) *cobra.Command {
	searchCmd := &cobra.Command{
		Use:   "search <session-id> <query>",
		Short: "Substring search over a session's records",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cursor, _ := cmd.Flags().GetUint64("cursor")
			limit, _ := cmd.Flags().GetInt("limit")
			format, _ := cmd.Flags().GetString("format")

			q := url.Values{}
			q.Set("session", args[0])
			q.Set("q", args[1])
			if cursor > 0 {
				q.Set("cursor", strconv.FormatUint(cursor, 10))
			}
			if cmd.Flags().Changed("limit") {
				q.Set("limit", strconv.Itoa(limit))
			}

			var page logsPageResp
			if err := apiGet(cmd.Context(), baseURL(), "/v1/logs/search", q, &page); err != nil {
				return err
			}
			if format == "" {
				format = "plain"
			}
			if err := writeRecords(cmd.OutOrStdout(), page.Data, format); err != nil {
				return err
			}
			reportPage(cmd, page)
			return nil
		},
	}
	searchCmd.Flags().Uint64("cursor", 0, "Skip this many earlier matches")
	searchCmd.Flags().Int("limit", 0, "Page size (server default when omitted)")
	searchCmd.Flags().StringP("format", "f", "", "Output format: plain|table|json")
	return searchCmd
}

// newLogsCountCommand constructs the `logs count` subcommand.
func newLogsCountCommand(baseURL BaseURLFunc) *cobra.Command {
	countCmd := &cobra.Command{
		Use:   "count <session-id>",
		Short: "Count stored lines for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("session", args[0])
			var out struct {
				SessionID string `json:"sessionId"`
				Total     int    `json:"total"`
			}
			if err := apiGet(cmd.Context(), baseURL(), "/v1/logs/count", q, &out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Total)
			return nil
		},
	}
	return countCmd
}

// reportPage prints pagination hints to stderr so piped stdout stays clean.
func reportPage(cmd *cobra.Command, page logsPageResp) {
	out := cmd.ErrOrStderr()
	if page.Truncated {
		fmt.Fprintln(out, "(response truncated by size budget)")
	}
	if page.HasMore && page.NextCursor != nil {
		fmt.Fprintf(out, "(more records; continue with --cursor %d)\n", *page.NextCursor)
	}
}
