package client

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// defaultFormat picks "table" on a terminal and "plain" when output is
// redirected.
func defaultFormat(out io.Writer) string {
	if f, ok := out.(*os.File); ok && isTerminal(f.Fd()) {
		return "table"
	}
	return "plain"
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// terminalWidth returns the output terminal width, or 0 if unknown.
func terminalWidth(out io.Writer) int {
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return 0
}

func newTableWriter(out io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateHeader = true
	if w := terminalWidth(out); w > 0 {
		tw.SetAllowedRowLength(w)
	}
	return tw
}

func writeJSONIndent(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func escapeNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", "\\n")
}

// sessionRow is the client-side view of one session directory entry.
type sessionRow struct {
	ID           string     `json:"id"`
	Command      string     `json:"command"`
	ProjectName  string     `json:"projectName"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastActivity time.Time  `json:"lastActivity"`
	EndedAt      *time.Time `json:"endedAt,omitempty"`
	Cursor       uint64     `json:"cursor"`
	RecordCount  int        `json:"recordCount,omitempty"`
	Signature    string     `json:"signature,omitempty"`
	WorkDir      string     `json:"workDir,omitempty"`
}

// writeSessions renders session rows in the requested format.
func writeSessions(out io.Writer, rows []sessionRow, format string) error {
	switch strings.ToLower(format) {
	case "", "table":
		return writeSessionsTable(out, rows)
	case "plain":
		return writeSessionsPlain(out, rows)
	case "json":
		return writeJSONIndent(out, rows)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeSessionsPlain(out io.Writer, rows []sessionRow) error {
	if _, err := fmt.Fprintln(out, "created\tsession_id\tstatus\tcommand"); err != nil {
		return err
	}
	for _, r := range rows {
		line := fmt.Sprintf("%s\t%s\t%s\t%s",
			r.CreatedAt.Format(time.RFC3339), r.ID, r.Status, r.Signature)
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

func writeSessionsTable(out io.Writer, rows []sessionRow) error {
	tw := newTableWriter(out)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignCenter},
		{Number: 4, Align: text.AlignLeft, WidthMax: 60},
	})
	tw.AppendHeader(table.Row{"Created", "Session ID", "Status", "Command"})
	for _, r := range rows {
		tw.AppendRow(table.Row{
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.ID,
			r.Status,
			r.Signature,
		})
	}
	if len(rows) == 0 {
		tw.AppendRow(table.Row{"-", "(no sessions)", "-", "-"})
	}
	_ = tw.Render()
	return nil
}

// recordRow is the client-side view of one log record.
type recordRow struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"sessionId"`
	Channel        string    `json:"channel"`
	Timestamp      time.Time `json:"timestamp"`
	Content        string    `json:"content"`
	SequenceNumber uint64    `json:"sequenceNumber"`
}

// writeRecords renders log records in the requested format.
func writeRecords(out io.Writer, rows []recordRow, format string) error {
	switch strings.ToLower(format) {
	case "", "plain":
		return writeRecordsPlain(out, rows)
	case "table":
		return writeRecordsTable(out, rows)
	case "json":
		return writeJSONIndent(out, rows)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeRecordsPlain(out io.Writer, rows []recordRow) error {
	for _, r := range rows {
		prefix := ""
		if r.Channel == "stderr" {
			prefix = "[stderr] "
		}
		for _, line := range strings.Split(r.Content, "\n") {
			if _, err := fmt.Fprintf(out, "%s%s\n", prefix, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeRecordsTable(out io.Writer, rows []recordRow) error {
	tw := newTableWriter(out)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignCenter},
		{Number: 4, Align: text.AlignLeft, WidthMax: 100},
	})
	tw.AppendHeader(table.Row{"Seq", "Time", "Channel", "Content"})
	for _, r := range rows {
		tw.AppendRow(table.Row{
			r.SequenceNumber,
			r.Timestamp.Format("15:04:05.000"),
			r.Channel,
			escapeNewlines(r.Content),
		})
	}
	_ = tw.Render()
	return nil
}
