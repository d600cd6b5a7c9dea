package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cloudcurio/cloudcurio-installer/cmd"
	"github.com/cloudcurio/cloudcurio-installer/internal/config"
	"github.com/cloudcurio/cloudcurio-installer/internal/formatter"
	"github.com/cloudcurio/cloudcurio-installer/internal/history"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statusOutputWriter io.Writer = os.Stdout

// statusNow is the clock used for relative times.
var statusNow = time.Now

type statusClient interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
	Get(ctx context.Context, runID string) (history.Entry, error)
	Close() error
}

const statusCommandLong = `Show recent installations.

USAGE:
    cloudcurio status [OPTIONS]

OPTIONS:
    --limit <n>     Number of runs to show (default: history_limit)
    --run <id>      Show the details of one run (full or short id)
    --format <f>    Preset name or custom template, one line per run
    -h, --help      Show this help

PRESETS:
    compact      {{short-id}} {{status}} {{tags}}
    detailed     {{run-id}} {{status}} exit={{exit-code}} started={{started}} duration={{duration}} tags={{tags}}
    ids          {{run-id}}
    last-line    {{short-id}} {{status}}: {{last-line}}

VARIABLES:
    run-id, short-id, status, tags, tag-count, exit-code, started, finished,
    age, duration, log-lines, last-line, command`

// NewStatusCmd creates the status command. open is called only when history is enabled.
func NewStatusCmd(open func() (statusClient, error)) *cobra.Command {
	if open == nil {
		panic("NewStatusCmd: history opener cannot be nil")
	}

	var limit int
	var runID string
	var format string

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent installations",
		Long:  statusCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			var tmpl *formatter.Template
			if format != "" {
				var err error
				if tmpl, err = formatter.DefaultPresets().Resolve(format); err != nil {
					return err
				}
			}
			if !config.GetBool("history_enabled", true) {
				fmt.Fprintln(statusOutputWriter, "Install history is disabled (history_enabled = false)")
				return nil
			}
			client, err := open()
			if err != nil {
				return fmt.Errorf("opening install history: %w", err)
			}
			defer client.Close()

			if runID != "" {
				entry, err := client.Get(c.Context(), runID)
				if err != nil {
					return err
				}
				PrintRun(statusOutputWriter, entry)
				return nil
			}

			if limit <= 0 {
				limit = config.GetInt("history_limit", 20)
			}
			entries, err := client.Recent(c.Context(), limit)
			if err != nil {
				return err
			}
			if tmpl != nil {
				PrintFormatted(statusOutputWriter, entries, tmpl, statusNow())
				return nil
			}
			PrintHistory(statusOutputWriter, entries, statusNow())
			return nil
		},
	}

	statusCmd.Flags().IntVar(&limit, "limit", 0, "Number of runs to show")
	statusCmd.Flags().StringVar(&runID, "run", "", "Show the details of one run (full or short id)")
	statusCmd.Flags().StringVar(&format, "format", "", "Preset name or custom template")

	return statusCmd
}

// PrintHistory writes one line per run, newest first.
func PrintHistory(w io.Writer, entries []history.Entry, now time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No installations recorded yet")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%-8s  %-10s  %-16s  %-8s  %s\n",
			shortID(e.RunID),
			e.Status,
			humanize.RelTime(e.StartedAt, now, "ago", "from now"),
			runDuration(e),
			strings.Join(e.Tags, ","))
	}
}

// PrintFormatted writes each entry through tmpl.
func PrintFormatted(w io.Writer, entries []history.Entry, tmpl *formatter.Template, now time.Time) {
	for _, e := range entries {
		fmt.Fprintln(w, tmpl.Render(formatter.VariableContext{Entry: e, Now: now}))
	}
}

// PrintRun writes the details of a single run.
func PrintRun(w io.Writer, e history.Entry) {
	fmt.Fprintf(w, "Run:       %s\n", e.RunID)
	fmt.Fprintf(w, "Status:    %s\n", e.Status)
	if e.HasExit {
		fmt.Fprintf(w, "Exit code: %d\n", e.ExitCode)
	}
	fmt.Fprintf(w, "Started:   %s\n", e.StartedAt.Local().Format(time.DateTime))
	if !e.FinishedAt.IsZero() {
		fmt.Fprintf(w, "Finished:  %s (%s)\n", e.FinishedAt.Local().Format(time.DateTime), runDuration(e))
	}
	fmt.Fprintf(w, "Tools:     %s\n", strings.Join(e.Tags, ", "))
	fmt.Fprintf(w, "Command:   %s\n", e.Command)
	fmt.Fprintf(w, "Output:    %s lines\n", humanize.Comma(int64(e.LogLines)))
	if e.LastLine != "" {
		fmt.Fprintf(w, "Last line: %s\n", e.LastLine)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runDuration(e history.Entry) string {
	if e.FinishedAt.IsZero() {
		return "-"
	}
	return e.Duration().Round(time.Second).String()
}

// statusCmd represents the status command
var statusCmd = NewStatusCmd(func() (statusClient, error) {
	return openHistory()
})

func init() {
	cmd.RootCmd.AddCommand(statusCmd)
}
