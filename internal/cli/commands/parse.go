package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/logsift/logsift/pkg/logcat"
	"github.com/logsift/logsift/pkg/output"
	"github.com/logsift/logsift/pkg/reader"
	"github.com/logsift/logsift/pkg/webhook"
)

// ParseOptions holds command-line options for the parse command.
type ParseOptions struct {
	Input InputOptions

	Output    string
	Limit     int
	FailLevel string
	Verbose   bool
	Quiet     bool

	// Webhook options
	WebhookURL   string
	WebhookToken string
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse <dump-file...>",
		Short: "Parse logcat dumps into structured records",
		Long: `Parse logcat text dumps (or exported JSONL archives) into structured
records and print them, filtered and merged chronologically across files.

Each line is decomposed into pid, timestamp, tag, level, and message.
Malformed lines degrade to best-effort records rather than errors.

Exit codes:
  0 - Success
  1 - Records at or above --fail-level were found
  2 - Configuration or runtime error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	addInputFlags(cmd, &opts.Input)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Keep at most N records (default: settings max_lines)")
	cmd.Flags().StringVar(&opts.FailLevel, "fail-level", "", "Exit 1 if any record is at or above this level")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show source positions and timing")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no records")

	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "POST the report to this endpoint")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")

	return cmd
}

// addInputFlags registers the input and filter flags shared across commands.
func addInputFlags(cmd *cobra.Command, opts *InputOptions) {
	cmd.Flags().StringVar(&opts.Settings, "settings", "", "Settings file (default: ~/.logsift/settings.yaml)")
	cmd.Flags().StringVar(&opts.MinLevel, "min-level", "", "Minimum level (V|D|I|W|E|F|S; default from settings)")
	cmd.Flags().StringSliceVar(&opts.Tags, "tag", nil, "Only records with this tag (can be repeated)")
	cmd.Flags().IntSliceVar(&opts.PIDs, "pid", nil, "Only records from this pid (can be repeated)")
	cmd.Flags().StringVar(&opts.Grep, "grep", "", "Only records whose message matches this regex")
	cmd.Flags().StringVar(&opts.Preset, "preset", "", "Apply a named filter preset")
	cmd.Flags().StringVar(&opts.Filters, "filters", "", "Filter presets file for --preset")
	cmd.Flags().BoolVar(&opts.WithSeparators, "with-separators", false, "Keep event-separator lines")
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	store, err := loadSettings(&opts.Input)
	if err != nil {
		return err
	}
	current := store.Current()

	fo, err := buildFilter(&opts.Input, current)
	if err != nil {
		return err
	}

	if opts.FailLevel != "" {
		if len(opts.FailLevel) != 1 || !logcat.ValidLevel(opts.FailLevel[0]) {
			return fmt.Errorf("invalid --fail-level %q", opts.FailLevel)
		}
	}

	source, files, err := openSource(args)
	if err != nil {
		return err
	}
	defer source.Close()

	limit := opts.Limit
	if limit == 0 {
		limit = current.MaxLines
	}

	entries, linesRead, truncated, err := collectEntries(ctx, source, fo, limit)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	report := newParseReport(entries, files, linesRead, truncated, start)

	formatter, err := createFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	if err := formatter.Format(ctx, report, os.Stdout); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	sendWebhook(ctx, opts.WebhookURL, opts.WebhookToken, report)

	if opts.FailLevel != "" && anyAtLevel(entries, opts.FailLevel[0]) {
		ExitCode = 1
	}

	return nil
}

func newParseReport(entries []*reader.Entry, files []string, linesRead int, truncated bool, start time.Time) *output.Report {
	records := make([]output.RecordView, 0, len(entries))
	for _, e := range entries {
		records = append(records, output.NewRecordView(e))
	}

	return &output.Report{
		Summary: output.Summary{
			LinesRead: linesRead,
			Matched:   len(entries),
			Truncated: truncated,
		},
		Records: records,
		Metadata: output.Metadata{
			Sources:     files,
			GeneratedAt: time.Now(),
			Duration:    time.Since(start),
		},
	}
}

func anyAtLevel(entries []*reader.Entry, min byte) bool {
	for _, e := range entries {
		if !e.IsSeparator() && logcat.LevelAtLeast(e.Level, min) {
			return true
		}
	}
	return false
}

func createFormatter(format string, formatOpts output.FormatOptions) (output.Formatter, error) {
	switch format {
	case "text":
		return output.NewTextFormatter(formatOpts), nil
	case "json":
		return output.NewJSONFormatter(formatOpts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text or json)", format)
	}
}

// sendWebhook posts the report when a URL is configured.
// Errors are logged to stderr but don't fail the command.
func sendWebhook(ctx context.Context, url, token string, report *output.Report) {
	if url == "" {
		return
	}

	client := webhook.NewClient()
	resp := client.Send(ctx, report, webhook.SendOptions{
		URL:   url,
		Token: token,
	})

	if resp.Success() {
		fmt.Fprintf(os.Stderr, "Webhook: sent (%d, %s)\n", resp.StatusCode, resp.Duration)
	} else {
		fmt.Fprintf(os.Stderr, "Webhook: failed (%v)\n", resp.Error)
	}
}
