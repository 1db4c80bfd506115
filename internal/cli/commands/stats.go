package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/logsift/logsift/pkg/output"
	"github.com/logsift/logsift/pkg/stats"
)

// StatsOptions holds command-line options for the stats command.
type StatsOptions struct {
	Input InputOptions

	Output  string
	Verbose bool
	Quiet   bool

	WebhookURL   string
	WebhookToken string
}

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	opts := &StatsOptions{}

	cmd := &cobra.Command{
		Use:   "stats <dump-file...>",
		Short: "Compute statistics over logcat dumps",
		Long: `Aggregate statistics over parsed records: level distribution, top tags
and processes, and per-minute line volume.

Filters narrow the record set before aggregation; by default every line
is counted, including separators.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, args, opts)
		},
	}

	addInputFlags(cmd, &opts.Input)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Include per-minute volume")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only")

	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "POST the report to this endpoint")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")

	return cmd
}

func runStats(cmd *cobra.Command, args []string, opts *StatsOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	store, err := loadSettings(&opts.Input)
	if err != nil {
		return err
	}

	// Stats default to the full line set; explicit filter flags narrow it.
	fo, err := buildFilter(&opts.Input, store.Current())
	if err != nil {
		return err
	}
	if opts.Input.MinLevel == "" && opts.Input.Preset == "" {
		fo.MinLevel = 0
		fo.WithSeparators = true
	}

	source, files, err := openSource(args)
	if err != nil {
		return err
	}
	defer source.Close()

	entries, linesRead, _, err := collectEntries(ctx, source, fo, 0)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	report := &output.Report{
		Summary: output.Summary{
			LinesRead: linesRead,
			Matched:   len(entries),
		},
		Stats: stats.Compute(entries),
		Metadata: output.Metadata{
			Sources:     files,
			GeneratedAt: time.Now(),
			Duration:    time.Since(start),
		},
	}

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

	return nil
}
