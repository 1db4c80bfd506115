package output

import (
	"context"
	"fmt"
	"io"
)

// TextFormatter renders reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	fmt.Fprintf(w, "logsift: %d lines read, %d matched\n",
		report.Summary.LinesRead,
		report.Summary.Matched)
	return nil
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	for _, rec := range report.Records {
		f.formatRecord(rec, w)
	}

	if report.Stats != nil {
		f.formatStats(report, w)
	}

	fmt.Fprintf(w, "---\n%d lines read, %d matched", report.Summary.LinesRead, report.Summary.Matched)
	if report.Summary.Truncated {
		fmt.Fprintf(w, " (truncated to retention limit)")
	}
	fmt.Fprintln(w)

	if f.opts.Verbose {
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	return nil
}

func (f *TextFormatter) formatRecord(rec RecordView, w io.Writer) {
	if f.opts.Verbose && rec.Source != "" {
		fmt.Fprintf(w, "%s:%d: ", rec.Source, rec.Line)
	}

	if rec.Separator() {
		fmt.Fprintln(w, rec.Message)
		return
	}

	if rec.Timestamp != "" {
		fmt.Fprintf(w, "%s ", rec.Timestamp)
	}
	fmt.Fprintf(w, "%s/%s(%5d): %s\n", rec.Level, rec.Tag, rec.PID, rec.Message)
}

func (f *TextFormatter) formatStats(report *Report, w io.Writer) {
	s := report.Stats

	fmt.Fprintln(w, "=== Logcat Statistics ===")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Lines:      %d (%d entries, %d separators, %d unparsed)\n",
		s.TotalLines, s.Entries, s.Separators, s.Unparsed)
	if s.FirstTimestamp != "" {
		fmt.Fprintf(w, "Time span:  %s .. %s\n", s.FirstTimestamp, s.LastTimestamp)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Levels:")
	fmt.Fprintf(w, "  V %-6d D %-6d I %-6d W %-6d E %-6d F %-6d other %d\n",
		s.LevelDist.Verbose, s.LevelDist.Debug, s.LevelDist.Info,
		s.LevelDist.Warning, s.LevelDist.Error, s.LevelDist.Fatal,
		s.LevelDist.Other)
	fmt.Fprintf(w, "  warnings %.1f%%, errors %.1f%%\n",
		s.LevelDist.PctWarning, s.LevelDist.PctError)
	fmt.Fprintln(w)

	if len(s.TopTags) > 0 {
		fmt.Fprintln(w, "Top tags:")
		for _, item := range s.TopTags {
			fmt.Fprintf(w, "  %6d  %s\n", item.Count, item.Name)
		}
		fmt.Fprintln(w)
	}

	if len(s.TopPIDs) > 0 {
		fmt.Fprintln(w, "Top processes:")
		for _, item := range s.TopPIDs {
			fmt.Fprintf(w, "  %6d  pid %s\n", item.Count, item.Name)
		}
		fmt.Fprintln(w)
	}

	if f.opts.Verbose && len(s.PerMinute) > 0 {
		fmt.Fprintln(w, "Lines per minute:")
		for _, bucket := range s.PerMinute {
			fmt.Fprintf(w, "  %s  %d\n", bucket.Minute, bucket.Count)
		}
		fmt.Fprintln(w)
	}
}
