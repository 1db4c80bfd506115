package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/logsift/logsift/pkg/export"
)

// ExportOptions holds command-line options for the export command.
type ExportOptions struct {
	Input InputOptions

	Output   string
	Compress bool
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export <dump-file...> -o <archive>",
		Short: "Export parsed records to a JSONL archive",
		Long: `Parse and filter logcat dumps, then write the records to a JSONL
archive that the parse and stats commands can read back.

Archives whose path ends in .gz are gzip-compressed. The archive header
carries an export ID; device metadata is included when the
include_device_info setting is enabled.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args, opts)
		},
	}

	addInputFlags(cmd, &opts.Input)
	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "Archive path (required)")
	cmd.Flags().BoolVar(&opts.Compress, "compress", false, "Gzip-compress regardless of extension")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runExport(cmd *cobra.Command, args []string, opts *ExportOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := loadSettings(&opts.Input)
	if err != nil {
		return err
	}
	current := store.Current()

	fo, err := buildFilter(&opts.Input, current)
	if err != nil {
		return err
	}
	// Exports keep separators so the archive replays the full stream.
	fo.WithSeparators = true

	source, _, err := openSource(args)
	if err != nil {
		return err
	}
	defer source.Close()

	w, err := export.Create(opts.Output, export.Options{
		Compress:   opts.Compress,
		DeviceInfo: current.IncludeDeviceInfo,
		Version:    Version,
	})
	if err != nil {
		return err
	}

	for {
		entry, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = w.Close()
			return fmt.Errorf("reading input: %w", err)
		}

		if !fo.Match(entry) {
			continue
		}
		if err := w.Write(entry.Record); err != nil {
			_ = w.Close()
			return err
		}
	}

	count := w.Count()
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}

	fmt.Printf("Exported %d record(s) to %s\n", count, opts.Output)
	return nil
}
