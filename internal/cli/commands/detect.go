package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/logsift/logsift/pkg/detector"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	SampleSize int
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <file>",
		Short: "Detect the format of a log input file",
		Long: `Sample the head of a file and report which input formats match:
logcat time/threadtime/brief dumps or logsift JSONL archives
(plain or gzip-compressed).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().IntVar(&opts.SampleSize, "sample", 100, "Number of lines to sample")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	path := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize))
	result, err := d.DetectFromFile(ctx, path)
	if err != nil {
		return fmt.Errorf("detecting format of %s: %w", path, err)
	}

	fmt.Printf("Sampled %d line(s) from %s\n", result.SampledLines, path)

	if len(result.Matches) == 0 {
		fmt.Println("No known format matched.")
		return nil
	}

	fmt.Println("\nMatches:")
	for i, match := range result.Matches {
		fmt.Printf("  %d. %-18s %5.1f%% (%d lines)\n",
			i+1, match.Format.Name, match.Confidence*100, match.MatchCount)
		fmt.Printf("     %s\n", match.Format.Description)
		if i == 0 {
			fmt.Printf("     Sample: %s\n", match.SampleLine)
		}
	}

	return nil
}
