package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/logsift/logsift/pkg/settings"
)

// SettingsOptions holds command-line options for the settings command.
type SettingsOptions struct {
	Settings string
	Init     bool
}

// NewSettingsCommand creates the settings command.
func NewSettingsCommand() *cobra.Command {
	opts := &SettingsOptions{}

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show the effective viewer settings",
		Long: `Show the effective settings and the file they come from.

Values not present in the settings file fall back to defaults;
LOGSIFT_* environment variables override both.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettings(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Settings, "settings", "", "Settings file (default: ~/.logsift/settings.yaml)")
	cmd.Flags().BoolVar(&opts.Init, "init", false, "Write the effective settings to the settings file")

	return cmd
}

func runSettings(opts *SettingsOptions) error {
	store, err := settings.Open(opts.Settings)
	if err != nil {
		return err
	}

	s := store.Current()

	fmt.Printf("Settings file: %s\n\n", store.Path())
	fmt.Printf("  buffers:             %s\n", strings.Join(s.Buffers, ", "))
	fmt.Printf("  max_lines:           %d\n", s.MaxLines)
	fmt.Printf("  min_level:           %s\n", s.MinLevel)
	fmt.Printf("  include_device_info: %t\n", s.IncludeDeviceInfo)

	if opts.Init {
		if err := store.Update(s); err != nil {
			return fmt.Errorf("writing settings: %w", err)
		}
		fmt.Printf("\nWrote %s\n", store.Path())
	}

	return nil
}
