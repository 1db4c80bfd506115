package commands

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/logsift/logsift/pkg/detector"
	"github.com/logsift/logsift/pkg/filter"
	"github.com/logsift/logsift/pkg/logcat"
	"github.com/logsift/logsift/pkg/settings"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Settings     string
	Filters      string
	WebhookURL   string
	WebhookToken string
	Verbose      bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command.
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose [dump-file...]",
		Short: "Diagnose common setup issues",
		Long: `Diagnose common setup issues.

This command checks your environment for common problems:
- Settings file syntax and values
- Filter presets file validity (with --filters)
- Input file existence, readability, and format
- Webhook endpoint configuration (with --webhook-url)

Example:
  logsift diagnose dump.log
  logsift diagnose -v --filters filters.yaml dump.log`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Settings, "settings", "", "Settings file (default: ~/.logsift/settings.yaml)")
	cmd.Flags().StringVar(&opts.Filters, "filters", "", "Filter presets file to check")
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint to check")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for the connectivity check")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, args []string, opts *DiagnoseOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	results := []DiagnosticResult{}

	// 1. Check settings file
	results = append(results, checkSettingsFile(opts)...)

	// 2. Check filter presets
	results = append(results, checkPresetsFile(opts)...)

	// 3. Check input files
	files, inputResults := checkInputs(args)
	results = append(results, inputResults...)

	// 4. Check input format against the first readable file
	results = append(results, checkInputFormat(ctx, files, opts)...)

	// 5. Check webhook configuration
	results = append(results, checkWebhook(opts)...)

	printDiagnostics(results, opts)
	return nil
}

func checkSettingsFile(opts *DiagnoseOptions) []DiagnosticResult {
	path := opts.Settings
	if path == "" {
		path = settings.DefaultPath()
	}

	result := DiagnosticResult{
		Check: "Settings File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		// A missing file is first-run state, not a failure.
		result.Status = "ok"
		result.Message = fmt.Sprintf("Not found: %s (defaults in effect)", path)
		result.Suggests = []string{
			"Use 'logsift settings --init' to write the defaults out",
		}
		return []DiagnosticResult{result}
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access settings file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return []DiagnosticResult{result}
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return []DiagnosticResult{result}
	}

	store, err := settings.Open(path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to load settings: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		return []DiagnosticResult{result}
	}

	s := store.Current()
	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	result.Details = []string{
		fmt.Sprintf("buffers: %s", strings.Join(s.Buffers, ", ")),
		fmt.Sprintf("max_lines: %d", s.MaxLines),
		fmt.Sprintf("min_level: %s", s.MinLevel),
	}
	return []DiagnosticResult{result}
}

func checkPresetsFile(opts *DiagnoseOptions) []DiagnosticResult {
	if opts.Filters == "" {
		if opts.Verbose {
			return []DiagnosticResult{{
				Check:   "Filter Presets",
				Status:  "ok",
				Message: "No presets file given (optional)",
			}}
		}
		return nil
	}

	result := DiagnosticResult{
		Check: "Filter Presets",
	}

	presets, err := filter.LoadPresets(opts.Filters)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to load presets: %v", err)
		result.Suggests = []string{
			"Each preset needs a unique name",
			"min_level must be one of V, D, I, W, E, F, S",
		}
		return []DiagnosticResult{result}
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Loaded %d preset(s)", len(presets))
	for _, p := range presets {
		result.Details = append(result.Details, p.Name)
	}
	return []DiagnosticResult{result}
}

func checkInputs(patterns []string) ([]string, []DiagnosticResult) {
	results := []DiagnosticResult{}

	if len(patterns) == 0 {
		return nil, results
	}

	readable := []string{}
	for _, pattern := range patterns {
		result := DiagnosticResult{
			Check: fmt.Sprintf("Input: %s", pattern),
		}

		// Check if it's a glob pattern
		if strings.Contains(pattern, "*") || strings.Contains(pattern, "?") {
			matches, err := filepath.Glob(pattern)
			if err != nil {
				result.Status = "error"
				result.Message = fmt.Sprintf("Invalid glob pattern: %v", err)
			} else if len(matches) == 0 {
				result.Status = "warning"
				result.Message = "Glob pattern matches no files"
				result.Suggests = []string{
					"Check if the dump files exist at this path",
					"Verify the glob pattern syntax",
				}
			} else {
				result.Status = "ok"
				result.Message = fmt.Sprintf("Matches %d file(s)", len(matches))
				result.Details = append(result.Details, matches...)
				readable = append(readable, matches...)
			}
		} else {
			info, err := os.Stat(pattern)
			if os.IsNotExist(err) {
				result.Status = "error"
				result.Message = "File does not exist"
				result.Suggests = []string{
					"Check if the dump file path is correct",
				}
			} else if err != nil {
				result.Status = "error"
				result.Message = fmt.Sprintf("Cannot access file: %v", err)
				result.Suggests = []string{"Check file permissions"}
			} else if info.IsDir() {
				result.Status = "error"
				result.Message = "Path is a directory, not a file"
				result.Suggests = []string{
					"Use a glob pattern to match files in directory",
					"Example: dumps/*.log",
				}
			} else if info.Size() == 0 {
				result.Status = "warning"
				result.Message = "File is empty (0 bytes)"
			} else {
				result.Status = "ok"
				result.Message = fmt.Sprintf("File exists (%d bytes)", info.Size())
				readable = append(readable, pattern)
			}
		}
		results = append(results, result)
	}

	if len(readable) == 0 {
		results = append(results, DiagnosticResult{
			Check:   "Input Summary",
			Status:  "error",
			Message: "No accessible dump files found",
			Suggests: []string{
				"Ensure at least one dump file exists and is readable",
			},
		})
	}

	return readable, results
}

func checkInputFormat(ctx context.Context, files []string, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	// Only test the first readable file
	for _, file := range files {
		result := DiagnosticResult{
			Check: fmt.Sprintf("Format Test: %s", filepath.Base(file)),
		}

		lines, err := readSampleLines(file, 10)
		if err != nil {
			result.Status = "warning"
			result.Message = fmt.Sprintf("Cannot read file: %v", err)
			results = append(results, result)
			break
		}

		matchCount := 0
		var sampleMatch string
		var sampleFail string
		for _, line := range lines {
			rec := logcat.Parse(line)
			if rec.IsSeparator() || logcat.ValidLevel(rec.Level) {
				matchCount++
				if sampleMatch == "" {
					sampleMatch = line
				}
			} else if sampleFail == "" {
				sampleFail = line
			}
		}

		if matchCount == 0 {
			result.Status = "error"
			result.Message = "No line parses as a logcat record"
			result.Suggests = []string{
				"The file may not be a logcat dump",
			}
			if sampleFail != "" {
				result.Details = []string{
					"Sample line:",
					truncate(sampleFail, 80),
				}
			}

			// Score the known formats and suggest the best match
			d := detector.New(detector.WithSampleSize(10))
			detResult, _ := d.DetectFromFile(ctx, file)
			if detResult != nil {
				if best := detResult.Best(); best != nil {
					result.Suggests = append(result.Suggests,
						fmt.Sprintf("Detected format: %s", best.Format.Name),
						best.Format.Description,
					)
				}
			}
		} else if matchCount < len(lines)/2 {
			result.Status = "warning"
			result.Message = fmt.Sprintf("Only %d/%d sample lines parse cleanly", matchCount, len(lines))
			if sampleFail != "" {
				result.Details = []string{
					"Sample line that didn't parse:",
					truncate(sampleFail, 80),
				}
			}
		} else {
			result.Status = "ok"
			result.Message = fmt.Sprintf("%d/%d sample lines parse cleanly", matchCount, len(lines))
			if opts.Verbose && sampleMatch != "" {
				result.Details = []string{
					"Sample line:",
					truncate(sampleMatch, 80),
				}
			}
		}

		results = append(results, result)
		break
	}

	return results
}

func readSampleLines(path string, max int) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided dump paths
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines := []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() && len(lines) < max {
		line := scanner.Text()
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

func checkWebhook(opts *DiagnoseOptions) []DiagnosticResult {
	if opts.WebhookURL == "" {
		// Webhooks are optional, just note they're not configured
		if opts.Verbose {
			return []DiagnosticResult{{
				Check:   "Webhook",
				Status:  "ok",
				Message: "No webhook configured (optional)",
			}}
		}
		return nil
	}

	results := []DiagnosticResult{}
	result := DiagnosticResult{
		Check: "Webhook",
	}

	issues := []string{}
	warnings := []string{}

	u, err := url.Parse(opts.WebhookURL)
	if err != nil {
		issues = append(issues, fmt.Sprintf("Invalid URL: %v", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		issues = append(issues, fmt.Sprintf("URL scheme must be http or https, got %q", u.Scheme))
	} else if u.Host == "" {
		issues = append(issues, "URL must have a host")
	}

	// Check if token looks like an unexpanded env var
	if strings.HasPrefix(opts.WebhookToken, "${") || strings.HasPrefix(opts.WebhookToken, "$") {
		warnings = append(warnings, fmt.Sprintf("Token appears to be an unresolved env var: %s", opts.WebhookToken))
	}

	if len(issues) > 0 {
		result.Status = "error"
		result.Message = fmt.Sprintf("%d configuration issue(s)", len(issues))
		result.Details = issues
	} else if len(warnings) > 0 {
		result.Status = "warning"
		result.Message = fmt.Sprintf("%d warning(s)", len(warnings))
		result.Details = warnings
	} else {
		result.Status = "ok"
		result.Message = fmt.Sprintf("URL: %s", opts.WebhookURL)
		if opts.Verbose && opts.WebhookToken != "" {
			result.Details = []string{"Token: configured"}
		}
	}
	results = append(results, result)

	// Optionally test webhook connectivity
	if opts.Verbose && len(issues) == 0 {
		connResult := checkWebhookConnectivity(opts.WebhookURL, opts.WebhookToken)
		connResult.Check = "Webhook Connectivity"
		results = append(results, connResult)
	}

	return results
}

func checkWebhookConnectivity(endpoint, token string) DiagnosticResult {
	result := DiagnosticResult{}

	// Just do a HEAD request to check if the endpoint is reachable
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(http.MethodHead, endpoint, nil)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	// Any response (even 4xx/5xx) means the server is reachable
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = "ok"
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may require POST method (will work during actual webhook send)",
			"Check authentication if using a token",
		}
	}

	return result
}

func printDiagnostics(results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Println("=== Logsift Diagnostics ===")
	fmt.Println()

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		// Status icon
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Printf("[%s] %s\n", icon, r.Check)
		fmt.Printf("    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Printf("      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Printf("      Hint: %s\n", s)
		}

		fmt.Println()
	}

	// Summary
	fmt.Println("---")
	fmt.Printf("Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Println("\nFix the errors above before running parse or export.")
	} else if warnCount > 0 {
		fmt.Println("\nSetup is usable but has warnings.")
	} else {
		fmt.Println("\nSetup looks good!")
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
