package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewDiagnoseCommand(t *testing.T) {
	cmd := NewDiagnoseCommand()

	if cmd.Use != "diagnose [dump-file...]" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	flags := []string{"settings", "filters", "webhook-url", "webhook-token", "verbose"}
	for _, flag := range flags {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestCheckSettingsFile_NotFound(t *testing.T) {
	tmpDir := t.TempDir()
	opts := &DiagnoseOptions{Settings: filepath.Join(tmpDir, "settings.yaml")}

	results := checkSettingsFile(opts)

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	// Missing settings file is first-run state, not a failure
	if results[0].Status != "ok" {
		t.Errorf("Expected ok status, got %s", results[0].Status)
	}
	if !strings.Contains(results[0].Message, "defaults") {
		t.Errorf("Expected 'defaults' in message, got: %s", results[0].Message)
	}
}

func TestCheckSettingsFile_Directory(t *testing.T) {
	tmpDir := t.TempDir()
	opts := &DiagnoseOptions{Settings: tmpDir}

	results := checkSettingsFile(opts)

	if results[0].Status != "error" {
		t.Errorf("Expected error status, got %s", results[0].Status)
	}
	if !strings.Contains(results[0].Message, "directory") {
		t.Errorf("Expected 'directory' in message, got: %s", results[0].Message)
	}
}

func TestCheckSettingsFile_InvalidValues(t *testing.T) {
	tmpDir := t.TempDir()
	settingsPath := filepath.Join(tmpDir, "settings.yaml")

	if err := os.WriteFile(settingsPath, []byte("min_level: bogus\n"), 0644); err != nil {
		t.Fatalf("Failed to create settings: %v", err)
	}

	opts := &DiagnoseOptions{Settings: settingsPath}
	results := checkSettingsFile(opts)

	if results[0].Status != "error" {
		t.Errorf("Expected error status, got %s", results[0].Status)
	}
}

func TestCheckSettingsFile_Valid(t *testing.T) {
	tmpDir := t.TempDir()
	settingsPath := filepath.Join(tmpDir, "settings.yaml")

	content := "min_level: W\nmax_lines: 500\n"
	if err := os.WriteFile(settingsPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create settings: %v", err)
	}

	opts := &DiagnoseOptions{Settings: settingsPath}
	results := checkSettingsFile(opts)

	if results[0].Status != "ok" {
		t.Errorf("Expected ok status, got %s: %s", results[0].Status, results[0].Message)
	}
	joined := strings.Join(results[0].Details, "\n")
	if !strings.Contains(joined, "min_level: W") {
		t.Errorf("Expected effective min_level in details, got: %s", joined)
	}
}

func TestCheckPresetsFile_Optional(t *testing.T) {
	opts := &DiagnoseOptions{Verbose: false}

	results := checkPresetsFile(opts)

	// Without verbose, no presets file means no result
	if len(results) != 0 {
		t.Errorf("Expected 0 results without verbose, got %d", len(results))
	}

	// With verbose, should return 1 result
	opts.Verbose = true
	results = checkPresetsFile(opts)
	if len(results) != 1 {
		t.Errorf("Expected 1 result with verbose, got %d", len(results))
	}
}

func TestCheckPresetsFile_Valid(t *testing.T) {
	tmpDir := t.TempDir()
	presetsPath := filepath.Join(tmpDir, "filters.yaml")

	content := `filters:
  - name: crashes
    min_level: E
  - name: app
    tags: [ActivityManager]
`
	if err := os.WriteFile(presetsPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create presets: %v", err)
	}

	opts := &DiagnoseOptions{Filters: presetsPath}
	results := checkPresetsFile(opts)

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Status != "ok" {
		t.Errorf("Expected ok status, got %s: %s", results[0].Status, results[0].Message)
	}
	if !strings.Contains(results[0].Message, "2") {
		t.Errorf("Expected 2 presets in message, got: %s", results[0].Message)
	}
}

func TestCheckPresetsFile_Invalid(t *testing.T) {
	tmpDir := t.TempDir()
	presetsPath := filepath.Join(tmpDir, "filters.yaml")

	content := `filters:
  - name: broken
    min_level: Z
`
	if err := os.WriteFile(presetsPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create presets: %v", err)
	}

	opts := &DiagnoseOptions{Filters: presetsPath}
	results := checkPresetsFile(opts)

	if results[0].Status != "error" {
		t.Errorf("Expected error status, got %s", results[0].Status)
	}
}

func TestCheckInputs_DirectFile(t *testing.T) {
	tmpDir := t.TempDir()
	dumpPath := writeSampleDump(t, tmpDir)

	files, results := checkInputs([]string{dumpPath})

	if len(files) != 1 {
		t.Errorf("Expected 1 readable file, got %d", len(files))
	}
	found := false
	for _, r := range results {
		if strings.Contains(r.Check, "dump.log") {
			found = true
			if r.Status != "ok" {
				t.Errorf("Expected ok status, got %s", r.Status)
			}
		}
	}
	if !found {
		t.Error("Expected to find input check")
	}
}

func TestCheckInputs_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	emptyPath := filepath.Join(tmpDir, "empty.log")

	if err := os.WriteFile(emptyPath, []byte(""), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	_, results := checkInputs([]string{emptyPath})

	for _, r := range results {
		if strings.Contains(r.Check, "empty.log") {
			if r.Status != "warning" {
				t.Errorf("Expected warning for empty file, got %s", r.Status)
			}
		}
	}
}

func TestCheckInputs_MissingFile(t *testing.T) {
	files, results := checkInputs([]string{"/nonexistent/dump.log"})

	if len(files) != 0 {
		t.Errorf("Expected 0 readable files, got %d", len(files))
	}

	hasError := false
	hasSummary := false
	for _, r := range results {
		if r.Status == "error" && strings.Contains(r.Check, "dump.log") {
			hasError = true
		}
		if strings.Contains(r.Check, "Input Summary") {
			hasSummary = true
		}
	}
	if !hasError {
		t.Error("Expected error for missing file")
	}
	if !hasSummary {
		t.Error("Expected input summary when nothing is readable")
	}
}

func TestCheckInputs_GlobPattern(t *testing.T) {
	tmpDir := t.TempDir()

	for i := 1; i <= 3; i++ {
		dumpPath := filepath.Join(tmpDir, "dump"+string(rune('0'+i))+".log")
		if err := os.WriteFile(dumpPath, []byte(sampleDump), 0644); err != nil {
			t.Fatalf("Failed to create dump: %v", err)
		}
	}

	files, results := checkInputs([]string{filepath.Join(tmpDir, "*.log")})

	if len(files) != 3 {
		t.Errorf("Expected 3 readable files, got %d", len(files))
	}
	found := false
	for _, r := range results {
		if strings.Contains(r.Check, "*.log") {
			found = true
			if r.Status != "ok" {
				t.Errorf("Expected ok status for glob, got %s", r.Status)
			}
			if !strings.Contains(r.Message, "3") {
				t.Errorf("Expected to find 3 files, got: %s", r.Message)
			}
		}
	}
	if !found {
		t.Error("Expected to find glob pattern check")
	}
}

func TestCheckInputFormat_LogcatDump(t *testing.T) {
	tmpDir := t.TempDir()
	dumpPath := writeSampleDump(t, tmpDir)

	results := checkInputFormat(context.Background(), []string{dumpPath}, &DiagnoseOptions{})

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Status != "ok" {
		t.Errorf("Expected ok status, got %s: %s", results[0].Status, results[0].Message)
	}
}

func TestCheckInputFormat_NotLogcat(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "random.log")

	content := `just some text
more text without any structure
and a third line
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	results := checkInputFormat(context.Background(), []string{path}, &DiagnoseOptions{})

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Status != "error" {
		t.Errorf("Expected error status, got %s: %s", results[0].Status, results[0].Message)
	}
}

func TestCheckWebhook_Optional(t *testing.T) {
	opts := &DiagnoseOptions{Verbose: false}

	results := checkWebhook(opts)
	if len(results) != 0 {
		t.Errorf("Expected 0 results without verbose, got %d", len(results))
	}

	opts.Verbose = true
	results = checkWebhook(opts)
	if len(results) != 1 {
		t.Errorf("Expected 1 result with verbose, got %d", len(results))
	}
}

func TestCheckWebhook_ValidURL(t *testing.T) {
	opts := &DiagnoseOptions{WebhookURL: "https://example.com/hook"}

	results := checkWebhook(opts)

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Status != "ok" {
		t.Errorf("Expected ok status, got %s: %s", results[0].Status, results[0].Message)
	}
}

func TestCheckWebhook_BadScheme(t *testing.T) {
	opts := &DiagnoseOptions{WebhookURL: "ftp://example.com/hook"}

	results := checkWebhook(opts)

	if results[0].Status != "error" {
		t.Errorf("Expected error status, got %s", results[0].Status)
	}
}

func TestCheckWebhook_UnresolvedTokenEnvVar(t *testing.T) {
	opts := &DiagnoseOptions{
		WebhookURL:   "https://example.com/hook",
		WebhookToken: "${WEBHOOK_TOKEN}",
	}

	results := checkWebhook(opts)

	if results[0].Status != "warning" {
		t.Errorf("Expected warning status, got %s", results[0].Status)
	}
}

func TestCheckWebhookConnectivity(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := checkWebhookConnectivity(server.URL, "secret")

	if result.Status != "ok" {
		t.Errorf("Expected ok status, got %s: %s", result.Status, result.Message)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("got auth %q, want Bearer secret", gotAuth)
	}
}

func TestCheckWebhookConnectivity_Unreachable(t *testing.T) {
	result := checkWebhookConnectivity("http://127.0.0.1:1/hook", "")

	if result.Status != "warning" {
		t.Errorf("Expected warning status, got %s", result.Status)
	}
}

func TestRunDiagnose_Success(t *testing.T) {
	tmpDir := t.TempDir()
	dumpPath := writeSampleDump(t, tmpDir)

	cmd := NewDiagnoseCommand()
	cmd.SetArgs([]string{"--settings", filepath.Join(tmpDir, "settings.yaml"), dumpPath})

	var buf bytes.Buffer
	cmd.SetOut(&buf)

	// Should not error, just print diagnostics
	err := cmd.ExecuteContext(context.Background())
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestRunDiagnose_MissingInput(t *testing.T) {
	tmpDir := t.TempDir()

	cmd := NewDiagnoseCommand()
	cmd.SetArgs([]string{"--settings", filepath.Join(tmpDir, "settings.yaml"),
		"/nonexistent/dump.log"})

	var buf bytes.Buffer
	cmd.SetOut(&buf)

	err := cmd.ExecuteContext(context.Background())
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10.", 10, "exactly10."},
		{"this is a long string", 10, "this is..."},
		{"", 10, ""},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
		}
	}
}

func TestPrintDiagnostics(t *testing.T) {
	// Just verify it doesn't panic with various inputs
	results := []DiagnosticResult{
		{Check: "Test1", Status: "ok", Message: "All good"},
		{Check: "Test2", Status: "warning", Message: "Hmm", Details: []string{"detail1"}},
		{Check: "Test3", Status: "error", Message: "Bad", Suggests: []string{"Fix it"}},
	}

	opts := &DiagnoseOptions{Verbose: true}

	printDiagnostics(results, opts)
}
