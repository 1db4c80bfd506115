// Package export writes parsed logcat records to JSONL archives that the
// reader package can load back, optionally gzip-compressed.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/logsift/logsift/pkg/logcat"
)

// Header is the metadata object written as the first line of an archive.
type Header struct {
	ExportID  string      `json:"export_id"`
	Tool      string      `json:"tool"`
	Version   string      `json:"version"`
	CreatedAt string      `json:"created_at"`
	Device    *DeviceInfo `json:"device,omitempty"`
}

// DeviceInfo describes the host that produced the archive. It is included
// only when the include_device_info setting is enabled.
type DeviceInfo struct {
	Hostname string `json:"hostname"`
	OS       string `json:"os"`
	Arch     string `json:"arch"`
}

// Options configures an export.
type Options struct {
	// Compress forces gzip output. Paths ending in ".gz" compress
	// regardless.
	Compress bool

	// DeviceInfo includes host metadata in the archive header.
	DeviceInfo bool

	// Version is the tool version recorded in the header.
	Version string
}

// recordJSON is the wire shape of one record line.
type recordJSON struct {
	PID       int    `json:"pid"`
	Timestamp string `json:"timestamp"`
	Tag       string `json:"tag"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// Writer streams records into a JSONL archive.
type Writer struct {
	file  *os.File
	gz    *gzip.Writer
	enc   *json.Encoder
	count int
}

// Create opens an archive at path and writes its header.
func Create(path string, opts Options) (*Writer, error) {
	f, err := os.Create(path) // #nosec G304 -- user-provided output path is expected
	if err != nil {
		return nil, fmt.Errorf("creating archive %s: %w", path, err)
	}

	w := &Writer{file: f}

	var out io.Writer = f
	if opts.Compress || strings.HasSuffix(path, ".gz") {
		w.gz = gzip.NewWriter(f)
		out = w.gz
	}
	w.enc = json.NewEncoder(out)

	header := Header{
		ExportID:  uuid.New().String(),
		Tool:      "logsift",
		Version:   opts.Version,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if opts.DeviceInfo {
		header.Device = collectDeviceInfo()
	}

	if err := w.enc.Encode(header); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("writing archive header: %w", err)
	}

	return w, nil
}

// Write appends one record to the archive.
func (w *Writer) Write(rec logcat.Record) error {
	line := recordJSON{
		PID:       rec.PID,
		Timestamp: rec.Timestamp,
		Tag:       rec.Tag,
		Level:     string(rec.Level),
		Message:   rec.Message,
	}
	if err := w.enc.Encode(line); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of records written so far.
func (w *Writer) Count() int {
	return w.count
}

// Close flushes and closes the archive.
func (w *Writer) Close() error {
	var firstErr error
	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			firstErr = err
		}
		w.gz = nil
	}
	if w.file != nil {
		if err := w.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		w.file = nil
	}
	return firstErr
}

func collectDeviceInfo() *DeviceInfo {
	hostname, _ := os.Hostname()
	return &DeviceInfo{
		Hostname: hostname,
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
	}
}
