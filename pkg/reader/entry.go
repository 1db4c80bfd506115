// Package reader provides line sources that stream parsed logcat records
// from dump files and exported archives.
package reader

import (
	"context"
	"time"

	"github.com/logsift/logsift/pkg/logcat"
)

// TimestampLayout is the Go time layout matching the logcat timestamp text.
// Logcat timestamps carry no year, so parsed times share the zero year and
// are only meaningful for ordering within a capture.
const TimestampLayout = "01-02 15:04:05.000000"

// Entry is a parsed record with its stream position.
type Entry struct {
	logcat.Record

	// Time is the record timestamp parsed for ordering. Records without
	// their own timestamp inherit the most recent one seen in the same
	// source; zero when none has been seen yet.
	Time time.Time

	// Source is the file path this entry came from.
	Source string

	// LineNum is the 1-based line number in the source file.
	LineNum int
}

// Source provides an iterator over parsed log entries.
// Implementations must be safe for sequential access (not concurrent).
type Source interface {
	// Next returns the next entry.
	// Returns io.EOF when no more entries are available.
	Next(ctx context.Context) (*Entry, error)

	// Close releases any resources held by the source.
	Close() error
}
