// Package output provides formatting and output generation for parse and
// stats results.
package output

import (
	"time"

	"github.com/logsift/logsift/pkg/reader"
	"github.com/logsift/logsift/pkg/stats"
)

// Report is the complete command output.
type Report struct {
	// Summary provides aggregate counters.
	Summary Summary

	// Records contains the rendered entries, when the command emits them.
	Records []RecordView `json:",omitempty"`

	// Stats contains aggregate statistics, when computed.
	Stats *stats.Stats `json:",omitempty"`

	// Metadata provides context about the run.
	Metadata Metadata
}

// Summary provides aggregate counters.
type Summary struct {
	// LinesRead is the number of input lines consumed.
	LinesRead int

	// Matched is the number of entries that passed filtering.
	Matched int

	// Truncated is true when the retention limit cut the record list.
	Truncated bool
}

// Metadata provides context about the run.
type Metadata struct {
	// Sources lists the input files.
	Sources []string

	// GeneratedAt is when the report was produced.
	GeneratedAt time.Time

	// Duration is how long the run took.
	Duration time.Duration
}

// RecordView is one entry prepared for rendering.
type RecordView struct {
	PID       int
	Timestamp string
	Tag       string
	Level     string
	Message   string
	Source    string `json:",omitempty"`
	Line      int    `json:",omitempty"`
}

// NewRecordView converts a parsed entry for rendering.
func NewRecordView(e *reader.Entry) RecordView {
	return RecordView{
		PID:       e.PID,
		Timestamp: e.Timestamp,
		Tag:       e.Tag,
		Level:     string(e.Level),
		Message:   e.Message,
		Source:    e.Source,
		Line:      e.LineNum,
	}
}

// Separator reports whether the view renders an event-separator line.
func (v RecordView) Separator() bool {
	return v.Level == " " || v.Level == ""
}
