package detector

import (
	"regexp"
	"strings"

	"github.com/valyala/fastjson"
)

// InputFormat describes one recognizable input file format.
type InputFormat struct {
	// Name is the format identifier (logcat-time, logcat-brief, ...).
	Name string

	// Description is a short human-readable summary.
	Description string

	// Match reports whether a line belongs to this format.
	Match func(line string) bool
}

var (
	timeFormatPattern       = regexp.MustCompile(`^\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{6} [VDIWEFS]/`)
	briefFormatPattern      = regexp.MustCompile(`^[VDIWEFS]/.*\(\s*\d+\)`)
	threadtimeFormatPattern = regexp.MustCompile(`^\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3,6}\s+\d+\s+\d+\s+[VDIWEFS]\s`)
)

// DefaultFormats returns the built-in format set.
func DefaultFormats() []*InputFormat {
	return []*InputFormat{
		{
			Name:        "logcat-time",
			Description: "logcat -v time dump (timestamp, level/tag(pid): message)",
			Match:       timeFormatPattern.MatchString,
		},
		{
			Name:        "logcat-threadtime",
			Description: "logcat -v threadtime dump (timestamp, pid, tid, level, tag)",
			Match:       threadtimeFormatPattern.MatchString,
		},
		{
			Name:        "logcat-brief",
			Description: "logcat -v brief dump (level/tag(pid): message, no timestamp)",
			Match:       briefFormatPattern.MatchString,
		},
		{
			Name:        "jsonl-export",
			Description: "logsift JSONL export archive",
			Match:       matchJSONLRecord,
		},
	}
}

// matchJSONLRecord accepts archive record lines and the archive header.
func matchJSONLRecord(line string) bool {
	if !strings.HasPrefix(line, "{") {
		return false
	}
	v, err := fastjson.Parse(line)
	if err != nil {
		return false
	}
	return v.Exists("message") || v.Exists("export_id")
}
