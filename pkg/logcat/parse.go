package logcat

import (
	"regexp"
	"strconv"
	"strings"
)

// Expected line shape: "MM-DD HH:MM:SS.ssssss LEVEL/TAG( PID): MESSAGE".
var (
	pidPattern       = regexp.MustCompile(`\(\s*\d+\)`)
	timestampPattern = regexp.MustCompile(`\d{2}-\d{2}\s\d{2}:\d{2}:\d{2}\.\d{6}`)
)

// Parse converts one raw logcat line into a Record.
//
// Lines starting with "-" are event separators and produce a record with
// only Message set. Everything else is decomposed best-effort: malformed
// input degrades to sentinel field values, never an error. Parse is a pure
// function and safe for concurrent use.
func Parse(line string) Record {
	if strings.HasPrefix(line, "-") {
		return Record{
			PID:     NoPID,
			Level:   LevelNone,
			Message: line,
		}
	}

	// Metadata prefix: everything before the level/tag separator.
	meta := before(line, "/")

	rec := Record{
		PID:       extractPID(line),
		Timestamp: timestampPattern.FindString(meta),
		Tag:       before(after(line, "/"), "("),
		Level:     LevelNone,
		Message:   strings.TrimSpace(after(line, "):")),
	}

	if meta != "" {
		rec.Level = meta[len(meta)-1]
	}

	return rec
}

// extractPID finds the first parenthesized digit run anywhere in the line.
// Values outside the 16-bit signed range degrade to NoPID.
func extractPID(line string) int {
	match := pidPattern.FindString(line)
	if match == "" {
		return NoPID
	}

	digits := strings.TrimSpace(match[1 : len(match)-1])
	pid, err := strconv.ParseInt(digits, 10, 16)
	if err != nil {
		return NoPID
	}

	return int(pid)
}

// before returns the part of s preceding the first occurrence of sep,
// or s unchanged when sep is absent.
func before(s, sep string) string {
	if i := strings.Index(s, sep); i >= 0 {
		return s[:i]
	}
	return s
}

// after returns the part of s following the first occurrence of sep,
// or s unchanged when sep is absent.
func after(s, sep string) string {
	if i := strings.Index(s, sep); i >= 0 {
		return s[i+len(sep):]
	}
	return s
}
