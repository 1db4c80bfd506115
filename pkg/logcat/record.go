// Package logcat parses Android logcat text lines into structured records.
package logcat

// NoPID is the sentinel process ID for lines without a parseable pid.
const NoPID = -1

// LevelNone is the sentinel level for records that carry only a message
// (event-separator lines and lines with no metadata prefix).
const LevelNone byte = ' '

// Log level codes in ascending severity order.
const (
	LevelVerbose byte = 'V'
	LevelDebug   byte = 'D'
	LevelInfo    byte = 'I'
	LevelWarning byte = 'W'
	LevelError   byte = 'E'
	LevelFatal   byte = 'F'
	LevelSilent  byte = 'S'
)

// Record is one parsed logcat line.
//
// A record either has a non-space Level with the other fields populated from
// the line's metadata, or Level is LevelNone and only Message is meaningful
// (PID is NoPID, Timestamp and Tag are empty).
type Record struct {
	// PID is the process ID, or NoPID when absent or unparseable.
	PID int

	// Timestamp is the literal matched timestamp text in
	// "MM-DD HH:MM:SS.ssssss" form, or empty when not found.
	Timestamp string

	// Tag is the free-form tag text between the level separator and the
	// pid parenthesis.
	Tag string

	// Level is the single-character level code, or LevelNone.
	Level byte

	// Message is the line content after the metadata, whitespace-trimmed.
	Message string
}

// IsSeparator reports whether the record carries only a message.
func (r Record) IsSeparator() bool {
	return r.Level == LevelNone
}

// Severity returns the rank of a level code for threshold comparisons.
// Unknown codes rank below LevelVerbose.
func Severity(level byte) int {
	switch level {
	case LevelVerbose:
		return 0
	case LevelDebug:
		return 1
	case LevelInfo:
		return 2
	case LevelWarning:
		return 3
	case LevelError:
		return 4
	case LevelFatal:
		return 5
	case LevelSilent:
		return 6
	default:
		return -1
	}
}

// LevelAtLeast reports whether level meets the min severity threshold.
func LevelAtLeast(level, min byte) bool {
	return Severity(level) >= Severity(min)
}

// ValidLevel reports whether b is a known level code.
func ValidLevel(b byte) bool {
	return Severity(b) >= 0
}
