// Package filter selects parsed logcat entries by level, tag, pid,
// and message content.
package filter

import (
	"regexp"

	"github.com/logsift/logsift/pkg/logcat"
	"github.com/logsift/logsift/pkg/reader"
)

// Options defines all available filter criteria.
type Options struct {
	// MinLevel is the minimum level code (inclusive, zero = no filter).
	MinLevel byte

	// Tags, if non-empty, only allows entries with these tags.
	Tags map[string]bool

	// PIDs, if non-empty, only allows entries from these process IDs.
	PIDs map[int]bool

	// MessageRegex filters entries whose message matches this pattern.
	MessageRegex *regexp.Regexp

	// WithSeparators keeps event-separator lines in the output.
	WithSeparators bool
}

// Match reports whether an entry passes all criteria.
// Separator lines carry no metadata, so only WithSeparators applies to them.
func (o Options) Match(e *reader.Entry) bool {
	if e.IsSeparator() {
		return o.WithSeparators
	}

	if o.MinLevel != 0 && !logcat.LevelAtLeast(e.Level, o.MinLevel) {
		return false
	}

	if len(o.Tags) > 0 && !o.Tags[e.Tag] {
		return false
	}

	if len(o.PIDs) > 0 && !o.PIDs[e.PID] {
		return false
	}

	if o.MessageRegex != nil && !o.MessageRegex.MatchString(e.Message) {
		return false
	}

	return true
}

// Apply filters a slice of entries in place, returning the filtered slice.
func Apply(entries []*reader.Entry, opts Options) []*reader.Entry {
	n := 0
	for _, e := range entries {
		if opts.Match(e) {
			entries[n] = e
			n++
		}
	}
	return entries[:n]
}

// TagSet builds a Tags criterion from a list of tag names.
func TagSet(tags []string) map[string]bool {
	if len(tags) == 0 {
		return nil
	}
	set := make(map[string]bool, len(tags))
	for _, tag := range tags {
		set[tag] = true
	}
	return set
}

// PIDSet builds a PIDs criterion from a list of process IDs.
func PIDSet(pids []int) map[int]bool {
	if len(pids) == 0 {
		return nil
	}
	set := make(map[int]bool, len(pids))
	for _, pid := range pids {
		set[pid] = true
	}
	return set
}
