// Package stats computes aggregate statistics over parsed logcat entries.
package stats

import (
	"sort"
	"strconv"

	"github.com/logsift/logsift/pkg/logcat"
	"github.com/logsift/logsift/pkg/reader"
)

// topN is the size of the ranked tag and pid lists.
const topN = 10

// Stats holds computed statistics for a set of entries.
type Stats struct {
	TotalLines int `json:"total_lines"`
	Entries    int `json:"entries"`
	Separators int `json:"separators"`
	Unparsed   int `json:"unparsed"`

	LevelDist LevelDistribution `json:"level_distribution"`
	TopTags   []RankedItem      `json:"top_tags"`
	TopPIDs   []RankedItem      `json:"top_pids"`
	PerMinute []MinuteBucket    `json:"lines_per_minute"`

	FirstTimestamp string `json:"first_timestamp,omitempty"`
	LastTimestamp  string `json:"last_timestamp,omitempty"`
}

// LevelDistribution holds counts and percentages per level code.
// Other counts metadata entries whose level is not a known code.
type LevelDistribution struct {
	Verbose int `json:"verbose"`
	Debug   int `json:"debug"`
	Info    int `json:"info"`
	Warning int `json:"warning"`
	Error   int `json:"error"`
	Fatal   int `json:"fatal"`
	Other   int `json:"other"`

	PctWarning float64 `json:"pct_warning"`
	PctError   float64 `json:"pct_error"`
}

// RankedItem is a name/count pair for top-N lists.
type RankedItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MinuteBucket is a count of lines within one minute of the capture.
type MinuteBucket struct {
	Minute string `json:"minute"`
	Count  int    `json:"count"`
}

// Compute calculates statistics from a set of entries.
func Compute(entries []*reader.Entry) *Stats {
	s := &Stats{
		TotalLines: len(entries),
	}

	if len(entries) == 0 {
		return s
	}

	tagCounts := make(map[string]int)
	pidCounts := make(map[string]int)
	minuteCounts := make(map[string]int)

	for _, e := range entries {
		if e.IsSeparator() {
			s.Separators++
			continue
		}
		s.Entries++

		switch e.Level {
		case logcat.LevelVerbose:
			s.LevelDist.Verbose++
		case logcat.LevelDebug:
			s.LevelDist.Debug++
		case logcat.LevelInfo:
			s.LevelDist.Info++
		case logcat.LevelWarning:
			s.LevelDist.Warning++
		case logcat.LevelError:
			s.LevelDist.Error++
		case logcat.LevelFatal:
			s.LevelDist.Fatal++
		default:
			s.LevelDist.Other++
			s.Unparsed++
		}

		if e.Tag != "" {
			tagCounts[e.Tag]++
		}
		if e.PID != logcat.NoPID {
			pidCounts[strconv.Itoa(e.PID)]++
		}

		if len(e.Timestamp) >= 11 {
			// "MM-DD HH:MM" prefix of the fixed-width timestamp.
			minuteCounts[e.Timestamp[:11]]++

			if s.FirstTimestamp == "" {
				s.FirstTimestamp = e.Timestamp
			}
			s.LastTimestamp = e.Timestamp
		}
	}

	if s.Entries > 0 {
		s.LevelDist.PctWarning = pct(s.LevelDist.Warning, s.Entries)
		s.LevelDist.PctError = pct(s.LevelDist.Error+s.LevelDist.Fatal, s.Entries)
	}

	s.TopTags = rank(tagCounts)
	s.TopPIDs = rank(pidCounts)
	s.PerMinute = minuteBuckets(minuteCounts)

	return s
}

func pct(part, total int) float64 {
	return 100 * float64(part) / float64(total)
}

// rank converts a count map into a top-N list, highest count first.
// Ties break on name for deterministic output.
func rank(counts map[string]int) []RankedItem {
	items := make([]RankedItem, 0, len(counts))
	for name, count := range counts {
		items = append(items, RankedItem{Name: name, Count: count})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Name < items[j].Name
	})

	if len(items) > topN {
		items = items[:topN]
	}
	return items
}

// minuteBuckets sorts minute counts chronologically. The fixed-width
// "MM-DD HH:MM" prefix sorts correctly as text.
func minuteBuckets(counts map[string]int) []MinuteBucket {
	buckets := make([]MinuteBucket, 0, len(counts))
	for minute, count := range counts {
		buckets = append(buckets, MinuteBucket{Minute: minute, Count: count})
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Minute < buckets[j].Minute
	})
	return buckets
}
