package stats

import (
	"testing"

	"github.com/logsift/logsift/pkg/logcat"
	"github.com/logsift/logsift/pkg/reader"
)

func entry(level byte, tag string, pid int, timestamp string) *reader.Entry {
	return &reader.Entry{
		Record: logcat.Record{
			PID:       pid,
			Timestamp: timestamp,
			Tag:       tag,
			Level:     level,
			Message:   "msg",
		},
	}
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil)
	if s.TotalLines != 0 || s.Entries != 0 {
		t.Errorf("Compute(nil) = %+v, want zero stats", s)
	}
}

func TestCompute_Counts(t *testing.T) {
	entries := []*reader.Entry{
		entry('I', "ActivityManager", 1234, "06-15 10:23:45.123456"),
		entry('I', "ActivityManager", 1234, "06-15 10:23:46.000000"),
		entry('W', "AudioFlinger", 321, "06-15 10:24:01.000000"),
		entry('E', "System", 321, "06-15 10:24:02.000000"),
		{Record: logcat.Record{PID: logcat.NoPID, Level: logcat.LevelNone, Message: "---"}},
		entry('h', "garbage", logcat.NoPID, ""),
	}

	s := Compute(entries)

	if s.TotalLines != 6 {
		t.Errorf("TotalLines = %d, want 6", s.TotalLines)
	}
	if s.Entries != 5 {
		t.Errorf("Entries = %d, want 5", s.Entries)
	}
	if s.Separators != 1 {
		t.Errorf("Separators = %d, want 1", s.Separators)
	}
	if s.Unparsed != 1 {
		t.Errorf("Unparsed = %d, want 1", s.Unparsed)
	}

	if s.LevelDist.Info != 2 || s.LevelDist.Warning != 1 || s.LevelDist.Error != 1 || s.LevelDist.Other != 1 {
		t.Errorf("LevelDist = %+v", s.LevelDist)
	}
	if s.LevelDist.PctError != 20 {
		t.Errorf("PctError = %v, want 20", s.LevelDist.PctError)
	}

	if len(s.TopTags) == 0 || s.TopTags[0].Name != "ActivityManager" || s.TopTags[0].Count != 2 {
		t.Errorf("TopTags = %v", s.TopTags)
	}
	if len(s.TopPIDs) == 0 || s.TopPIDs[0].Count != 2 {
		t.Errorf("TopPIDs = %v", s.TopPIDs)
	}

	if s.FirstTimestamp != "06-15 10:23:45.123456" {
		t.Errorf("FirstTimestamp = %q", s.FirstTimestamp)
	}
	if s.LastTimestamp != "06-15 10:24:02.000000" {
		t.Errorf("LastTimestamp = %q", s.LastTimestamp)
	}

	if len(s.PerMinute) != 2 {
		t.Fatalf("PerMinute = %v, want 2 buckets", s.PerMinute)
	}
	if s.PerMinute[0].Minute != "06-15 10:23" || s.PerMinute[0].Count != 2 {
		t.Errorf("PerMinute[0] = %+v", s.PerMinute[0])
	}
	if s.PerMinute[1].Minute != "06-15 10:24" || s.PerMinute[1].Count != 2 {
		t.Errorf("PerMinute[1] = %+v", s.PerMinute[1])
	}
}

func TestCompute_RankTruncationAndTies(t *testing.T) {
	var entries []*reader.Entry
	tags := []string{"k", "j", "i", "h", "g", "f", "e", "d", "c", "b", "a"}
	for _, tag := range tags {
		entries = append(entries, entry('D', tag, 1, ""))
	}

	s := Compute(entries)
	if len(s.TopTags) != topN {
		t.Fatalf("TopTags length = %d, want %d", len(s.TopTags), topN)
	}
	// Equal counts break ties by name.
	if s.TopTags[0].Name != "a" {
		t.Errorf("TopTags[0] = %+v, want tag a first", s.TopTags[0])
	}
}
