package filter

import (
	"regexp"
	"testing"

	"github.com/logsift/logsift/pkg/logcat"
	"github.com/logsift/logsift/pkg/reader"
)

func entry(level byte, tag string, pid int, message string) *reader.Entry {
	return &reader.Entry{
		Record: logcat.Record{
			PID:     pid,
			Tag:     tag,
			Level:   level,
			Message: message,
		},
	}
}

func separator(message string) *reader.Entry {
	return &reader.Entry{
		Record: logcat.Record{
			PID:     logcat.NoPID,
			Level:   logcat.LevelNone,
			Message: message,
		},
	}
}

func TestOptions_Match(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		e    *reader.Entry
		want bool
	}{
		{
			name: "no criteria matches everything",
			opts: Options{},
			e:    entry('V', "Tag", 1, "msg"),
			want: true,
		},
		{
			name: "min level passes equal severity",
			opts: Options{MinLevel: 'W'},
			e:    entry('W', "Tag", 1, "msg"),
			want: true,
		},
		{
			name: "min level rejects lower severity",
			opts: Options{MinLevel: 'W'},
			e:    entry('I', "Tag", 1, "msg"),
			want: false,
		},
		{
			name: "min level rejects unknown level code",
			opts: Options{MinLevel: 'V'},
			e:    entry('h', "Tag", 1, "msg"),
			want: false,
		},
		{
			name: "tag set",
			opts: Options{Tags: TagSet([]string{"ActivityManager"})},
			e:    entry('I', "ActivityManager", 1, "msg"),
			want: true,
		},
		{
			name: "tag not in set",
			opts: Options{Tags: TagSet([]string{"ActivityManager"})},
			e:    entry('I', "AudioFlinger", 1, "msg"),
			want: false,
		},
		{
			name: "pid set",
			opts: Options{PIDs: PIDSet([]int{42})},
			e:    entry('I', "Tag", 42, "msg"),
			want: true,
		},
		{
			name: "pid not in set",
			opts: Options{PIDs: PIDSet([]int{42})},
			e:    entry('I', "Tag", 7, "msg"),
			want: false,
		},
		{
			name: "message regex",
			opts: Options{MessageRegex: regexp.MustCompile(`ANR`)},
			e:    entry('E', "Tag", 1, "ANR in com.example"),
			want: true,
		},
		{
			name: "message regex no match",
			opts: Options{MessageRegex: regexp.MustCompile(`ANR`)},
			e:    entry('E', "Tag", 1, "all quiet"),
			want: false,
		},
		{
			name: "separator dropped by default",
			opts: Options{},
			e:    separator("--------- beginning of main"),
			want: false,
		},
		{
			name: "separator kept when requested",
			opts: Options{WithSeparators: true, MinLevel: 'E'},
			e:    separator("--------- beginning of main"),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.Match(tt.e); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	entries := []*reader.Entry{
		entry('V', "Chatty", 1, "verbose noise"),
		entry('E', "System", 2, "crash"),
		separator("---"),
		entry('W', "System", 2, "warning"),
	}

	got := Apply(entries, Options{MinLevel: 'W'})
	if len(got) != 2 {
		t.Fatalf("Apply() kept %d entries, want 2", len(got))
	}
	if got[0].Message != "crash" || got[1].Message != "warning" {
		t.Errorf("Apply() kept %q, %q", got[0].Message, got[1].Message)
	}
}
