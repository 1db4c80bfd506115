package reader

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeDump(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func drain(t *testing.T, src Source) []*Entry {
	t.Helper()
	ctx := context.Background()
	var entries []*Entry
	for {
		entry, err := src.Next(ctx)
		if err == io.EOF {
			return entries
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		entries = append(entries, entry)
	}
}

func TestFileSource_Next(t *testing.T) {
	content := `--------- beginning of main
06-15 10:23:45.123456 I/ActivityManager( 1234): Starting activity
06-15 10:23:46.000001 W/AudioFlinger(  321): write blocked
`
	path := writeDump(t, "main.log", content)

	source := NewFileSource(path)
	defer source.Close()

	entries := drain(t, source)
	if len(entries) != 3 {
		t.Fatalf("Got %d entries, want 3", len(entries))
	}

	if !entries[0].IsSeparator() {
		t.Error("First entry should be a separator")
	}
	if entries[0].LineNum != 1 {
		t.Errorf("LineNum = %d, want 1", entries[0].LineNum)
	}
	if entries[0].Source != path {
		t.Errorf("Source = %q, want %q", entries[0].Source, path)
	}

	if entries[1].Tag != "ActivityManager" {
		t.Errorf("Tag = %q, want ActivityManager", entries[1].Tag)
	}
	want := time.Date(0, 6, 15, 10, 23, 45, 123456000, time.UTC)
	if !entries[1].Time.Equal(want) {
		t.Errorf("Time = %v, want %v", entries[1].Time, want)
	}
}

func TestFileSource_SeparatorInheritsTime(t *testing.T) {
	content := `06-15 10:23:45.123456 I/Tag( 1): before
--------- switching buffers
06-15 10:23:47.000000 I/Tag( 1): after
`
	path := writeDump(t, "main.log", content)

	source := NewFileSource(path)
	defer source.Close()

	entries := drain(t, source)
	if len(entries) != 3 {
		t.Fatalf("Got %d entries, want 3", len(entries))
	}

	if !entries[1].Time.Equal(entries[0].Time) {
		t.Errorf("Separator Time = %v, want inherited %v", entries[1].Time, entries[0].Time)
	}
}

func TestFileSource_MultipleFiles(t *testing.T) {
	a := writeDump(t, "a.log", "06-15 10:00:00.000000 I/A( 1): file a\n")
	b := writeDump(t, "b.log", "06-15 10:00:01.000000 I/B( 2): file b\n")

	source := NewFileSource(a, b)
	defer source.Close()

	entries := drain(t, source)
	if len(entries) != 2 {
		t.Fatalf("Got %d entries, want 2", len(entries))
	}
	if entries[0].Tag != "A" || entries[1].Tag != "B" {
		t.Errorf("Tags = %q, %q; want A, B", entries[0].Tag, entries[1].Tag)
	}
}

func TestFileSource_EmptyFile(t *testing.T) {
	path := writeDump(t, "empty.log", "")

	source := NewFileSource(path)
	defer source.Close()

	_, err := source.Next(context.Background())
	if err != io.EOF {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
}

func TestFileSource_FileNotFound(t *testing.T) {
	source := NewFileSource("/nonexistent/dump.log")
	defer source.Close()

	_, err := source.Next(context.Background())
	if err == nil {
		t.Error("Next() expected error for missing file")
	}
}

func TestFileSource_ContextCancellation(t *testing.T) {
	path := writeDump(t, "main.log", "06-15 10:00:00.000000 I/Tag( 1): line\n")

	source := NewFileSource(path)
	defer source.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := source.Next(ctx)
	if err != context.Canceled {
		t.Errorf("Next() error = %v, want context.Canceled", err)
	}
}
