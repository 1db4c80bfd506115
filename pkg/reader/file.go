package reader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/logsift/logsift/pkg/logcat"
)

// FileSource implements Source for reading logcat text dumps.
// Every line yields an entry: the line parser never fails, it only
// degrades to sentinel fields.
type FileSource struct {
	files []string

	currentFile    *os.File
	currentScanner *bufio.Scanner
	currentSource  string
	currentLine    int
	fileIndex      int
	lastTime       time.Time
}

// NewFileSource creates a Source that reads the given dump files in order.
func NewFileSource(files ...string) *FileSource {
	return &FileSource{
		files:     files,
		fileIndex: -1,
	}
}

// Next returns the next parsed entry.
// Returns io.EOF when all files have been exhausted.
func (s *FileSource) Next(ctx context.Context) (*Entry, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if s.currentScanner == nil {
			if err := s.openNextFile(); err != nil {
				return nil, err
			}
		}

		if s.currentScanner.Scan() {
			s.currentLine++
			rec := logcat.Parse(s.currentScanner.Text())

			// Separator and degenerate lines inherit the last seen
			// timestamp so chronological merging stays stable.
			if rec.Timestamp != "" {
				if ts, err := time.Parse(TimestampLayout, rec.Timestamp); err == nil {
					s.lastTime = ts
				}
			}

			return &Entry{
				Record:  rec,
				Time:    s.lastTime,
				Source:  s.currentSource,
				LineNum: s.currentLine,
			}, nil
		}

		if err := s.currentScanner.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", s.currentSource, err)
		}

		// Current file exhausted, try next.
		if err := s.closeCurrentFile(); err != nil {
			return nil, err
		}
	}
}

// Close releases resources.
func (s *FileSource) Close() error {
	return s.closeCurrentFile()
}

func (s *FileSource) openNextFile() error {
	s.fileIndex++
	if s.fileIndex >= len(s.files) {
		return io.EOF
	}

	path := s.files[s.fileIndex]
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening dump file %s: %w", path, err)
	}

	s.currentFile = f
	s.currentScanner = bufio.NewScanner(f)
	s.currentScanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // 1MB max line size
	s.currentSource = path
	s.currentLine = 0
	s.lastTime = time.Time{}

	return nil
}

func (s *FileSource) closeCurrentFile() error {
	if s.currentFile != nil {
		err := s.currentFile.Close()
		s.currentFile = nil
		s.currentScanner = nil
		return err
	}
	s.currentScanner = nil
	return nil
}
