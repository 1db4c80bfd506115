package reader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/valyala/fastjson"

	"github.com/logsift/logsift/pkg/logcat"
)

// ExportHeader is the metadata object at the top of an exported archive.
type ExportHeader struct {
	ExportID  string
	Tool      string
	Version   string
	CreatedAt string
}

// JSONLSource implements Source for reading exported JSONL archives,
// plain or gzip-compressed.
type JSONLSource struct {
	path string

	file    *os.File
	gz      *gzip.Reader
	scanner *bufio.Scanner
	parser  fastjson.Parser

	lineNum  int
	lastTime time.Time
	header   *ExportHeader
	opened   bool
}

// NewJSONLSource creates a Source reading the exported archive at path.
// Paths ending in ".gz" are decompressed transparently.
func NewJSONLSource(path string) *JSONLSource {
	return &JSONLSource{path: path}
}

// Header returns the archive header, or nil if none has been read yet.
// The header line is consumed by the first Next call.
func (s *JSONLSource) Header() *ExportHeader {
	return s.header
}

// Next returns the next entry from the archive.
// Returns io.EOF at the end of the file.
func (s *JSONLSource) Next(ctx context.Context) (*Entry, error) {
	if !s.opened {
		if err := s.open(); err != nil {
			return nil, err
		}
		s.opened = true
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, fmt.Errorf("reading %s: %w", s.path, err)
			}
			return nil, io.EOF
		}
		s.lineNum++

		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}

		v, err := s.parser.Parse(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid JSON: %w", s.path, s.lineNum, err)
		}

		// The first object may be the archive header rather than a record.
		if s.lineNum == 1 && v.Exists("export_id") {
			s.header = &ExportHeader{
				ExportID:  string(v.GetStringBytes("export_id")),
				Tool:      string(v.GetStringBytes("tool")),
				Version:   string(v.GetStringBytes("version")),
				CreatedAt: string(v.GetStringBytes("created_at")),
			}
			continue
		}

		rec := logcat.Record{
			PID:       logcat.NoPID,
			Timestamp: string(v.GetStringBytes("timestamp")),
			Tag:       string(v.GetStringBytes("tag")),
			Level:     logcat.LevelNone,
			Message:   string(v.GetStringBytes("message")),
		}
		if v.Exists("pid") {
			rec.PID = v.GetInt("pid")
		}
		if lvl := v.GetStringBytes("level"); len(lvl) > 0 {
			rec.Level = lvl[0]
		}

		if rec.Timestamp != "" {
			if ts, err := time.Parse(TimestampLayout, rec.Timestamp); err == nil {
				s.lastTime = ts
			}
		}

		return &Entry{
			Record:  rec,
			Time:    s.lastTime,
			Source:  s.path,
			LineNum: s.lineNum,
		}, nil
	}
}

// Close releases file resources.
func (s *JSONLSource) Close() error {
	if s.gz != nil {
		_ = s.gz.Close()
		s.gz = nil
	}
	if s.file != nil {
		err := s.file.Close()
		s.file = nil
		return err
	}
	return nil
}

func (s *JSONLSource) open() error {
	f, err := os.Open(s.path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", s.path, err)
	}
	s.file = f

	var r io.Reader = f
	if strings.HasSuffix(s.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			s.file = nil
			return fmt.Errorf("opening gzip archive %s: %w", s.path, err)
		}
		s.gz = gz
		r = gz
	}

	s.scanner = bufio.NewScanner(r)
	s.scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return nil
}
