package commands

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/logsift/logsift/pkg/filter"
	"github.com/logsift/logsift/pkg/logcat"
	"github.com/logsift/logsift/pkg/reader"
	"github.com/logsift/logsift/pkg/settings"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// InputOptions holds the flags shared by commands that read log input.
type InputOptions struct {
	Settings string // settings file path ("" = default location)

	MinLevel       string
	Tags           []string
	PIDs           []int
	Grep           string
	Preset         string
	Filters        string // presets file path
	WithSeparators bool
}

// loadSettings opens the settings store referenced by the flags.
func loadSettings(opts *InputOptions) (*settings.Store, error) {
	store, err := settings.Open(opts.Settings)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	return store, nil
}

// buildFilter combines preset, flags, and settings into filter criteria.
// Flag values override the preset; the settings min_level applies when
// neither specifies one.
func buildFilter(opts *InputOptions, s settings.Settings) (filter.Options, error) {
	var fo filter.Options

	if opts.Preset != "" {
		if opts.Filters == "" {
			return fo, fmt.Errorf("--preset requires --filters <file>")
		}
		presets, err := filter.LoadPresets(opts.Filters)
		if err != nil {
			return fo, fmt.Errorf("loading filter presets: %w", err)
		}
		preset, err := filter.FindPreset(presets, opts.Preset)
		if err != nil {
			return fo, err
		}
		fo = preset.Options()
	}

	if opts.MinLevel != "" {
		if len(opts.MinLevel) != 1 || !logcat.ValidLevel(opts.MinLevel[0]) {
			return fo, fmt.Errorf("invalid level %q (use V, D, I, W, E, F, or S)", opts.MinLevel)
		}
		fo.MinLevel = opts.MinLevel[0]
	}
	if fo.MinLevel == 0 {
		fo.MinLevel = s.MinLevelByte()
	}

	if len(opts.Tags) > 0 {
		fo.Tags = filter.TagSet(opts.Tags)
	}
	if len(opts.PIDs) > 0 {
		fo.PIDs = filter.PIDSet(opts.PIDs)
	}
	if opts.Grep != "" {
		re, err := compileGrep(opts.Grep)
		if err != nil {
			return fo, err
		}
		fo.MessageRegex = re
	}
	if opts.WithSeparators {
		fo.WithSeparators = true
	}

	return fo, nil
}

func compileGrep(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid --grep pattern: %w", err)
	}
	return re, nil
}

// openSource builds a source for the given input files, expanding globs and
// merging multiple dumps chronologically. Exported archives are recognized
// by extension.
func openSource(patterns []string) (reader.Source, []string, error) {
	files, err := reader.ExpandGlobs(patterns)
	if err != nil {
		return nil, nil, fmt.Errorf("expanding input patterns: %w", err)
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no input files matched: %v", patterns)
	}

	if len(files) == 1 {
		return openFile(files[0]), files, nil
	}

	sources := make([]reader.Source, len(files))
	for i, file := range files {
		sources[i] = openFile(file)
	}
	return reader.NewMergedSource(sources...), files, nil
}

func openFile(path string) reader.Source {
	if strings.HasSuffix(path, ".jsonl") || strings.HasSuffix(path, ".jsonl.gz") {
		return reader.NewJSONLSource(path)
	}
	return reader.NewFileSource(path)
}

// collectEntries drains a source, applying the filter and the retention
// limit. When the limit cuts entries, the most recent ones are kept.
func collectEntries(ctx context.Context, source reader.Source, fo filter.Options, limit int) (entries []*reader.Entry, linesRead int, truncated bool, err error) {
	for {
		entry, nextErr := source.Next(ctx)
		if nextErr == io.EOF {
			break
		}
		if nextErr != nil {
			return nil, 0, false, nextErr
		}

		linesRead++
		if fo.Match(entry) {
			entries = append(entries, entry)
		}
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
		truncated = true
	}

	return entries, linesRead, truncated, nil
}
