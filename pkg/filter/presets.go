package filter

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/logsift/logsift/pkg/logcat"
)

// Preset is a named, reusable filter definition loaded from YAML.
type Preset struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	MinLevel       string   `yaml:"min_level,omitempty"`
	Tags           []string `yaml:"tags,omitempty"`
	PIDs           []int    `yaml:"pids,omitempty"`
	MessagePattern string   `yaml:"message_pattern,omitempty"`
	WithSeparators bool     `yaml:"with_separators,omitempty"`

	// compiledMessagePattern is populated during validation.
	compiledMessagePattern *regexp.Regexp
}

// CompiledMessagePattern returns the pre-compiled message pattern,
// or nil when the preset has none.
func (p *Preset) CompiledMessagePattern() *regexp.Regexp {
	return p.compiledMessagePattern
}

// Options converts the preset into filter criteria.
func (p *Preset) Options() Options {
	opts := Options{
		Tags:           TagSet(p.Tags),
		PIDs:           PIDSet(p.PIDs),
		MessageRegex:   p.compiledMessagePattern,
		WithSeparators: p.WithSeparators,
	}
	if p.MinLevel != "" {
		opts.MinLevel = p.MinLevel[0]
	}
	return opts
}

// presetFile is the YAML document shape.
type presetFile struct {
	Filters []Preset `yaml:"filters"`
}

// LoadPresets reads and validates a filter presets file.
func LoadPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading presets file: %w", err)
	}

	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing presets file: %w", err)
	}

	if len(file.Filters) == 0 {
		return nil, errors.New("filters: at least one filter is required")
	}

	seen := make(map[string]bool)
	for i := range file.Filters {
		p := &file.Filters[i]
		if err := validatePreset(p); err != nil {
			return nil, fmt.Errorf("filters[%d] (%s): %w", i, p.Name, err)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("filters[%d]: duplicate name %q", i, p.Name)
		}
		seen[p.Name] = true
	}

	return file.Filters, nil
}

// FindPreset returns the preset with the given name.
func FindPreset(presets []Preset, name string) (*Preset, error) {
	for i := range presets {
		if presets[i].Name == name {
			return &presets[i], nil
		}
	}
	return nil, fmt.Errorf("no filter preset named %q", name)
}

func validatePreset(p *Preset) error {
	if p.Name == "" {
		return errors.New("name is required")
	}

	if p.MinLevel != "" {
		if len(p.MinLevel) != 1 || !logcat.ValidLevel(p.MinLevel[0]) {
			return fmt.Errorf("invalid min_level %q", p.MinLevel)
		}
	}

	if p.MessagePattern != "" {
		re, err := regexp.Compile(p.MessagePattern)
		if err != nil {
			return fmt.Errorf("invalid message_pattern: %w", err)
		}
		p.compiledMessagePattern = re
	}

	return nil
}
