// Package settings persists viewer preferences in a YAML key-value file
// and notifies registered listeners when any value changes.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/logsift/logsift/pkg/logcat"
)

// Settings holds the persisted viewer preferences.
type Settings struct {
	// Buffers are the selected logcat buffer names.
	Buffers []string `mapstructure:"buffers"`

	// MaxLines is the line-count retention limit.
	MaxLines int `mapstructure:"max_lines"`

	// MinLevel is the single-character minimum log level filter.
	MinLevel string `mapstructure:"min_level"`

	// IncludeDeviceInfo controls whether exports carry device metadata.
	IncludeDeviceInfo bool `mapstructure:"include_device_info"`
}

// MinLevelByte returns the minimum level as a level code byte.
func (s Settings) MinLevelByte() byte {
	if s.MinLevel == "" {
		return logcat.LevelVerbose
	}
	return s.MinLevel[0]
}

// Equal reports whether two settings carry the same values.
func (s Settings) Equal(other Settings) bool {
	return slices.Equal(s.Buffers, other.Buffers) &&
		s.MaxLines == other.MaxLines &&
		s.MinLevel == other.MinLevel &&
		s.IncludeDeviceInfo == other.IncludeDeviceInfo
}

// Store loads, persists, and watches a settings file.
type Store struct {
	v    *viper.Viper
	path string

	mu        sync.Mutex
	current   Settings
	callbacks []func(Settings)
}

// Open reads the settings file at path, falling back to defaults when the
// file does not exist. An empty path uses DefaultPath. Environment variables
// with the LOGSIFT_ prefix override file values.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("buffers", DefaultBuffers)
	v.SetDefault("max_lines", DefaultMaxLines)
	v.SetDefault("min_level", DefaultMinLevel)
	v.SetDefault("include_device_info", false)

	v.SetEnvPrefix(EnvPrefix)
	for _, key := range []string{"max_lines", "min_level", "include_device_info"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing file means first run: defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !os.IsNotExist(err) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading settings file: %w", err)
		}
	}

	s := &Store{v: v, path: path}
	current, err := s.unmarshal()
	if err != nil {
		return nil, err
	}
	s.current = current

	return s, nil
}

// Path returns the settings file location backing this store.
func (s *Store) Path() string {
	return s.path
}

// Current returns a copy of the effective settings.
func (s *Store) Current() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Update validates, applies, and persists new settings, then notifies
// registered listeners if any value changed.
func (s *Store) Update(settings Settings) error {
	if err := Validate(settings); err != nil {
		return err
	}

	s.mu.Lock()
	changed := !s.current.Equal(settings)
	s.current = settings
	s.v.Set("buffers", settings.Buffers)
	s.v.Set("max_lines", settings.MaxLines)
	s.v.Set("min_level", settings.MinLevel)
	s.v.Set("include_device_info", settings.IncludeDeviceInfo)
	callbacks := slices.Clone(s.callbacks)
	s.mu.Unlock()

	if err := s.save(); err != nil {
		return err
	}

	if changed {
		for _, fn := range callbacks {
			fn(settings)
		}
	}
	return nil
}

// OnChange registers a callback invoked whenever any setting changes,
// through Update or an external edit picked up by Watch.
func (s *Store) OnChange(fn func(Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

// Watch starts monitoring the settings file for external edits.
// Invalid edits are ignored; the previous settings stay in effect.
func (s *Store) Watch() {
	s.v.OnConfigChange(func(fsnotify.Event) {
		settings, err := s.unmarshal()
		if err != nil {
			return
		}

		s.mu.Lock()
		changed := !s.current.Equal(settings)
		if changed {
			s.current = settings
		}
		callbacks := slices.Clone(s.callbacks)
		s.mu.Unlock()

		if changed {
			for _, fn := range callbacks {
				fn(settings)
			}
		}
	})
	s.v.WatchConfig()
}

// Validate checks settings values for consistency.
func Validate(s Settings) error {
	if len(s.Buffers) == 0 {
		return errors.New("buffers: at least one buffer is required")
	}
	for _, b := range s.Buffers {
		if b == "" {
			return errors.New("buffers: buffer names must not be empty")
		}
	}

	if s.MaxLines <= 0 {
		return fmt.Errorf("max_lines: must be positive, got %d", s.MaxLines)
	}

	if len(s.MinLevel) != 1 || !logcat.ValidLevel(s.MinLevel[0]) {
		return fmt.Errorf("min_level: %q is not a log level code (V, D, I, W, E, F, S)", s.MinLevel)
	}

	return nil
}

func (s *Store) unmarshal() (Settings, error) {
	var settings Settings
	if err := s.v.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	if err := Validate(settings); err != nil {
		return Settings{}, fmt.Errorf("validating settings: %w", err)
	}
	return settings, nil
}

func (s *Store) save() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating settings directory: %w", err)
		}
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}
