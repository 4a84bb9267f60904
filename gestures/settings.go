// Package gestures stores the touchscreen gesture switches.
package gestures

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	KeyAmbientDisplay = "ambient_display_enable"
	KeyHandWave       = "gesture_hand_wave"
	KeyPocket         = "gesture_pocket"
)

type Setting struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Enabled bool   `json:"enabled"`
}

var definitions = []struct {
	key   string
	title string
	def   bool
}{
	{KeyAmbientDisplay, "Ambient display", true},
	{KeyHandWave, "Hand wave", true},
	{KeyPocket, "Pocket mode", false},
}

var ErrUnknownKey = errors.New("unknown gesture setting")

type Settings struct {
	fs   afero.Fs
	path string

	mu     sync.Mutex
	values map[string]bool
}

// Load reads the settings file. A missing file yields the defaults.
func Load(fsys afero.Fs, path string) (*Settings, error) {
	s := &Settings{fs: fsys, path: path}
	err := s.reload()
	if err != nil {
		return nil, err
	}
	return s, nil
}

// reload replaces the in-memory values with the file content. Other
// processes (the CLI, a second server) write the same file.
func (s *Settings) reload() error {
	values := make(map[string]bool, len(definitions))
	for _, d := range definitions {
		values[d.key] = d.def
	}

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading gesture settings %q: %w", s.path, err)
	}
	if err == nil {
		stored := map[string]bool{}
		err = yaml.Unmarshal(data, &stored)
		if err != nil {
			return fmt.Errorf("error decoding YAML file %q: %w", s.path, err)
		}
		for key, value := range stored {
			if _, ok := values[key]; ok {
				values[key] = value
			}
		}
	}

	s.values = values
	return nil
}

func (s *Settings) Get(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.reload()
	if err != nil {
		return false, err
	}
	value, ok := s.values[key]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return value, nil
}

// Set re-reads the file, updates one switch and writes every setting back.
func (s *Settings) Set(key string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	err := s.reload()
	if err != nil {
		return err
	}
	previous := s.values[key]
	s.values[key] = enabled

	err = s.save()
	if err != nil {
		s.values[key] = previous
		return err
	}
	return nil
}

// All returns every setting in display order. When the file cannot be read
// the last values seen are returned.
func (s *Settings) All() []Setting {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.reload()
	settings := make([]Setting, 0, len(definitions))
	for _, d := range definitions {
		settings = append(settings, Setting{Key: d.key, Title: d.title, Enabled: s.values[d.key]})
	}
	return settings
}

func (s *Settings) save() error {
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("error encoding gesture settings: %w", err)
	}
	err = s.fs.MkdirAll(filepath.Dir(s.path), 0o755)
	if err != nil {
		return fmt.Errorf("error creating directory for %q: %w", s.path, err)
	}
	err = afero.WriteFile(s.fs, s.path, data, 0o644)
	if err != nil {
		return fmt.Errorf("error writing gesture settings %q: %w", s.path, err)
	}
	return nil
}
