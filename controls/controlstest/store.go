// Package controlstest provides an in-memory sysfs for testing control points.
package controlstest

import (
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/tr4cks/hwctl/controls"
)

var ErrInjected = errors.New("injected write failure")

// Write is one recorded Store.Write call.
type Write struct {
	Key   string
	Value string
}

// Store is a controls.Store over an in-memory filesystem that records every
// write and can be told to fail writes to chosen keys.
type Store struct {
	*controls.FileStore
	Fs afero.Fs

	Writes   []Write
	FailKeys map[string]bool
}

// NewStore creates the given files with their initial contents.
func NewStore(t testing.TB, files map[string]string) *Store {
	t.Helper()

	fs := afero.NewMemMapFs()
	for path, content := range files {
		err := afero.WriteFile(fs, path, []byte(content), 0o644)
		if err != nil {
			t.Fatalf("Failed to create %q: %v", path, err)
		}
	}
	return &Store{
		FileStore: controls.NewFileStore(fs, "/"),
		Fs:        fs,
		FailKeys:  map[string]bool{},
	}
}

func (s *Store) Write(key string, value string) error {
	s.Writes = append(s.Writes, Write{key, value})
	if s.FailKeys[key] {
		return fmt.Errorf("error writing %q to %q: %w", value, key, ErrInjected)
	}
	return s.FileStore.Write(key, value)
}

// Content returns the raw content of a file.
func (s *Store) Content(t testing.TB, key string) string {
	t.Helper()

	data, err := afero.ReadFile(s.Fs, key)
	if err != nil {
		t.Fatalf("Failed to read %q: %v", key, err)
	}
	return string(data)
}
