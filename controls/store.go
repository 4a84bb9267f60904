package controls

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// Store gives control points access to kernel-exposed values by key.
// Keys are absolute sysfs paths.
type Store interface {
	Exists(key string) bool
	Read(key string) (string, error)
	Write(key string, value string) error
}

// FileStore is a Store over a filesystem. Every key is resolved below Root.
type FileStore struct {
	fs   afero.Fs
	root string
}

func NewFileStore(fs afero.Fs, root string) *FileStore {
	if root == "" {
		root = "/"
	}
	return &FileStore{fs: fs, root: root}
}

// NewSysfsStore returns a FileStore backed by the real filesystem.
func NewSysfsStore(root string) *FileStore {
	return NewFileStore(afero.NewOsFs(), root)
}

func (s *FileStore) resolve(key string) string {
	return path.Join(s.root, key)
}

func (s *FileStore) Exists(key string) bool {
	_, err := s.fs.Stat(s.resolve(key))
	return err == nil
}

// Read returns the first line of the file with surrounding whitespace removed.
func (s *FileStore) Read(key string) (string, error) {
	file, err := s.fs.Open(s.resolve(key))
	if err != nil {
		return "", fmt.Errorf("error opening %q: %w", key, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("error reading %q: %w", key, err)
	}
	line, _, _ := strings.Cut(string(data), "\n")
	return strings.TrimSpace(line), nil
}

// Write replaces the content of an existing file. Sysfs attributes cannot be
// created from userspace, so a missing file is an error.
func (s *FileStore) Write(key string, value string) error {
	file, err := s.fs.OpenFile(s.resolve(key), os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("error opening %q: %w", key, err)
	}

	_, err = file.Write([]byte(value))
	closeErr := file.Close()
	if err = errors.Join(err, closeErr); err != nil {
		return fmt.Errorf("error writing %q to %q: %w", value, key, err)
	}
	return nil
}
