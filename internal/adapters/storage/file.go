package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
)

const (
	defaultFileMode = 0o600
	tempFilePrefix  = ".atom-tmp-"
)

// FileStorage keeps the document as a JSON file.
type FileStorage struct {
	mu   sync.Mutex
	path string
	perm fs.FileMode
}

// FileOption applies a configuration option to FileStorage.
type FileOption func(*FileStorage)

// WithFileMode sets the permissions of the state file.
func WithFileMode(perm fs.FileMode) FileOption {
	return func(s *FileStorage) {
		if perm != 0 {
			s.perm = perm
		}
	}
}

// NewFileStorage returns storage backed by the file at path.
func NewFileStorage(path string, opts ...FileOption) *FileStorage {
	s := &FileStorage{path: path, perm: defaultFileMode}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the state file location.
func (s *FileStorage) Path() string { return s.path }

// Load reads the state file. A missing file yields ErrNoState.
func (s *FileStorage) Load(ctx context.Context) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("open state file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Save replaces the state file atomically.
func (s *FileStorage) Save(ctx context.Context, doc *model.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Marshal(doc, FormatJSON)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	return writeFileAtomic(s.path, data, s.perm)
}

// Remove deletes the state file. A missing file is not an error.
func (s *FileStorage) Remove(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove state file: %w", err)
	}
	return nil
}

// writeFileAtomic writes to a temp file in the target directory and renames
// it over filename.
func writeFileAtomic(filename string, data []byte, perm fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), tempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", filename, err)
	}
	return nil
}
