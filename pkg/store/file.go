package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"
)

// DefaultFileName is the file FileStore uses inside the config directory.
const DefaultFileName = "calculations.json"

// FileStore keeps all calculations in one JSON file. Every write rewrites
// the file through a temp file and rename, so a crash never leaves a
// half-written store behind.
type FileStore struct {
	mu   sync.RWMutex
	path string
	now  func() time.Time
}

// NewFileStore opens the store at path, creating its directory if needed.
// If path is empty, defaults to ~/.config/speakerbox/calculations.json
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		path = filepath.Join(home, ".config", "speakerbox", DefaultFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{path: path, now: time.Now}, nil
}

// Path returns the store file.
func (s *FileStore) Path() string {
	return s.path
}

// load reads all records. A missing file is an empty store.
func (s *FileStore) load() ([]Calculation, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}
	var calcs []Calculation
	if err := json.Unmarshal(data, &calcs); err != nil {
		return nil, fmt.Errorf("parse store file %s: %w", s.path, err)
	}
	return calcs, nil
}

func (s *FileStore) write(calcs []Calculation) error {
	sortNewestFirst(calcs)
	data, err := json.MarshalIndent(calcs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal calculations: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".calculations-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

func (s *FileStore) Save(_ context.Context, c Calculation) (Calculation, error) {
	c, err := prepare(c, s.now)
	if err != nil {
		return Calculation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	calcs, err := s.load()
	if err != nil {
		return Calculation{}, err
	}
	calcs = slices.DeleteFunc(calcs, func(old Calculation) bool { return old.Name == c.Name })
	if err := s.write(append(calcs, c)); err != nil {
		return Calculation{}, err
	}
	return c, nil
}

func (s *FileStore) List(_ context.Context) ([]Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	calcs, err := s.load()
	if err != nil {
		return nil, err
	}
	sortNewestFirst(calcs)
	if calcs == nil {
		calcs = []Calculation{}
	}
	return calcs, nil
}

func (s *FileStore) Get(_ context.Context, id string) (Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	calcs, err := s.load()
	if err != nil {
		return Calculation{}, err
	}
	i := slices.IndexFunc(calcs, func(c Calculation) bool { return c.ID == id })
	if i < 0 {
		return Calculation{}, notFound(id)
	}
	return calcs[i], nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	calcs, err := s.load()
	if err != nil {
		return err
	}
	n := len(calcs)
	calcs = slices.DeleteFunc(calcs, func(c Calculation) bool { return c.ID == id })
	if len(calcs) == n {
		return notFound(id)
	}
	return s.write(calcs)
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
