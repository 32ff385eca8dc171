// Package file persists slots as a JSON object in a single file. Writes go
// to a temporary file in the same directory and are renamed into place, so
// a crash never leaves a half-written file behind.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/sunrise-apartments/portal/internal/core/ports"
)

// Storage is a file-backed SlotStorage.
type Storage struct {
	mu   sync.Mutex
	path string
}

var _ ports.SlotStorage = (*Storage)(nil)

// New returns a Storage writing to path, creating its directory when needed.
func New(path string) (*Storage, error) {
	if path == "" {
		return nil, errors.New("file storage: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("file storage: create dir: %w", err)
	}
	return &Storage{path: path}, nil
}

// Path is the backing file.
func (s *Storage) Path() string { return s.path }

func (s *Storage) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := s.load()
	if err != nil {
		return "", err
	}
	v, ok := slots[key]
	if !ok {
		return "", ports.ErrSlotNotFound
	}
	return v, nil
}

func (s *Storage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := s.load()
	if err != nil {
		// An unreadable file is replaced rather than blocking every write.
		slots = map[string]string{}
	}
	slots[key] = value
	return s.save(slots)
}

func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := s.load()
	if err != nil {
		return s.save(map[string]string{})
	}
	if _, ok := slots[key]; !ok {
		return nil
	}
	delete(slots, key)
	return s.save(slots)
}

// Ping checks that the directory is writable.
func (s *Storage) Ping(context.Context) error {
	f, err := os.CreateTemp(filepath.Dir(s.path), ".ping-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func (s *Storage) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file storage: read: %w", err)
	}
	slots := map[string]string{}
	if len(raw) == 0 {
		return slots, nil
	}
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, fmt.Errorf("file storage: decode: %w", err)
	}
	return slots, nil
}

func (s *Storage) save(slots map[string]string) error {
	raw, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("file storage: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("file storage: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file storage: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file storage: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file storage: close: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("file storage: chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("file storage: rename: %w", err)
	}
	return nil
}
