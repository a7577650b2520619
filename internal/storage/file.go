package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// FileStore keeps the key/value map in a single JSON file. Writes are atomic:
// the new content goes to a .tmp file which then replaces the original, so a
// crash mid-write never corrupts the stored session.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return err
	}
	delete(values, key)
	return s.save(values)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	return nil
}

func (s *FileStore) load() (map[string]string, error) {
	values := make(map[string]string)
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&values); err != nil {
		return nil, fmt.Errorf("failed to decode store: %w", err)
	}
	return values, nil
}

func (s *FileStore) save(values map[string]string) error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	if err := json.NewEncoder(f).Encode(values); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode store: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	return os.Rename(tmp, s.path)
}
