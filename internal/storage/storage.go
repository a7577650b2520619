// Package storage persists the session's identity material (token, userId)
// across process restarts. Only the session manager writes these keys; other
// components seed themselves from it once, at construction.
package storage

import "sync"

// Well-known keys.
const (
	KeyToken  = "token"
	KeyUserID = "userId"
)

// KeyStore is a small string key/value store. Get returns an empty string
// for missing keys; Clear removes everything.
type KeyStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	Clear() error
}

// MemStore is an in-memory KeyStore for tests and throwaway sessions.
type MemStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

func (s *MemStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key], nil
}

func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
	return nil
}
