// Package inmemdoc is a volatile storage backend for tests.
package inmemdoc

import (
	"context"
	"sync"

	"github.com/trezcool/shule/core/school"
)

type Store struct {
	mu   sync.RWMutex
	data []byte
	puts int
}

var _ school.Storage = (*Store)(nil)

func Open() *Store {
	return &Store{}
}

func (s *Store) Get(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data == nil {
		return nil, school.ErrDocumentNotFound
	}
	return append([]byte{}, s.data...), nil
}

func (s *Store) Put(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = append([]byte{}, data...)
	s.puts++
	return nil
}

// Bytes returns the last persisted document.
func (s *Store) Bytes() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte{}, s.data...)
}

// PutCount reports how many times the document was persisted; handy in
// tests asserting persist-per-mutation behavior.
func (s *Store) PutCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}
