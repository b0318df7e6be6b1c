package credentials

import (
	"sync"
)

// Store holds at most one live credential for the whole process. Set and
// Clear are atomic with respect to Current: readers always see the latest
// committed credential or none, never a partial write.
type Store interface {
	Current() Credential
	Set(credential Credential) error
	Clear() error
}

type MemoryStore struct {
	lock       sync.RWMutex
	credential Credential
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Current() Credential {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.credential
}

func (s *MemoryStore) Set(credential Credential) error {
	s.lock.Lock()
	s.credential = credential
	s.lock.Unlock()

	return nil
}

func (s *MemoryStore) Clear() error {
	s.lock.Lock()
	s.credential = nil
	s.lock.Unlock()

	return nil
}
