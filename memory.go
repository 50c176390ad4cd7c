package credstore

import "sync"

type memoryEntry struct {
	service string
	account string
	secret  string
}

// MemoryStore is an in-memory implementation of Store for testing and
// for platforms without a native credential store.
//
// Entries are kept in insertion order: FindPassword returns the oldest
// matching entry and FindCredentials enumerates oldest-first. Updating
// an existing entry keeps its position.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []memoryEntry
}

// NewMemoryStore creates a new in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Set(service, account, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].service == service && s.entries[i].account == account {
			s.entries[i].secret = secret
			return nil
		}
	}
	s.entries = append(s.entries, memoryEntry{service, account, secret})
	return nil
}

func (s *MemoryStore) Get(service, account string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.entries {
		if s.entries[i].service == service && s.entries[i].account == account {
			return s.entries[i].secret, nil
		}
	}
	return "", ErrNotFound
}

func (s *MemoryStore) Delete(service, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].service == service && s.entries[i].account == account {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) FindPassword(service string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.entries {
		if s.entries[i].service == service {
			return s.entries[i].secret, nil
		}
	}
	return "", ErrNotFound
}

func (s *MemoryStore) FindCredentials(service string) ([]Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var creds []Credential
	for i := range s.entries {
		if s.entries[i].service == service {
			creds = append(creds, Credential{
				Account: s.entries[i].account,
				Secret:  s.entries[i].secret,
			})
		}
	}
	if len(creds) == 0 {
		return nil, ErrNotFound
	}
	return creds, nil
}
