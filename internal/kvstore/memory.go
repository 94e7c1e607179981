package kvstore

import (
	"encoding/json"
	"sync"
)

// MemStore is an in-memory Store used in tests and as a scratch profile.
// Documents are kept as serialized JSON so Get/Set round-trip exactly like
// the file-backed store.
type MemStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[string][]byte)}
}

func (s *MemStore) Get(key string, dest any) bool {
	s.mu.Lock()
	raw, ok := s.docs[key]
	s.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (s *MemStore) Set(key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.docs[key] = raw
	s.mu.Unlock()
}

func (s *MemStore) Remove(key string) {
	s.mu.Lock()
	delete(s.docs, key)
	s.mu.Unlock()
}

// Corrupt overwrites the raw document under key, bypassing serialization.
// Tests use it to simulate a damaged store.
func (s *MemStore) Corrupt(key string, raw []byte) {
	s.mu.Lock()
	s.docs[key] = raw
	s.mu.Unlock()
}
