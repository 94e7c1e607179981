// Package credentials stores the user-provided Anthropic API key in the
// shared key-value store.
package credentials

import (
	"strings"

	"server/internal/domain"
	"server/internal/kvstore"
)

const apiKeyPrefix = "sk-ant-"

// Store reads and writes the saved API key.
type Store struct {
	kv kvstore.Store
}

func NewStore(kv kvstore.Store) *Store {
	return &Store{kv: kv}
}

// APIKey returns the saved key, empty when none is stored.
func (s *Store) APIKey() string {
	var key string
	if !s.kv.Get(kvstore.KeyAPIKey, &key) {
		return ""
	}
	return strings.TrimSpace(key)
}

// SetAPIKey validates and saves the key. Keys must carry the Anthropic
// prefix; anything else is rejected before touching the store.
func (s *Store) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" || !strings.HasPrefix(key, apiKeyPrefix) {
		return domain.NewValidationError("api_key", "key must start with "+apiKeyPrefix)
	}
	s.kv.Set(kvstore.KeyAPIKey, key)
	return nil
}
