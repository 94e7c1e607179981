package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// FileStore persists each key as one JSON document under a base directory.
// It is intended for development and single-profile deployments where a
// database service is not available. Writers within the process are
// serialized; concurrent processes sharing the directory are last-writer-wins.
type FileStore struct {
	basePath string
	log      zerolog.Logger
	mu       sync.Mutex
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string, log zerolog.Logger) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("kvstore: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("kvstore: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath, log: log}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Get reads the document stored under key into dest. Missing files and
// malformed JSON both report false and leave dest untouched.
func (s *FileStore) Get(key string, dest any) bool {
	path, err := s.pathFor(key)
	if err != nil {
		return false
	}
	s.mu.Lock()
	raw, err := os.ReadFile(path)
	s.mu.Unlock()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("kvstore: discarding malformed document")
		return false
	}
	return true
}

// Set serializes value and stores it under key, replacing any previous
// document. Errors are logged and otherwise discarded.
func (s *FileStore) Set(key string, value any) {
	path, err := s.pathFor(key)
	if err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("kvstore: rejecting write")
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("kvstore: marshal failed")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("kvstore: write failed")
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("kvstore: rename failed")
	}
}

// Remove deletes the document stored under key, silently ignoring absence.
func (s *FileStore) Remove(key string) {
	path, err := s.pathFor(key)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Debug().Err(err).Str("key", key).Msg("kvstore: remove failed")
	}
}

func (s *FileStore) pathFor(key string) (string, error) {
	clean, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, clean+".json"), nil
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("kvstore: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || strings.HasPrefix(cleaned, "../") || strings.Contains(cleaned, "/") {
		return "", errors.New("kvstore: invalid key")
	}
	return cleaned, nil
}
