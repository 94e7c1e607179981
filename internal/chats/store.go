// Package chats persists chat transcripts in the shared store, scoped per
// model, with a bounded most-recent listing.
package chats

import (
	"sort"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/kvstore"
)

const (
	// MaxListed caps how many sessions a listing returns per model.
	MaxListed = 20
	// titleLimit caps derived session titles, counted in runes.
	titleLimit = 50
	// fallbackTitle is used when a session has no user text to derive from.
	fallbackTitle = "Nueva conversación"
)

// Store reads and writes chat sessions. A session only becomes durable once
// a message exchange completes and Save is called; Save replaces the stored
// record wholesale.
type Store struct {
	kv  kvstore.Store
	log zerolog.Logger
	now func() time.Time
}

// NewStore creates a session store over the given key-value store.
func NewStore(kv kvstore.Store, log zerolog.Logger) *Store {
	return &Store{
		kv:  kv,
		log: log.With().Str("component", "chats").Logger(),
		now: time.Now,
	}
}

// NewSessionID generates a fresh collision-resistant session identifier.
// Nothing is persisted until the first Save.
func (s *Store) NewSessionID() string {
	return uuid.NewString()
}

// Save inserts or overwrites the full transcript for id. The title is
// derived from lastUserText, and the timestamp is set to the current
// instant.
func (s *Store) Save(id, modelID string, messages []domain.Message, lastUserText string) {
	all := s.load()
	all[id] = domain.ChatSession{
		ID:        id,
		Model:     modelID,
		Title:     deriveTitle(lastUserText),
		Messages:  messages,
		UpdatedAt: s.now().UTC(),
	}
	s.kv.Set(kvstore.KeyChats, all)
	s.log.Debug().Str("session", id).Str("model", modelID).Int("messages", len(messages)).Msg("session saved")
}

// List returns up to MaxListed sessions for modelID, most recently updated
// first. Ties on the timestamp break on id to keep the order deterministic.
func (s *Store) List(modelID string) []domain.ChatSession {
	all := s.load()
	out := make([]domain.ChatSession, 0, len(all))
	for _, sess := range all {
		if sess.Model == modelID {
			out = append(out, sess)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > MaxListed {
		out = out[:MaxListed]
	}
	return out
}

// Load returns the stored session for id. Absence (including a corrupted
// store) yields an empty transcript and false.
func (s *Store) Load(id string) (domain.ChatSession, bool) {
	all := s.load()
	sess, ok := all[id]
	if !ok {
		return domain.ChatSession{ID: id}, false
	}
	return sess, true
}

func (s *Store) load() map[string]domain.ChatSession {
	all := map[string]domain.ChatSession{}
	s.kv.Get(kvstore.KeyChats, &all)
	return all
}

// deriveTitle takes the leading runes of the user's last message, falling
// back to a placeholder when it is empty.
func deriveTitle(lastUserText string) string {
	if lastUserText == "" {
		return fallbackTitle
	}
	if utf8.RuneCountInString(lastUserText) <= titleLimit {
		return lastUserText
	}
	runes := []rune(lastUserText)
	return string(runes[:titleLimit])
}
