package domain

import "time"

// Message roles within a chat transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role/content pair of a transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatSession is one persisted transcript tied to a single model. Messages
// are append-only for the lifetime of the in-memory object; saves overwrite
// the stored record wholesale. JSON field names match the stored layout.
type ChatSession struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	UpdatedAt time.Time `json:"updatedAt"`
}
