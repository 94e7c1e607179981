package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"server/internal/auth"
	"server/internal/chats"
	"server/internal/infra/credentials"
	"server/internal/kvstore"
	"server/internal/ledger"
	"server/internal/providers/chat"
)

// App bundles the services the HTTP handlers operate on.
type App struct {
	Store     kvstore.Store
	Users     *auth.Service
	Ledger    *ledger.Ledger
	Chats     *chats.Store
	Responder chat.Responder
	Keys      *credentials.Store
	Logger    zerolog.Logger

	// DefaultAPIKey is the server-wide Anthropic key; a key saved through
	// the settings endpoint takes precedence per request.
	DefaultAPIKey string
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

// apiKey resolves the key used for outbound chat calls.
func (a *App) apiKey() string {
	if key := a.Keys.APIKey(); key != "" {
		return key
	}
	return a.DefaultAPIKey
}
