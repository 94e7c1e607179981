package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/internal/i18n"
	"server/internal/middleware"
	"server/internal/providers/chat"
)

type sendMessageRequest struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

type sendMessageResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	Balance   int    `json:"balance"`
	Cost      int    `json:"cost"`
	Title     string `json:"title"`
}

type sessionSummaryDTO struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	Title     string    `json:"title"`
	Messages  int       `json:"messages"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewChat hands out a fresh session id. Nothing is persisted until the
// first completed exchange.
func (a *App) NewChat(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusCreated, map[string]string{"session_id": a.Chats.NewSessionID()})
}

// ListChats returns the most recent sessions for a model, newest first.
func (a *App) ListChats(w http.ResponseWriter, r *http.Request) {
	modelID := r.URL.Query().Get("model")
	if modelID == "" {
		modelID = domain.ModelRobloxAI
	}
	sessions := a.Chats.List(modelID)
	out := make([]sessionSummaryDTO, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionSummaryDTO{
			ID:        s.ID,
			Model:     s.Model,
			Title:     s.Title,
			Messages:  len(s.Messages),
			UpdatedAt: s.UpdatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"sessions": out})
}

// GetChat loads one transcript. An unknown id yields an empty transcript,
// matching the store contract.
func (a *App) GetChat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, _ := a.Chats.Load(id)
	a.json(w, http.StatusOK, session)
}

// SendMessage runs one chat exchange: affordability gate, provider call,
// spend, persist. The user's message never reaches the store when the
// provider fails, and credits are only spent on success.
func (a *App) SendMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	id := chi.URLParam(r, "id")
	locale := middleware.LocaleFromContext(r.Context())

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "text is required")
		return
	}
	modelID := req.Model
	if modelID == "" {
		modelID = domain.ModelRobloxAI
	}

	cost := a.Ledger.Cost(modelID)
	if !a.Ledger.CanAfford(user.Email, modelID) {
		a.error(w, http.StatusPaymentRequired, "insufficient_credits", i18n.T(locale, i18n.MsgInsufficientCredits))
		return
	}

	session, _ := a.Chats.Load(id)
	messages := append(session.Messages, domain.Message{Role: domain.RoleUser, Content: text})

	reply, err := a.Responder.Respond(r.Context(), chat.Request{
		APIKey:   a.apiKey(),
		ModelID:  modelID,
		Messages: messages,
	})
	if err != nil {
		a.Logger.Error().Err(err).Str("session", id).Str("model", modelID).Msg("chat exchange failed")
		a.error(w, http.StatusBadGateway, "upstream_error", i18n.T(locale, i18n.MsgConnectivityError))
		return
	}

	if !a.Ledger.Spend(user.Email, cost) {
		// Balance moved underneath us between the gate and here.
		a.error(w, http.StatusPaymentRequired, "insufficient_credits", i18n.T(locale, i18n.MsgInsufficientCredits))
		return
	}

	messages = append(messages, domain.Message{Role: domain.RoleAssistant, Content: reply})
	a.Chats.Save(id, modelID, messages, text)

	saved, _ := a.Chats.Load(id)
	title := saved.Title
	a.json(w, http.StatusOK, sendMessageResponse{
		SessionID: id,
		Reply:     reply,
		Balance:   a.Ledger.Balance(user.Email),
		Cost:      cost,
		Title:     title,
	})
}

// Models lists the chat model catalog.
func (a *App) Models(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"models": domain.ChatModels})
}
