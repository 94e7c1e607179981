package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"server/internal/domain"
	"server/internal/i18n"
	"server/internal/middleware"
)

type apiKeyRequest struct {
	APIKey string `json:"api_key"`
}

// SetAPIKey stores the user-provided Anthropic key used for real replies.
func (a *App) SetAPIKey(w http.ResponseWriter, r *http.Request) {
	var req apiKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	locale := middleware.LocaleFromContext(r.Context())

	if err := a.Keys.SetAPIKey(req.APIKey); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			a.error(w, http.StatusBadRequest, "invalid_api_key", i18n.T(locale, i18n.MsgAPIKeyInvalid))
			return
		}
		a.Logger.Error().Err(err).Msg("save api key failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"message": i18n.T(locale, i18n.MsgAPIKeySaved)})
}

// GetAPIKey reports whether a key is saved, exposing only a masked suffix.
func (a *App) GetAPIKey(w http.ResponseWriter, r *http.Request) {
	key := a.Keys.APIKey()
	if key == "" {
		a.json(w, http.StatusOK, map[string]any{"configured": false})
		return
	}
	masked := key
	if len(masked) > 10 {
		masked = masked[:10] + strings.Repeat("*", 4)
	}
	a.json(w, http.StatusOK, map[string]any{"configured": true, "api_key": masked})
}
