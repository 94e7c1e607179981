package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"server/internal/auth"
	"server/internal/domain"
	"server/internal/i18n"
	"server/internal/middleware"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleSignInRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type sessionResponse struct {
	User    userDTO `json:"user"`
	Balance int     `json:"balance"`
	Message string  `json:"message,omitempty"`
}

type userDTO struct {
	Email   string          `json:"email"`
	Name    string          `json:"name"`
	Plan    domain.UserPlan `json:"plan"`
	Created time.Time       `json:"created"`
	Google  bool            `json:"google,omitempty"`
}

func toUserDTO(u domain.SessionUser) userDTO {
	return userDTO{Email: u.Email, Name: u.Name, Plan: u.Plan, Created: u.Created, Google: u.Google}
}

// Register creates an account, grants the initial credits, and signs the
// user in.
func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	locale := middleware.LocaleFromContext(r.Context())

	session, err := a.Users.Register(auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Confirm:  req.Confirm,
	})
	if err != nil {
		a.authError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, sessionResponse{
		User:    toUserDTO(session),
		Balance: a.Ledger.Balance(session.Email),
		Message: i18n.T(locale, i18n.MsgAccountCreated),
	})
}

// Login verifies a password credential and signs the user in.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	locale := middleware.LocaleFromContext(r.Context())

	session, err := a.Users.Login(req.Email, req.Password)
	if err != nil {
		a.authError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, sessionResponse{
		User:    toUserDTO(session),
		Balance: a.Ledger.Balance(session.Email),
		Message: i18n.T(locale, i18n.MsgWelcomeBack),
	})
}

// GoogleAccounts lists the fixed mock picker accounts.
func (a *App) GoogleAccounts(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"accounts": domain.MockGoogleAccounts})
}

// GoogleSignIn signs in a picked mock account, creating it on first sight.
func (a *App) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req googleSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	session, err := a.Users.GoogleSignIn(req.Name, req.Email)
	if err != nil {
		a.authError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, sessionResponse{
		User:    toUserDTO(session),
		Balance: a.Ledger.Balance(session.Email),
	})
}

// Logout clears the current session.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	a.Users.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user and their balance.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	a.json(w, http.StatusOK, sessionResponse{
		User:    toUserDTO(user),
		Balance: a.Ledger.Balance(user.Email),
	})
}

// authError maps auth service failures onto the error taxonomy: validation
// errors name the offending field, authorization errors stay generic, and
// nothing leaks internals.
func (a *App) authError(w http.ResponseWriter, r *http.Request, err error) {
	locale := middleware.LocaleFromContext(r.Context())

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		a.json(w, http.StatusBadRequest, map[string]any{
			"error": map[string]string{
				"code":    "validation",
				"field":   verr.Field,
				"message": verr.Message,
			},
		})
	case errors.Is(err, domain.ErrEmailTaken):
		a.error(w, http.StatusConflict, "email_taken", i18n.T(locale, i18n.MsgEmailTaken))
	case errors.Is(err, domain.ErrUnknownAccount):
		a.error(w, http.StatusUnauthorized, "unknown_account", i18n.T(locale, i18n.MsgUnknownAccount))
	case errors.Is(err, domain.ErrInvalidCredentials):
		a.error(w, http.StatusUnauthorized, "invalid_credentials", i18n.T(locale, i18n.MsgWrongPassword))
	default:
		a.Logger.Error().Err(err).Msg("auth operation failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
