package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"server/internal/auth"
	"server/internal/chats"
	"server/internal/domain"
	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/infra/credentials"
	"server/internal/kvstore"
	"server/internal/ledger"
	"server/internal/providers/chat"
)

type env struct {
	store     *kvstore.MemStore
	ledger    *ledger.Ledger
	users     *auth.Service
	chats     *chats.Store
	handler   http.Handler
	responder *recordingResponder
}

type recordingResponder struct {
	calls int
	reply string
	err   error
}

func (r *recordingResponder) Respond(ctx context.Context, req chat.Request) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return r.reply, nil
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := zerolog.Nop()
	store := kvstore.NewMemStore()
	led := ledger.New(store, log)
	users := auth.NewService(store, led, log)
	sessions := chats.NewStore(store, log)
	responder := &recordingResponder{reply: "claro, aquí tienes"}

	app := &handlers.App{
		Store:     store,
		Users:     users,
		Ledger:    led,
		Chats:     sessions,
		Responder: responder,
		Keys:      credentials.NewStore(store),
		Logger:    log,
	}
	return &env{
		store:     store,
		ledger:    led,
		users:     users,
		chats:     sessions,
		handler:   httpapi.NewRouter(app, httpapi.Options{}),
		responder: responder,
	}
}

func (e *env) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func (e *env) register(t *testing.T, name, email, password string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/register", map[string]string{
		"name": name, "email": email, "password": password, "confirm": password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterGrantsInitialCredits(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/auth/register", map[string]string{
		"name": "Ana", "email": "a@b.com", "password": "secret1", "confirm": "secret1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if got := body["balance"].(float64); got != 100 {
		t.Fatalf("balance = %v, want 100", got)
	}

	rec = e.do(t, http.MethodGet, "/me", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("/me status = %d", rec.Code)
	}
	body = decodeBody(t, rec)
	user := body["user"].(map[string]any)
	if user["email"] != "a@b.com" || user["name"] != "Ana" {
		t.Fatalf("unexpected user payload: %v", user)
	}
}

func TestLoginWrongPasswordLeavesStateUntouched(t *testing.T) {
	e := newEnv(t)
	e.register(t, "Ana", "a@b.com", "secret1")
	e.do(t, http.MethodPost, "/auth/logout", nil)

	rec := e.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "a@b.com", "password": "secret2",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := e.ledger.Balance("a@b.com"); got != 100 {
		t.Fatalf("balance = %d, want 100", got)
	}
	if rec := e.do(t, http.MethodGet, "/me", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("/me after failed login = %d, want 401", rec.Code)
	}
}

func TestDuplicateEmailConflicts(t *testing.T) {
	e := newEnv(t)
	e.register(t, "Ana", "a@b.com", "secret1")

	rec := e.do(t, http.MethodPost, "/auth/register", map[string]string{
		"name": "Otra", "email": "a@b.com", "password": "secret9", "confirm": "secret9",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestValidationErrorNamesField(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodPost, "/auth/register", map[string]string{
		"name": "Ana", "email": "not-an-email", "password": "secret1", "confirm": "secret1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	errObj := body["error"].(map[string]any)
	if errObj["field"] != "email" {
		t.Fatalf("field = %v, want email", errObj["field"])
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	e := newEnv(t)
	for _, path := range []string{"/me", "/credits/", "/chats/"} {
		if rec := e.do(t, http.MethodGet, path, nil); rec.Code != http.StatusUnauthorized {
			t.Fatalf("GET %s = %d, want 401", path, rec.Code)
		}
	}
}

func TestSendMessageRejectedBeforeProviderCall(t *testing.T) {
	e := newEnv(t)
	e.register(t, "Ana", "a@b.com", "secret1")
	// Leave exactly 2 credits, one short of the roblox-ai cost.
	if !e.ledger.Spend("a@b.com", 98) {
		t.Fatal("setup spend failed")
	}

	rec := e.do(t, http.MethodPost, "/chats/", nil)
	sid := decodeBody(t, rec)["session_id"].(string)

	rec = e.do(t, http.MethodPost, "/chats/"+sid+"/messages", map[string]string{
		"model": domain.ModelRobloxAI, "text": "hola",
	})
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402", rec.Code)
	}
	if e.responder.calls != 0 {
		t.Fatalf("provider called %d times, want 0", e.responder.calls)
	}
	if got := e.ledger.Balance("a@b.com"); got != 2 {
		t.Fatalf("balance = %d, want 2", got)
	}
	if sessions := e.chats.List(domain.ModelRobloxAI); len(sessions) != 0 {
		t.Fatalf("persisted %d sessions, want 0", len(sessions))
	}
}

func TestSendMessageSuccessfulExchange(t *testing.T) {
	e := newEnv(t)
	e.register(t, "Ana", "a@b.com", "secret1")
	if !e.ledger.Spend("a@b.com", 95) {
		t.Fatal("setup spend failed")
	}

	rec := e.do(t, http.MethodPost, "/chats/", nil)
	sid := decodeBody(t, rec)["session_id"].(string)

	rec = e.do(t, http.MethodPost, "/chats/"+sid+"/messages", map[string]string{
		"model": domain.ModelGeneralAI, "text": "hola, ¿qué tal?",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["reply"] != "claro, aquí tienes" {
		t.Fatalf("reply = %v", body["reply"])
	}
	if got := body["balance"].(float64); got != 3 {
		t.Fatalf("balance = %v, want 3", got)
	}
	if got := body["cost"].(float64); got != 2 {
		t.Fatalf("cost = %v, want 2", got)
	}
	if body["title"] != "hola, ¿qué tal?" {
		t.Fatalf("title = %v", body["title"])
	}

	session, ok := e.chats.Load(sid)
	if !ok {
		t.Fatal("session not persisted")
	}
	if len(session.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(session.Messages))
	}
	if session.Messages[0].Role != domain.RoleUser || session.Messages[1].Role != domain.RoleAssistant {
		t.Fatalf("unexpected roles: %v", session.Messages)
	}
}

func TestSendMessageProviderFailureSpendsNothing(t *testing.T) {
	e := newEnv(t)
	e.register(t, "Ana", "a@b.com", "secret1")
	e.responder.err = fmt.Errorf("upstream 500: %w", domain.ErrProviderFailure)

	rec := e.do(t, http.MethodPost, "/chats/", nil)
	sid := decodeBody(t, rec)["session_id"].(string)

	rec = e.do(t, http.MethodPost, "/chats/"+sid+"/messages", map[string]string{
		"model": domain.ModelGeneralAI, "text": "hola",
	})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if got := e.ledger.Balance("a@b.com"); got != 100 {
		t.Fatalf("balance = %d, want 100", got)
	}
	if session, _ := e.chats.Load(sid); len(session.Messages) != 0 {
		t.Fatalf("persisted %d messages, want 0", len(session.Messages))
	}
	if !errors.Is(e.responder.err, domain.ErrProviderFailure) {
		t.Fatal("sanity: stub error should wrap the provider sentinel")
	}
}

func TestListChatsFiltersByModel(t *testing.T) {
	e := newEnv(t)
	e.register(t, "Ana", "a@b.com", "secret1")

	send := func(model, text string) {
		rec := e.do(t, http.MethodPost, "/chats/", nil)
		sid := decodeBody(t, rec)["session_id"].(string)
		rec = e.do(t, http.MethodPost, "/chats/"+sid+"/messages", map[string]string{
			"model": model, "text": text,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("send status = %d", rec.Code)
		}
	}
	send(domain.ModelRobloxAI, "script de datastore")
	send(domain.ModelCodeAI, "explícame goroutines")

	rec := e.do(t, http.MethodGet, "/chats/?model="+domain.ModelCodeAI, nil)
	body := decodeBody(t, rec)
	sessions := body["sessions"].([]any)
	if len(sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions))
	}
	first := sessions[0].(map[string]any)
	if first["model"] != domain.ModelCodeAI {
		t.Fatalf("model = %v", first["model"])
	}
}

func TestTopup(t *testing.T) {
	e := newEnv(t)
	e.register(t, "Ana", "a@b.com", "secret1")

	rec := e.do(t, http.MethodPost, "/credits/topup", map[string]string{"package_id": "nope"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown package status = %d, want 400", rec.Code)
	}

	rec = e.do(t, http.MethodPost, "/credits/topup", map[string]string{"package_id": "p2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if got := body["balance"].(float64); got != 600 {
		t.Fatalf("balance = %v, want 600", got)
	}
}

func TestPackagesArePublic(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/credits/packages", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if got := len(body["packages"].([]any)); got != 3 {
		t.Fatalf("packages = %d, want 3", got)
	}
}

func TestAPIKeySettings(t *testing.T) {
	e := newEnv(t)
	e.register(t, "Ana", "a@b.com", "secret1")

	rec := e.do(t, http.MethodPut, "/settings/api-key", map[string]string{"api_key": "bogus"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid key status = %d, want 400", rec.Code)
	}

	rec = e.do(t, http.MethodPut, "/settings/api-key", map[string]string{"api_key": "sk-ant-abc123xyz"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodGet, "/settings/api-key", nil)
	body := decodeBody(t, rec)
	if body["configured"] != true {
		t.Fatalf("configured = %v", body["configured"])
	}
	masked := body["api_key"].(string)
	if masked == "sk-ant-abc123xyz" {
		t.Fatal("key returned unmasked")
	}
}

func TestGoogleSignInFlow(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/auth/google/accounts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("accounts status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	accounts := body["accounts"].([]any)
	if len(accounts) != 2 {
		t.Fatalf("accounts = %d, want 2", len(accounts))
	}

	rec = e.do(t, http.MethodPost, "/auth/google", map[string]string{
		"name": "Usuario Demo", "email": "demo@gmail.com",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("sign-in status = %d, body %s", rec.Code, rec.Body.String())
	}
	body = decodeBody(t, rec)
	if got := body["balance"].(float64); got != 100 {
		t.Fatalf("balance = %v, want 100", got)
	}
}
