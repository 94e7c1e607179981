package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com"
	anthropicDefaultModel   = "claude-sonnet-4-6"
	anthropicVersion        = "2023-06-01"
	anthropicDefaultTimeout = 60 * time.Second

	// maxTokens bounds the assistant reply length.
	maxTokens = 1500
	// contextWindow is how many trailing messages are sent upstream.
	contextWindow = 20

	emptyReplyPlaceholder = "Sin respuesta."
)

// AnthropicOptions configures the Messages API client.
type AnthropicOptions struct {
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// AnthropicResponder calls the Anthropic Messages endpoint. The API key
// travels with each request because users may store their own key instead of
// relying on a server-wide one.
type AnthropicResponder struct {
	model   string
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

type anthropicError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewAnthropicResponder creates the client, applying defaults for model,
// base URL, and HTTP client.
func NewAnthropicResponder(opts AnthropicOptions) *AnthropicResponder {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = anthropicDefaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = anthropicDefaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: anthropicDefaultTimeout}
	}
	return &AnthropicResponder{
		model:   model,
		baseURL: baseURL,
		client:  client,
		log:     opts.Logger.With().Str("provider", "anthropic").Logger(),
	}
}

// Respond sends the trailing message window upstream and returns the first
// content block's text. Any transport or status failure comes back as a
// wrapped ErrProviderFailure; the upstream detail is logged, never returned
// to callers.
func (a *AnthropicResponder) Respond(ctx context.Context, req Request) (string, error) {
	payload := anthropicRequest{
		Model:     a.model,
		MaxTokens: maxTokens,
		System:    domain.SystemPrompt(req.ModelID),
		Messages:  windowOf(req.Messages),
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("%w: encode request: %v", domain.ErrProviderFailure, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", &buf)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", domain.ErrProviderFailure, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", req.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		a.log.Error().Err(err).Msg("anthropic request failed")
		return "", fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := upstreamDetail(resp.Body)
		a.log.Error().Int("status", resp.StatusCode).Str("detail", detail).Msg("anthropic returned non-success status")
		return "", fmt.Errorf("%w: status %d", domain.ErrProviderFailure, resp.StatusCode)
	}

	var out anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		a.log.Error().Err(err).Msg("anthropic response malformed")
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrProviderFailure, err)
	}
	if len(out.Content) == 0 || out.Content[0].Text == "" {
		return emptyReplyPlaceholder, nil
	}
	return out.Content[0].Text, nil
}

// windowOf converts the trailing contextWindow messages to the wire shape.
func windowOf(msgs []domain.Message) []anthropicMessage {
	if len(msgs) > contextWindow {
		msgs = msgs[len(msgs)-contextWindow:]
	}
	out := make([]anthropicMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, anthropicMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

// upstreamDetail extracts the upstream error message for diagnostics.
func upstreamDetail(body io.Reader) string {
	var e anthropicError
	if err := json.NewDecoder(io.LimitReader(body, 4096)).Decode(&e); err != nil {
		return ""
	}
	return e.Error.Message
}
