// Package chat holds the outbound chat-completion providers: the real
// Anthropic Messages client and the canned demo responder used when no API
// key is available.
package chat

import (
	"context"

	"server/internal/domain"
)

// Request is one completion exchange. Messages carries the full in-memory
// transcript including the just-appended user message; providers send only
// the trailing window upstream.
type Request struct {
	APIKey  string
	ModelID string
	// Messages holds the conversation so far, user message last.
	Messages []domain.Message
}

// Responder produces the assistant reply for a request.
type Responder interface {
	Respond(ctx context.Context, req Request) (string, error)
}

// Dispatcher routes between the real provider and the demo responder based
// on whether an API key accompanies the request. Upstream failures from the
// real provider surface as errors; the demo path is never a fallback for
// them.
type Dispatcher struct {
	Real Responder
	Demo Responder
}

func (d *Dispatcher) Respond(ctx context.Context, req Request) (string, error) {
	if req.APIKey != "" && d.Real != nil {
		return d.Real.Respond(ctx, req)
	}
	return d.Demo.Respond(ctx, req)
}
