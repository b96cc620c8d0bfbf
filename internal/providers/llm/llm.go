package llm

import (
	"context"
	"errors"
)

// Message is one entry in a chat-completion message list.
type Message struct {
	Role    string `json:"role"` // system|user|assistant
	Content string `json:"content"`
}

// ErrContentFiltered signals a provider-side policy rejection of the
// request or would-be output. Callers treat it as an expected terminal
// outcome, not an operational failure.
var ErrContentFiltered = errors.New("completion rejected by content filter")

type Provider interface {
	// Complete generates a reply for the message list. Returns
	// ErrContentFiltered when the provider's content filter rejects
	// the request; any other error is an operational provider failure.
	Complete(ctx context.Context, messages []Message, maxTokens int, temperature float64) (string, error)
}
