package models

import "time"

// Turn is one exchange half inside a conversation.
type Turn struct {
	Role string `json:"role"` // "user" | "assistant"
	Text string `json:"text"`
}

// ConversationContext is the per-sender dialogue state kept between
// messages. It lives in the cache under the sender id and disappears
// via TTL; expiry is its only destructor.
type ConversationContext struct {
	SenderID   string            `json:"sender_id"`
	Turns      []Turn            `json:"turns"`
	LastIntent Intent            `json:"last_intent"`
	Slots      map[string]string `json:"slots"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// NewConversationContext returns an empty context for a sender.
func NewConversationContext(senderID string) *ConversationContext {
	return &ConversationContext{
		SenderID:   senderID,
		Turns:      nil,
		LastIntent: IntentUnknown,
		Slots:      map[string]string{},
		UpdatedAt:  time.Now().UTC(),
	}
}

// AppendTurn records a new turn, trimming the history to maxTurns.
func (c *ConversationContext) AppendTurn(role, text string, maxTurns int) {
	c.Turns = append(c.Turns, Turn{Role: role, Text: text})
	if maxTurns > 0 && len(c.Turns) > maxTurns {
		c.Turns = c.Turns[len(c.Turns)-maxTurns:]
	}
	c.UpdatedAt = time.Now().UTC()
}

// TrailingTurns returns up to n of the most recent turns.
func (c *ConversationContext) TrailingTurns(n int) []Turn {
	if n <= 0 || len(c.Turns) <= n {
		return c.Turns
	}
	return c.Turns[len(c.Turns)-n:]
}
