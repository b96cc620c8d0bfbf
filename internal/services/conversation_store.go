package services

import (
	"context"
	"time"

	"github.com/vea-connect/messaging/internal/cache"
	"github.com/vea-connect/messaging/internal/models"
)

const (
	conversationKeyPrefix  = "conversation:"
	DefaultConversationTTL = 45 * time.Minute
	DefaultMaxTurns        = 10
)

// ConversationStore keeps per-sender dialogue state with TTL expiry.
// Store unavailability degrades to an empty, non-persistent context:
// the pipeline keeps working, just without multi-turn memory.
type ConversationStore interface {
	// Get returns the sender's context, a fresh empty one if absent or
	// expired, and degraded=true when the backing store was unreachable.
	Get(ctx context.Context, senderID string) (conv *models.ConversationContext, degraded bool)
	// Put persists the context, refreshing its TTL. Errors are
	// reported but never fatal to the caller.
	Put(ctx context.Context, conv *models.ConversationContext) error
}

type conversationStore struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewConversationStore(c cache.Cache, ttl time.Duration) ConversationStore {
	if ttl <= 0 {
		ttl = DefaultConversationTTL
	}
	return &conversationStore{cache: c, ttl: ttl}
}

func (s *conversationStore) Get(ctx context.Context, senderID string) (*models.ConversationContext, bool) {
	var conv models.ConversationContext
	hit, err := s.cache.GetJSON(ctx, conversationKeyPrefix+senderID, &conv)
	if err != nil {
		return models.NewConversationContext(senderID), true
	}
	if !hit {
		return models.NewConversationContext(senderID), false
	}
	if conv.Slots == nil {
		conv.Slots = map[string]string{}
	}
	return &conv, false
}

func (s *conversationStore) Put(ctx context.Context, conv *models.ConversationContext) error {
	conv.UpdatedAt = time.Now().UTC()
	return s.cache.SetJSON(ctx, conversationKeyPrefix+conv.SenderID, conv, s.ttl)
}
