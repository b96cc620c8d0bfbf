package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vea-connect/messaging/internal/cache"
)

type failingCache struct{}

func (failingCache) GetJSON(context.Context, string, any) (bool, error) {
	return false, errors.New("redis unreachable")
}
func (failingCache) SetJSON(context.Context, string, any, time.Duration) error {
	return errors.New("redis unreachable")
}
func (failingCache) Del(context.Context, ...string) error {
	return errors.New("redis unreachable")
}

func TestConversationStoreRoundTrip(t *testing.T) {
	store := NewConversationStore(cache.NewMemoryCache(), time.Hour)
	ctx := context.Background()

	conv, degraded := store.Get(ctx, "+15551234567")
	require.False(t, degraded)
	require.Empty(t, conv.Turns)

	conv.AppendTurn("user", "hola", DefaultMaxTurns)
	conv.AppendTurn("assistant", "¡hola!", DefaultMaxTurns)
	conv.Slots["name"] = "Ana"
	require.NoError(t, store.Put(ctx, conv))

	got, degraded := store.Get(ctx, "+15551234567")
	require.False(t, degraded)
	require.Len(t, got.Turns, 2)
	require.Equal(t, "Ana", got.Slots["name"])
}

func TestConversationStoreCreatesEmptyWhenAbsent(t *testing.T) {
	store := NewConversationStore(cache.NewMemoryCache(), time.Hour)

	conv, degraded := store.Get(context.Background(), "+15559999999")
	require.False(t, degraded)
	require.Equal(t, "+15559999999", conv.SenderID)
	require.NotNil(t, conv.Slots)
}

func TestConversationStoreDegradesOnFailure(t *testing.T) {
	store := NewConversationStore(failingCache{}, time.Hour)

	conv, degraded := store.Get(context.Background(), "+15551234567")
	require.True(t, degraded)
	require.NotNil(t, conv)
	require.Empty(t, conv.Turns)

	// Writes fail too, but only as a reported error.
	require.Error(t, store.Put(context.Background(), conv))
}

func TestConversationStoreTTLExpiry(t *testing.T) {
	store := NewConversationStore(cache.NewMemoryCache(), 10*time.Millisecond)
	ctx := context.Background()

	conv, _ := store.Get(ctx, "+15551234567")
	conv.AppendTurn("user", "hola", DefaultMaxTurns)
	require.NoError(t, store.Put(ctx, conv))

	time.Sleep(25 * time.Millisecond)

	// Expired state is treated as absent on next access.
	got, degraded := store.Get(ctx, "+15551234567")
	require.False(t, degraded)
	require.Empty(t, got.Turns)
}

func TestConversationStoreTurnBound(t *testing.T) {
	store := NewConversationStore(cache.NewMemoryCache(), time.Hour)
	ctx := context.Background()

	conv, _ := store.Get(ctx, "+15551234567")
	for i := 0; i < 30; i++ {
		conv.AppendTurn("user", "mensaje", DefaultMaxTurns)
	}
	require.Len(t, conv.Turns, DefaultMaxTurns)
	require.NoError(t, store.Put(ctx, conv))
}
