package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/vea-connect/messaging/internal/cache"
)

const (
	embeddingKeyPrefix = "emb:"
	// Vectors are immutable for a given model and text, so the TTL is
	// generous; it only bounds cache growth.
	DefaultEmbeddingTTL = 30 * 24 * time.Hour
)

// CachedProvider fronts a Provider with a TTL cache keyed by a stable
// hash of the normalized text. Concurrent misses for the same text may
// both hit the remote provider; the last write wins and both callers
// get identical vectors, so no single-flight is needed.
type CachedProvider struct {
	inner Provider
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedProvider(inner Provider, c cache.Cache, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultEmbeddingTTL
	}
	return &CachedProvider{inner: inner, cache: c, ttl: ttl}
}

func (p *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	key := CacheKey(text)

	var cached []float32
	if hit, err := p.cache.GetJSON(ctx, key, &cached); err == nil && hit && len(cached) > 0 {
		return cached, nil
	}

	vec, err := p.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	// Cache write failures are not worth failing the request over.
	_ = p.cache.SetJSON(ctx, key, vec, p.ttl)
	return vec, nil
}

// CacheKey returns the cache key for a text: sha-256 of the trimmed,
// lowercased input.
func CacheKey(text string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(text))))
	return embeddingKeyPrefix + hex.EncodeToString(sum[:])
}
