package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL, APIKey: "test-key"})
	require.NoError(t, err)
	return c
}

func TestCompleteSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"finish_reason":"stop","message":{"role":"assistant","content":"hola!"}}]}`))
	})

	got, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hola"}}, 100, 0.7)
	require.NoError(t, err)
	require.Equal(t, "hola!", got)
}

func TestCompleteContentFilterFinishReason(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"finish_reason":"content_filter","message":{"role":"assistant","content":""}}]}`))
	})

	_, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "x"}}, 100, 0.7)
	require.ErrorIs(t, err, ErrContentFiltered)
}

func TestCompleteContentFilterErrorCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"content_filter","message":"The response was filtered"}}`))
	})

	_, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "x"}}, 100, 0.7)
	require.ErrorIs(t, err, ErrContentFiltered)
}

func TestCompleteProviderError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":"rate_limit_exceeded","message":"slow down"}}`))
	})

	_, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "x"}}, 100, 0.7)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrContentFiltered)
}

func TestCompleteEmptyMessages(t *testing.T) {
	c, err := NewOpenAIClient(OpenAIConfig{APIKey: "k"})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), nil, 100, 0.7)
	require.Error(t, err)
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{})
	require.Error(t, err)
}
