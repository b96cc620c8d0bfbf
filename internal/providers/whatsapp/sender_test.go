package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key", ChannelID: "chan-1"})
	require.NoError(t, err)
	return c
}

func TestSendSuccess(t *testing.T) {
	var gotBody sendRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages/notifications:send", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"receipts":[{"messageId":"out-123","to":"+15551234567"}]}`))
	})

	res, err := c.Send(context.Background(), "+15551234567", "hola")
	require.NoError(t, err)
	require.Equal(t, "out-123", res.ProviderMessageID)
	require.Equal(t, "sent", res.Status)
	require.Equal(t, []string{"+15551234567"}, gotBody.To)
	require.Equal(t, "hola", gotBody.Content)
	require.Equal(t, "chan-1", gotBody.ChannelID)
}

func TestSendProviderError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Send(context.Background(), "+15551234567", "hola")
	require.Error(t, err)
}

func TestSendEmptyReceipts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"receipts":[]}`))
	})

	_, err := c.Send(context.Background(), "+15551234567", "hola")
	require.Error(t, err)
}

func TestSendValidation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.Send(context.Background(), "", "hola")
	require.Error(t, err)

	_, err = c.Send(context.Background(), "+15551234567", "")
	require.Error(t, err)
}
