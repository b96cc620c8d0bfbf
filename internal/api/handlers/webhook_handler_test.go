package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/vea-connect/messaging/internal/models"
	"github.com/vea-connect/messaging/internal/webhook"
)

type mockOrchestrator struct {
	outcome models.OutcomeRecord
	err     error
	handled []webhook.Envelope
}

func (m *mockOrchestrator) Handle(_ context.Context, env webhook.Envelope) (models.OutcomeRecord, error) {
	m.handled = append(m.handled, env)
	return m.outcome, m.err
}

func newWebhookRouter(orc *mockOrchestrator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	l := logrus.New()
	l.SetOutput(io.Discard)

	r := gin.New()
	r.POST("/webhook", NewWebhookHandler(orc, l).Receive)
	return r
}

func TestReceiveSubscriptionValidation(t *testing.T) {
	orc := &mockOrchestrator{}
	r := newWebhookRouter(orc)

	body := `[{"eventType":"Microsoft.EventGrid.SubscriptionValidationEvent","data":{"validationCode":"abc-123"}}]`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp webhook.ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "abc-123", resp.ValidationResponse)
	require.Empty(t, orc.handled, "validation events skip the pipeline")
}

func TestReceiveSingleEvent(t *testing.T) {
	orc := &mockOrchestrator{outcome: models.OutcomeRecord{Success: true, ReplyText: "hola"}}
	r := newWebhookRouter(orc)

	body := `{"id":"e1","eventType":"Microsoft.Communication.AdvancedMessageReceived","data":{"messageBody":"hola","from":"+15551234567"}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, orc.handled, 1)
	require.Equal(t, "e1", orc.handled[0].ID)
}

func TestReceiveMalformedBody(t *testing.T) {
	orc := &mockOrchestrator{}
	r := newWebhookRouter(orc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("not json"))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, orc.handled)
}
