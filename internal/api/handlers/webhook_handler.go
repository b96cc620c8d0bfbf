package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/vea-connect/messaging/internal/models"
	"github.com/vea-connect/messaging/internal/services"
	"github.com/vea-connect/messaging/internal/utils"
	"github.com/vea-connect/messaging/internal/webhook"
)

type WebhookHandler struct {
	orchestrator services.OrchestratorService
	log          *logrus.Logger
}

func NewWebhookHandler(orchestrator services.OrchestratorService, log *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{orchestrator: orchestrator, log: log}
}

// Receive accepts the provider's event subscription callbacks: a
// single envelope or an array of them. Subscription validation events
// are answered with the echoed code and no further processing.
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "WebhookHandler.Receive", "unreadable body", err))
		return
	}

	envelopes, err := decodeEnvelopes(body)
	if err != nil {
		writeError(c, utils.E(utils.CodeParseError, "WebhookHandler.Receive", "malformed event payload", err))
		return
	}

	outcomes := make([]models.OutcomeRecord, 0, len(envelopes))
	for _, env := range envelopes {
		if code, ok := webhook.IsSubscriptionValidation(env); ok {
			c.JSON(http.StatusOK, webhook.ValidationResponse{ValidationResponse: code})
			return
		}

		outcome, err := h.orchestrator.Handle(c.Request.Context(), env)
		if err != nil {
			// The outcome already captures the failure; the provider
			// gets a 200 so it does not redeliver unparseable events
			// forever. Dispatch failures are redelivered via non-2xx.
			if !utils.IsCode(err, utils.CodeParseError) {
				outcomes = append(outcomes, outcome)
				writeError(c, err)
				return
			}
		}
		outcomes = append(outcomes, outcome)
	}

	c.JSON(http.StatusOK, gin.H{"outcomes": outcomes})
}

func decodeEnvelopes(body []byte) ([]webhook.Envelope, error) {
	var many []webhook.Envelope
	if err := json.Unmarshal(body, &many); err == nil {
		return many, nil
	}
	var one webhook.Envelope
	if err := json.Unmarshal(body, &one); err != nil {
		return nil, err
	}
	return []webhook.Envelope{one}, nil
}
