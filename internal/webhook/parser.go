package webhook

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/vea-connect/messaging/internal/models"
	"github.com/vea-connect/messaging/internal/utils"
)

// Envelope is the outer event shape delivered by the provider's event
// subscription. Payloads arrive either as a single envelope or as an
// array of them.
type Envelope struct {
	ID        string          `json:"id"`
	EventType string          `json:"eventType"`
	Data      json.RawMessage `json:"data"`
	EventTime time.Time       `json:"eventTime"`
}

// ValidationResponse echoes the handshake code for subscription
// validation events.
type ValidationResponse struct {
	ValidationResponse string `json:"validationResponse"`
}

const subscriptionValidationEventType = "Microsoft.EventGrid.SubscriptionValidationEvent"

// IsSubscriptionValidation reports whether the envelope is the
// subscription handshake, returning the code to echo back.
func IsSubscriptionValidation(env Envelope) (string, bool) {
	if env.EventType != subscriptionValidationEventType {
		return "", false
	}
	var data struct {
		ValidationCode string `json:"validationCode"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", false
	}
	return data.ValidationCode, true
}

// schemaParser attempts one known wire shape. Returns ok=false when the
// payload does not structurally match; parsers never guess.
type schemaParser func(data []byte) (models.InboundMessage, bool)

// parsers is evaluated in priority order; the first structural match
// wins. Adding a shape means appending a parser, nothing else changes.
var parsers = []schemaParser{
	parseNestedMessage,
	parseContentText,
	parseLegacyBody,
	parseButtonReply,
	parseListReply,
}

// Parse maps the envelope's data payload onto the first matching known
// schema. A payload matching no schema is a terminal parse error.
func Parse(env Envelope) (models.InboundMessage, error) {
	const op = "webhook.Parse"

	for _, p := range parsers {
		msg, ok := p(env.Data)
		if !ok {
			continue
		}
		msg.SenderID = NormalizeSender(msg.SenderID)
		if msg.SenderID == "" {
			continue
		}
		if msg.ProviderMessageID == "" {
			msg.ProviderMessageID = env.ID
		}
		if msg.ReceivedAt.IsZero() {
			if !env.EventTime.IsZero() {
				msg.ReceivedAt = env.EventTime.UTC()
			} else {
				msg.ReceivedAt = time.Now().UTC()
			}
		}
		return msg, nil
	}
	return models.InboundMessage{}, utils.E(utils.CodeParseError, op, "payload matched no known schema", nil)
}

func parseNestedMessage(data []byte) (models.InboundMessage, bool) {
	var payload struct {
		Message struct {
			ID      string `json:"id"`
			Content struct {
				Text string `json:"text"`
			} `json:"content"`
			From struct {
				PhoneNumber string `json:"phoneNumber"`
			} `json:"from"`
		} `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return models.InboundMessage{}, false
	}
	if payload.Message.Content.Text == "" || payload.Message.From.PhoneNumber == "" {
		return models.InboundMessage{}, false
	}
	return models.InboundMessage{
		SenderID:          payload.Message.From.PhoneNumber,
		Text:              payload.Message.Content.Text,
		ProviderMessageID: payload.Message.ID,
		Schema:            models.SchemaNestedMessage,
	}, true
}

func parseContentText(data []byte) (models.InboundMessage, bool) {
	var payload struct {
		ID      string `json:"id"`
		From    string `json:"from"`
		Content struct {
			Text struct {
				Body string `json:"body"`
			} `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return models.InboundMessage{}, false
	}
	if payload.Content.Text.Body == "" || payload.From == "" {
		return models.InboundMessage{}, false
	}
	return models.InboundMessage{
		SenderID:          payload.From,
		Text:              payload.Content.Text.Body,
		ProviderMessageID: payload.ID,
		Schema:            models.SchemaContentText,
	}, true
}

func parseLegacyBody(data []byte) (models.InboundMessage, bool) {
	var payload struct {
		ID          string `json:"id"`
		From        string `json:"from"`
		MessageBody string `json:"messageBody"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return models.InboundMessage{}, false
	}
	if payload.MessageBody == "" || payload.From == "" {
		return models.InboundMessage{}, false
	}
	return models.InboundMessage{
		SenderID:          payload.From,
		Text:              payload.MessageBody,
		ProviderMessageID: payload.ID,
		Schema:            models.SchemaLegacyBody,
	}, true
}

func parseButtonReply(data []byte) (models.InboundMessage, bool) {
	var payload struct {
		ID     string `json:"id"`
		From   string `json:"from"`
		Button struct {
			Text string `json:"text"`
		} `json:"button"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return models.InboundMessage{}, false
	}
	if payload.Button.Text == "" || payload.From == "" {
		return models.InboundMessage{}, false
	}
	return models.InboundMessage{
		SenderID:          payload.From,
		Text:              payload.Button.Text,
		ProviderMessageID: payload.ID,
		Schema:            models.SchemaButtonReply,
	}, true
}

func parseListReply(data []byte) (models.InboundMessage, bool) {
	var payload struct {
		ID          string `json:"id"`
		From        string `json:"from"`
		Interactive struct {
			ListReply struct {
				Title string `json:"title"`
			} `json:"listReply"`
		} `json:"interactive"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return models.InboundMessage{}, false
	}
	if payload.Interactive.ListReply.Title == "" || payload.From == "" {
		return models.InboundMessage{}, false
	}
	return models.InboundMessage{
		SenderID:          payload.From,
		Text:              payload.Interactive.ListReply.Title,
		ProviderMessageID: payload.ID,
		Schema:            models.SchemaListReply,
	}, true
}

// NormalizeSender canonicalizes a sender identifier: provider prefixes
// stripped, at most one leading "+", digits only otherwise.
func NormalizeSender(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "whatsapp:")
	s = strings.TrimPrefix(s, "tel:")

	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	return "+" + digits
}
