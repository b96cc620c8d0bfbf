package webhook

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vea-connect/messaging/internal/models"
	"github.com/vea-connect/messaging/internal/utils"
)

func envelope(t *testing.T, data string) Envelope {
	t.Helper()
	return Envelope{
		ID:        "evt-1",
		EventType: "Microsoft.Communication.AdvancedMessageReceived",
		Data:      json.RawMessage(data),
	}
}

func TestParseNestedMessage(t *testing.T) {
	env := envelope(t, `{
		"message": {
			"id": "wamid.abc",
			"content": {"text": "hola"},
			"from": {"phoneNumber": "+15551234567"}
		}
	}`)

	msg, err := Parse(env)
	require.NoError(t, err)
	require.Equal(t, models.SchemaNestedMessage, msg.Schema)
	require.Equal(t, "+15551234567", msg.SenderID)
	require.Equal(t, "hola", msg.Text)
	require.Equal(t, "wamid.abc", msg.ProviderMessageID)
}

func TestParseContentText(t *testing.T) {
	env := envelope(t, `{
		"id": "wamid.def",
		"from": "whatsapp:+15551234567",
		"content": {"text": {"body": "buenos días"}}
	}`)

	msg, err := Parse(env)
	require.NoError(t, err)
	require.Equal(t, models.SchemaContentText, msg.Schema)
	require.Equal(t, "+15551234567", msg.SenderID)
	require.Equal(t, "buenos días", msg.Text)
}

func TestParseLegacyBody(t *testing.T) {
	env := envelope(t, `{"messageBody": "quiero donar", "from": "+15551234567"}`)

	msg, err := Parse(env)
	require.NoError(t, err)
	require.Equal(t, models.SchemaLegacyBody, msg.Schema)
	require.Equal(t, "quiero donar", msg.Text)
	// Falls back to the envelope id when the payload carries none.
	require.Equal(t, "evt-1", msg.ProviderMessageID)
}

func TestParseButtonReply(t *testing.T) {
	env := envelope(t, `{"from": "+15551234567", "button": {"text": "Ver eventos"}}`)

	msg, err := Parse(env)
	require.NoError(t, err)
	require.Equal(t, models.SchemaButtonReply, msg.Schema)
	require.Equal(t, "Ver eventos", msg.Text)
}

func TestParseListReply(t *testing.T) {
	env := envelope(t, `{"from": "+15551234567", "interactive": {"listReply": {"title": "Donaciones"}}}`)

	msg, err := Parse(env)
	require.NoError(t, err)
	require.Equal(t, models.SchemaListReply, msg.Schema)
	require.Equal(t, "Donaciones", msg.Text)
}

func TestParseFirstMatchWins(t *testing.T) {
	// A payload satisfying both the nested and the legacy shape must
	// resolve to the higher-priority nested parser.
	env := envelope(t, `{
		"message": {
			"content": {"text": "nested"},
			"from": {"phoneNumber": "+15550000001"}
		},
		"messageBody": "legacy",
		"from": "+15550000002"
	}`)

	msg, err := Parse(env)
	require.NoError(t, err)
	require.Equal(t, models.SchemaNestedMessage, msg.Schema)
	require.Equal(t, "nested", msg.Text)
	require.Equal(t, "+15550000001", msg.SenderID)
}

func TestParseUnknownSchema(t *testing.T) {
	env := envelope(t, `{"something": "else"}`)

	_, err := Parse(env)
	require.Error(t, err)
	require.True(t, utils.IsCode(err, utils.CodeParseError))
}

func TestParseMissingSender(t *testing.T) {
	env := envelope(t, `{"messageBody": "hola", "from": "no-digits"}`)

	_, err := Parse(env)
	require.True(t, utils.IsCode(err, utils.CodeParseError))
}

func TestIsSubscriptionValidation(t *testing.T) {
	env := Envelope{
		EventType: "Microsoft.EventGrid.SubscriptionValidationEvent",
		Data:      json.RawMessage(`{"validationCode": "code-123"}`),
	}

	code, ok := IsSubscriptionValidation(env)
	require.True(t, ok)
	require.Equal(t, "code-123", code)

	_, ok = IsSubscriptionValidation(envelope(t, `{}`))
	require.False(t, ok)
}

func TestNormalizeSender(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+15551234567", "+15551234567"},
		{"whatsapp:+15551234567", "+15551234567"},
		{"tel:+1 (555) 123-4567", "+15551234567"},
		{"15551234567", "+15551234567"},
		{"abc", ""},
		{"", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, NormalizeSender(tc.in), "input %q", tc.in)
	}
}
