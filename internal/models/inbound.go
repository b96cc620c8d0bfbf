package models

import "time"

// RawSchema tags which of the provider's wire shapes an event matched.
type RawSchema string

const (
	SchemaNestedMessage RawSchema = "nested_message" // data.message.content.text
	SchemaContentText   RawSchema = "content_text"   // data.content.text.body
	SchemaLegacyBody    RawSchema = "legacy_body"    // data.messageBody
	SchemaButtonReply   RawSchema = "button_reply"   // data.button.text
	SchemaListReply     RawSchema = "list_reply"     // data.interactive.listReply.title
	SchemaValidation    RawSchema = "sub_validation" // subscription handshake, no message
)

// InboundMessage is the normalized form of a provider event.
// Immutable once constructed by the webhook parser.
type InboundMessage struct {
	SenderID          string    `json:"sender_id"` // canonical E.164-like identifier
	Text              string    `json:"text"`
	ReceivedAt        time.Time `json:"received_at"`
	ProviderMessageID string    `json:"provider_message_id"`
	Schema            RawSchema `json:"raw_schema"`
}
