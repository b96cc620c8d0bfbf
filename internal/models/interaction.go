package models

import "time"

// InteractionLog is the append-only record of one inbound/outbound
// exchange. Written exactly once per inbound event, after dispatch
// completes or fails; never mutated afterwards.
type InteractionLog struct {
	ID               string               `bson:"_id,omitempty" json:"id"`
	SenderID         string               `bson:"sender_id" json:"sender_id"`
	MessageText      string               `bson:"message_text" json:"message_text"`
	IntentDetected   Intent               `bson:"intent_detected" json:"intent_detected"`
	TemplateUsed     string               `bson:"template_used,omitempty" json:"template_used,omitempty"`
	ResponseText     string               `bson:"response_text" json:"response_text"`
	FallbackUsed     bool                 `bson:"fallback_used" json:"fallback_used"`
	Success          bool                 `bson:"success" json:"success"`
	ErrorMessage     string               `bson:"error_message,omitempty" json:"error_message,omitempty"`
	ProcessingTimeMS int64                `bson:"processing_time_ms" json:"processing_time_ms"`
	ContextSnapshot  *ConversationContext `bson:"context_snapshot,omitempty" json:"context_snapshot,omitempty"`
	Timestamp        time.Time            `bson:"timestamp" json:"timestamp"`
}
