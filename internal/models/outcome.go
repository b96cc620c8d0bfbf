package models

// DeliveryResult is what the messaging provider acknowledged for one
// outbound send.
type DeliveryResult struct {
	ProviderMessageID string `json:"provider_message_id"`
	Status            string `json:"status"`
}

// OutcomeRecord summarizes how one inbound event was handled. It is the
// orchestrator's return value and the payload cached for idempotent
// retries on the same provider message id.
type OutcomeRecord struct {
	SenderID          string         `json:"sender_id"`
	ProviderMessageID string         `json:"provider_message_id"`
	Intent            Intent         `json:"intent"`
	ReplyText         string         `json:"reply_text"`
	TemplateUsed      string         `json:"template_used,omitempty"`
	FallbackUsed      bool           `json:"fallback_used"`
	Success           bool           `json:"success"`
	ErrorMessage      string         `json:"error_message,omitempty"`
	Delivery          DeliveryResult `json:"delivery"`
	ProcessingTimeMS  int64          `json:"processing_time_ms"`
	Duplicate         bool           `json:"duplicate"` // true when served from the dedup window
}
