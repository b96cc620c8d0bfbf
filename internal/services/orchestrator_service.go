package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vea-connect/messaging/internal/cache"
	"github.com/vea-connect/messaging/internal/models"
	"github.com/vea-connect/messaging/internal/providers/whatsapp"
	"github.com/vea-connect/messaging/internal/utils"
	"github.com/vea-connect/messaging/internal/webhook"
)

const (
	dedupKeyPrefix     = "dedup:"
	DefaultDedupWindow = 5 * time.Minute
)

// OrchestratorService handles one inbound provider event end to end:
// parse, dedupe, classify, resolve a reply (template first, RAG on
// miss), update conversation state, dispatch, and audit. Exactly one
// reply per parseable event; exactly one interaction log per event.
type OrchestratorService interface {
	Handle(ctx context.Context, env webhook.Envelope) (models.OutcomeRecord, error)
}

type OrchestratorConfig struct {
	Language        string        // template language, default "es"
	DedupWindow     time.Duration // idempotency window on provider_message_id
	MaxTurns        int           // context history bound
	GroundingTurns  int           // trailing turns handed to RAG
	StoreTimeout    time.Duration
	DispatchTimeout time.Duration
}

type orchestratorService struct {
	store        ConversationStore
	intents      IntentService
	templates    TemplateService
	rag          RagService
	dispatcher   whatsapp.Dispatcher
	interactions InteractionService
	dedup        cache.Cache
	cfg          OrchestratorConfig
	log          *logrus.Logger
}

func NewOrchestratorService(
	store ConversationStore,
	intents IntentService,
	templates TemplateService,
	rag RagService,
	dispatcher whatsapp.Dispatcher,
	interactions InteractionService,
	dedup cache.Cache,
	cfg OrchestratorConfig,
	log *logrus.Logger,
) OrchestratorService {
	if cfg.Language == "" {
		cfg.Language = "es"
	}
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = DefaultDedupWindow
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = DefaultMaxTurns
	}
	if cfg.GroundingTurns <= 0 {
		cfg.GroundingTurns = 6
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 10 * time.Second
	}
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = 10 * time.Second
	}
	return &orchestratorService{
		store:        store,
		intents:      intents,
		templates:    templates,
		rag:          rag,
		dispatcher:   dispatcher,
		interactions: interactions,
		dedup:        dedup,
		cfg:          cfg,
		log:          log,
	}
}

func (s *orchestratorService) Handle(ctx context.Context, env webhook.Envelope) (models.OutcomeRecord, error) {
	const op = "OrchestratorService.Handle"
	start := time.Now()

	// 1-2. Parse against the known schemas; the parser also
	// normalizes the sender identifier.
	msg, err := webhook.Parse(env)
	if err != nil {
		// Terminal: nothing to reply to, but the event is still audited.
		outcome := models.OutcomeRecord{
			Success:          false,
			ErrorMessage:     err.Error(),
			ProcessingTimeMS: time.Since(start).Milliseconds(),
		}
		s.interactions.Record(ctx, &models.InteractionLog{
			IntentDetected: models.IntentUnknown,
			Success:        false,
			ErrorMessage:   err.Error(),
			Timestamp:      time.Now().UTC(),
		})
		return outcome, err
	}

	logEntry := s.log.WithFields(logrus.Fields{
		"sender_id":           msg.SenderID,
		"provider_message_id": msg.ProviderMessageID,
		"schema":              msg.Schema,
	})

	// 3. Idempotent retry handling for at-least-once delivery.
	if prev, ok := s.previousOutcome(ctx, msg.ProviderMessageID); ok {
		logEntry.Info("duplicate provider message id, returning recorded outcome")
		prev.Duplicate = true
		return prev, nil
	}

	// 4. Load or create conversation state.
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	conv, degraded := s.store.Get(storeCtx, msg.SenderID)
	cancel()
	var notes []string
	if degraded {
		logEntry.Warn("conversation store unavailable, processing statelessly")
		notes = append(notes, "conversation store unavailable")
	}

	// 5. Classify before appending the new turn so stickiness sees
	// only prior state.
	intent := s.intents.Classify(msg.Text, conv)

	// 6-7. Template fast path, RAG on miss or render failure.
	replyText, templateUsed, fallbackUsed, ragErr := s.resolveReply(ctx, intent, msg.Text, conv)
	if ragErr != nil {
		notes = append(notes, ragErr.Error())
	}

	// 8. Record the exchange and refresh the TTL. A write failure
	// costs memory of this turn, nothing else.
	conv.AppendTurn("user", msg.Text, s.cfg.MaxTurns)
	conv.AppendTurn("assistant", replyText, s.cfg.MaxTurns)
	conv.LastIntent = intent
	putCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	if err := s.store.Put(putCtx, conv); err != nil {
		logEntry.WithError(err).Warn("conversation context write failed")
	}
	cancel()

	// 9. Deliver. Errors are reported, never retried here.
	dispatchCtx, cancel := context.WithTimeout(ctx, s.cfg.DispatchTimeout)
	delivery, dispatchErr := s.dispatcher.Send(dispatchCtx, msg.SenderID, replyText)
	cancel()

	success := dispatchErr == nil
	if dispatchErr != nil {
		logEntry.WithError(dispatchErr).Error("outbound dispatch failed")
		notes = append(notes, dispatchErr.Error())
	}

	outcome := models.OutcomeRecord{
		SenderID:          msg.SenderID,
		ProviderMessageID: msg.ProviderMessageID,
		Intent:            intent,
		ReplyText:         replyText,
		TemplateUsed:      templateUsed,
		FallbackUsed:      fallbackUsed,
		Success:           success,
		ErrorMessage:      strings.Join(notes, "; "),
		Delivery:          delivery,
		ProcessingTimeMS:  time.Since(start).Milliseconds(),
	}

	// Record the outcome inside the dedup window before the audit
	// write so a fast provider retry cannot re-dispatch.
	s.rememberOutcome(ctx, msg.ProviderMessageID, outcome)

	// 10. Exactly one audit record per event, whatever happened above.
	s.interactions.Record(ctx, &models.InteractionLog{
		SenderID:         msg.SenderID,
		MessageText:      msg.Text,
		IntentDetected:   intent,
		TemplateUsed:     templateUsed,
		ResponseText:     replyText,
		FallbackUsed:     fallbackUsed,
		Success:          success,
		ErrorMessage:     outcome.ErrorMessage,
		ProcessingTimeMS: outcome.ProcessingTimeMS,
		ContextSnapshot:  conv,
		Timestamp:        time.Now().UTC(),
	})

	if dispatchErr != nil {
		return outcome, utils.E(utils.CodeProviderError, op, "dispatch failed", dispatchErr)
	}
	return outcome, nil
}

// resolveReply runs the priority chain: structured template first,
// retrieval-augmented generation on miss. The returned error is only
// informational (provider failures already converted to fallback text).
func (s *orchestratorService) resolveReply(ctx context.Context, intent models.Intent, text string, conv *models.ConversationContext) (reply, templateUsed string, fallbackUsed bool, note error) {
	rendered, err := s.templates.Resolve(ctx, intent, s.cfg.Language, conv.Slots)
	if err == nil {
		return rendered.Text, rendered.Name, false, nil
	}
	if !errors.Is(err, ErrTemplateNotFound) {
		// Repo trouble is recoverable the same way a miss is.
		s.log.WithError(err).Warn("template resolution failed, falling back to rag")
	}

	result := s.rag.Answer(ctx, text, conv.TrailingTurns(s.cfg.GroundingTurns))
	return result.Text, "", result.UsedFallback, result.Err
}

func (s *orchestratorService) previousOutcome(ctx context.Context, providerMessageID string) (models.OutcomeRecord, bool) {
	if providerMessageID == "" {
		return models.OutcomeRecord{}, false
	}
	var prev models.OutcomeRecord
	hit, err := s.dedup.GetJSON(ctx, dedupKeyPrefix+providerMessageID, &prev)
	if err != nil || !hit {
		return models.OutcomeRecord{}, false
	}
	return prev, true
}

func (s *orchestratorService) rememberOutcome(ctx context.Context, providerMessageID string, outcome models.OutcomeRecord) {
	if providerMessageID == "" {
		return
	}
	if err := s.dedup.SetJSON(ctx, dedupKeyPrefix+providerMessageID, outcome, s.cfg.DedupWindow); err != nil {
		s.log.WithError(err).Warn("dedup record write failed")
	}
}
