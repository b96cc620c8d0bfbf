package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vea-connect/messaging/internal/models"
	mongorepo "github.com/vea-connect/messaging/internal/repositories/mongo"
	"github.com/vea-connect/messaging/internal/utils"
)

// InteractionService is the durable, queryable record of every
// inbound/outbound exchange. Record is fire-and-forget for the caller:
// a write failure is surfaced via logs and the failure counter, never
// propagated to the user-facing reply path.
type InteractionService interface {
	Record(ctx context.Context, entry *models.InteractionLog)
	ListBySender(ctx context.Context, senderID string, limit int) ([]models.InteractionLog, error)
	// WriteFailures reports how many Record calls have been dropped
	// since process start.
	WriteFailures() int64
}

type interactionService struct {
	interactions mongorepo.InteractionRepo
	log          *logrus.Logger
	timeout      time.Duration
	failures     atomic.Int64
}

func NewInteractionService(interactions mongorepo.InteractionRepo, log *logrus.Logger) InteractionService {
	return &interactionService{
		interactions: interactions,
		log:          log,
		timeout:      10 * time.Second,
	}
}

func (s *interactionService) Record(ctx context.Context, entry *models.InteractionLog) {
	// The audit record is op-critical and cheap: attempt it even when
	// the inbound request was cancelled.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := s.interactions.Insert(writeCtx, entry); err != nil {
		s.failures.Add(1)
		s.log.WithError(err).WithFields(logrus.Fields{
			"sender_id": entry.SenderID,
			"intent":    entry.IntentDetected,
		}).Error("interaction log write failed")
	}
}

func (s *interactionService) ListBySender(ctx context.Context, senderID string, limit int) ([]models.InteractionLog, error) {
	const op = "InteractionService.ListBySender"

	if senderID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "sender_id is required", nil)
	}
	rows, err := s.interactions.ListBySender(ctx, senderID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list interactions", err)
	}
	return rows, nil
}

func (s *interactionService) WriteFailures() int64 {
	return s.failures.Load()
}
