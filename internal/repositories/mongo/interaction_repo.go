package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vea-connect/messaging/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type InteractionRepo interface {
	Insert(ctx context.Context, entry *models.InteractionLog) error
	ListBySender(ctx context.Context, senderID string, limit int) ([]models.InteractionLog, error)
}

type interactionRepo struct {
	col *mongo.Collection
}

func NewInteractionRepo(db *mongo.Database) InteractionRepo {
	return &interactionRepo{col: db.Collection("interaction_logs")}
}

func (r *interactionRepo) Insert(ctx context.Context, entry *models.InteractionLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, entry)
	return err
}

func (r *interactionRepo) ListBySender(ctx context.Context, senderID string, limit int) ([]models.InteractionLog, error) {
	if limit <= 0 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{"sender_id": senderID}, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	var rows []models.InteractionLog
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
