package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}
	db := MongoDatabase()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// interaction_logs indexes
	interactions := db.Collection("interaction_logs")
	_, err := interactions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// Query helper: recent interactions per sender
		{
			Keys:    bson.D{{Key: "sender_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("by_sender_ts"),
		},
		// Global recency scans for ops tooling
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("by_ts"),
		},
	})
	return err
}
