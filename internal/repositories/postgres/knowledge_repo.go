package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/vea-connect/messaging/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type KnowledgeRepo interface {
	// SearchTopK runs a cosine-similarity query against the chunk
	// index. minScore <= 0 disables relevance filtering.
	SearchTopK(ctx context.Context, vector []float32, topK int, minScore float64) ([]models.SearchHit, error)
	Upsert(ctx context.Context, sourceType, text string, vector []float32, metadata map[string]string) (*models.KnowledgeChunk, error)
}

type knowledgeRepo struct {
	db *gorm.DB
}

func NewKnowledgeRepo(db *gorm.DB) KnowledgeRepo {
	return &knowledgeRepo{db: db}
}

type scoredChunk struct {
	ID         string         `gorm:"column:id"`
	SourceType string         `gorm:"column:source_type"`
	Text       string         `gorm:"column:text"`
	Metadata   datatypes.JSON `gorm:"column:metadata"`
	Score      float64        `gorm:"column:score"`
}

func (r *knowledgeRepo) SearchTopK(ctx context.Context, vector []float32, topK int, minScore float64) ([]models.SearchHit, error) {
	if topK <= 0 {
		topK = 3
	}

	var rows []scoredChunk
	// Cosine distance; score = 1 - distance so higher means closer.
	err := r.db.WithContext(ctx).
		Model(&models.KnowledgeChunk{}).
		Select("id, source_type, text, metadata, 1 - (embedding <=> ?) AS score", pgvector.NewVector(vector)).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:  "embedding <=> ?",
			Vars: []interface{}{pgvector.NewVector(vector)},
		}}).
		Limit(topK).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	hits := make([]models.SearchHit, 0, len(rows))
	for _, row := range rows {
		if minScore > 0 && row.Score < minScore {
			continue
		}
		var md map[string]string
		if len(row.Metadata) > 0 {
			_ = json.Unmarshal(row.Metadata, &md)
		}
		hits = append(hits, models.SearchHit{
			ID:         row.ID,
			Score:      row.Score,
			Text:       row.Text,
			Metadata:   md,
			SourceType: row.SourceType,
		})
	}
	return hits, nil
}

func (r *knowledgeRepo) Upsert(ctx context.Context, sourceType, text string, vector []float32, metadata map[string]string) (*models.KnowledgeChunk, error) {
	var md datatypes.JSON
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err != nil {
			return nil, err
		}
		md = datatypes.JSON(b)
	}

	chunk := &models.KnowledgeChunk{
		ID:         uuid.NewString(),
		SourceType: sourceType,
		Text:       text,
		Embedding:  pgvector.NewVector(vector),
		Metadata:   md,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(chunk).Error; err != nil {
		return nil, err
	}
	return chunk, nil
}
