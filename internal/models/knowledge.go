package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// KnowledgeChunk is one embedded snippet in the semantic index that
// grounds RAG answers.
type KnowledgeChunk struct {
	ID         string          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SourceType string          `gorm:"column:source_type;type:text;index" json:"source_type"` // document|event|faq
	Text       string          `gorm:"column:text;type:text" json:"text"`
	Embedding  pgvector.Vector `gorm:"column:embedding;type:vector(1536)" json:"embedding"`
	Metadata   datatypes.JSON  `gorm:"column:metadata;type:jsonb" json:"metadata"`
	CreatedAt  time.Time       `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
}

func (KnowledgeChunk) TableName() string { return "knowledge_chunks" }

// SearchHit is one ranked result from the semantic index.
// Produced per query, never persisted.
type SearchHit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"` // higher = more relevant
	Text       string            `json:"text"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	SourceType string            `json:"source_type"`
}
