package services

import (
	"context"

	"github.com/vea-connect/messaging/internal/models"
	"github.com/vea-connect/messaging/internal/providers/embedding"
	pgrepo "github.com/vea-connect/messaging/internal/repositories/postgres"
	"github.com/vea-connect/messaging/internal/utils"
)

// KnowledgeService lets operators feed embedded snippets into the
// semantic index that grounds RAG answers.
type KnowledgeService interface {
	Ingest(ctx context.Context, sourceType, text string, metadata map[string]string) (*models.KnowledgeChunk, error)
}

type knowledgeService struct {
	embedder embedding.Provider
	chunks   pgrepo.KnowledgeRepo
}

func NewKnowledgeService(embedder embedding.Provider, chunks pgrepo.KnowledgeRepo) KnowledgeService {
	return &knowledgeService{embedder: embedder, chunks: chunks}
}

func (s *knowledgeService) Ingest(ctx context.Context, sourceType, text string, metadata map[string]string) (*models.KnowledgeChunk, error) {
	const op = "KnowledgeService.Ingest"

	if sourceType == "" || text == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "source_type and text are required", nil)
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, utils.E(utils.CodeProviderError, op, "failed to embed text", err)
	}

	chunk, err := s.chunks.Upsert(ctx, sourceType, text, vec, metadata)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to store chunk", err)
	}
	return chunk, nil
}
