package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vea-connect/messaging/internal/models"
	"github.com/vea-connect/messaging/internal/providers/embedding"
	"github.com/vea-connect/messaging/internal/providers/llm"
)

// SearchIndex is the slice of the knowledge repository the answerer
// needs: top-k similarity search over embedded chunks.
type SearchIndex interface {
	SearchTopK(ctx context.Context, vector []float32, topK int, minScore float64) ([]models.SearchHit, error)
}

// FallbackReason distinguishes why a canned reply was used. Callers
// must handle every variant instead of unwinding on errors.
type FallbackReason string

const (
	FallbackNone            FallbackReason = ""
	FallbackContentFiltered FallbackReason = "content_filtered"
	FallbackProviderError   FallbackReason = "provider_error"
)

// RagResult always carries a non-empty reply; the pipeline never
// leaves the user without one.
type RagResult struct {
	Text         string
	UsedFallback bool
	Reason       FallbackReason
	Err          error // operational error behind FallbackProviderError, for the audit log
}

// The content-filter reply is a policy signal the user should act on;
// the apology covers operational failures monitored separately.
const (
	ContentFilteredMessage = "Lo siento, no puedo responder a ese mensaje. ¿Podrías reformularlo de otra manera?"
	ProviderErrorMessage   = "Lo sentimos, estamos teniendo problemas técnicos en este momento. Por favor intenta de nuevo más tarde."

	systemInstruction = "Eres el asistente virtual de la iglesia Vea Connect. " +
		"Responde en el idioma del usuario, de forma breve, cálida y precisa. " +
		"Usa únicamente la información del contexto proporcionado; si no la tienes, dilo con honestidad."
)

// RagService composes embedding, vector search, and completion into a
// grounded-answer generator with safe fallbacks.
type RagService interface {
	Answer(ctx context.Context, query string, turns []models.Turn) RagResult
}

type RagConfig struct {
	TopK            int
	MinScore        float64 // 0 disables relevance filtering
	MaxContextChars int
	MaxTokens       int
	Temperature     float64
	EmbedTimeout    time.Duration
	SearchTimeout   time.Duration
	CompleteTimeout time.Duration
}

type ragService struct {
	embedder embedding.Provider
	index    SearchIndex
	llm      llm.Provider
	cfg      RagConfig
	log      *logrus.Logger
}

func NewRagService(embedder embedding.Provider, index SearchIndex, completions llm.Provider, cfg RagConfig, log *logrus.Logger) RagService {
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = 4000
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.7
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = 15 * time.Second
	}
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = 10 * time.Second
	}
	if cfg.CompleteTimeout <= 0 {
		cfg.CompleteTimeout = 30 * time.Second
	}
	return &ragService{embedder: embedder, index: index, llm: completions, cfg: cfg, log: log}
}

func (s *ragService) Answer(ctx context.Context, query string, turns []models.Turn) RagResult {
	hits, err := s.retrieve(ctx, query)
	if err != nil {
		// Retrieval failure degrades to an ungrounded answer rather
		// than failing the whole request.
		s.log.WithError(err).Warn("rag: retrieval failed, answering without grounding")
		hits = nil
	}

	messages := buildMessages(query, turns, hits, s.cfg.MaxContextChars)

	completeCtx, cancel := context.WithTimeout(ctx, s.cfg.CompleteTimeout)
	defer cancel()
	text, err := s.llm.Complete(completeCtx, messages, s.cfg.MaxTokens, s.cfg.Temperature)
	if errors.Is(err, llm.ErrContentFiltered) {
		return RagResult{Text: ContentFilteredMessage, UsedFallback: true, Reason: FallbackContentFiltered}
	}
	if err != nil {
		s.log.WithError(err).Error("rag: completion provider failed")
		return RagResult{Text: ProviderErrorMessage, UsedFallback: true, Reason: FallbackProviderError, Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return RagResult{Text: ProviderErrorMessage, UsedFallback: true, Reason: FallbackProviderError, Err: errors.New("empty completion")}
	}
	return RagResult{Text: text}
}

func (s *ragService) retrieve(ctx context.Context, query string) ([]models.SearchHit, error) {
	embedCtx, cancel := context.WithTimeout(ctx, s.cfg.EmbedTimeout)
	defer cancel()
	vec, err := s.embedder.Embed(embedCtx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.cfg.SearchTimeout)
	defer cancel()
	hits, err := s.index.SearchTopK(searchCtx, vec, s.cfg.TopK, s.cfg.MinScore)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return hits, nil
}

// buildMessages assembles system instruction, bounded grounding block,
// trailing conversation turns, and the current query.
func buildMessages(query string, turns []models.Turn, hits []models.SearchHit, maxContextChars int) []llm.Message {
	messages := []llm.Message{{Role: "system", Content: systemInstruction}}

	if block := groundingBlock(hits, maxContextChars); block != "" {
		messages = append(messages, llm.Message{
			Role:    "system",
			Content: "Contexto:\n" + block,
		})
	}

	for _, t := range turns {
		role := t.Role
		if role != "assistant" {
			role = "user"
		}
		messages = append(messages, llm.Message{Role: role, Content: t.Text})
	}

	return append(messages, llm.Message{Role: "user", Content: query})
}

func groundingBlock(hits []models.SearchHit, maxChars int) string {
	var b strings.Builder
	for _, h := range hits {
		snippet := strings.TrimSpace(h.Text)
		if snippet == "" {
			continue
		}
		line := fmt.Sprintf("- [%s] %s\n", h.SourceType, snippet)
		if b.Len()+len(line) > maxChars {
			break
		}
		b.WriteString(line)
	}
	return strings.TrimSpace(b.String())
}
