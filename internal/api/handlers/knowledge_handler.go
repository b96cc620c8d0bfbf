package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vea-connect/messaging/internal/services"
	"github.com/vea-connect/messaging/internal/utils"
)

type KnowledgeHandler struct {
	svc services.KnowledgeService
}

func NewKnowledgeHandler(svc services.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

type ingestRequest struct {
	SourceType string            `json:"source_type"`
	Text       string            `json:"text"`
	Metadata   map[string]string `json:"metadata"`
}

func (h *KnowledgeHandler) Ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "KnowledgeHandler.Ingest", "invalid json body", err))
		return
	}

	chunk, err := h.svc.Ingest(c.Request.Context(), req.SourceType, req.Text, req.Metadata)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":          chunk.ID,
		"source_type": chunk.SourceType,
	})
}
