package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vea-connect/messaging/internal/services"
)

type InteractionHandler struct {
	svc services.InteractionService
}

func NewInteractionHandler(svc services.InteractionService) *InteractionHandler {
	return &InteractionHandler{svc: svc}
}

func (h *InteractionHandler) ListBySender(c *gin.Context) {
	senderID := c.Param("sender_id")

	limit := 50
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	rows, err := h.svc.ListBySender(c.Request.Context(), senderID, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sender_id":    senderID,
		"interactions": rows,
	})
}
