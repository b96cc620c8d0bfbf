package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/vea-connect/messaging/internal/api/handlers"
	"github.com/vea-connect/messaging/internal/api/middleware"
)

type Deps struct {
	Webhook     *handlers.WebhookHandler
	Interaction *handlers.InteractionHandler
	Knowledge   *handlers.KnowledgeHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Provider event subscription callback (validated by handshake,
	// not by bearer token).
	r.POST("/webhook", d.Webhook.Receive)

	// Operator surface (JWT)
	admin := r.Group("/")
	admin.Use(middleware.JWTAuth())

	admin.GET("/interactions/:sender_id", d.Interaction.ListBySender)
	admin.POST("/knowledge", d.Knowledge.Ingest)
}
