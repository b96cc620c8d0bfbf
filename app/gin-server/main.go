package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/vea-connect/messaging/config"
	"github.com/vea-connect/messaging/internal/api/handlers"
	"github.com/vea-connect/messaging/internal/api/middleware"
	"github.com/vea-connect/messaging/internal/api/routes"
	"github.com/vea-connect/messaging/internal/cache"
	"github.com/vea-connect/messaging/internal/logger"
	"github.com/vea-connect/messaging/internal/providers/embedding"
	"github.com/vea-connect/messaging/internal/providers/llm"
	"github.com/vea-connect/messaging/internal/providers/whatsapp"
	mongorepo "github.com/vea-connect/messaging/internal/repositories/mongo"
	pgrepo "github.com/vea-connect/messaging/internal/repositories/postgres"
	"github.com/vea-connect/messaging/internal/services"
)

func main() {
	_ = godotenv.Load()

	l := logger.New()

	// Init PostgreSQL (templates + knowledge index)
	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	if err := config.MigratePostgres(); err != nil {
		log.Fatalf("PostgreSQL migrate error: %v", err)
	}
	l.Info("PostgreSQL connected")

	// Init Redis (conversation state, embedding cache, dedup)
	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	l.Info("Redis connected")

	// Init MongoDB (interaction logs)
	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}
	l.Info("MongoDB connected")

	redisCache := cache.NewRedisCache(config.RedisClient)

	// Providers
	embedClient, err := embedding.NewOpenAIClient(embedding.OpenAIConfig{
		BaseURL: os.Getenv("EMBEDDING_BASE_URL"),
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   os.Getenv("EMBEDDING_MODEL"),
		Timeout: envDuration("EMBEDDING_TIMEOUT", 15*time.Second),
	})
	if err != nil {
		log.Fatalf("embedding client error: %v", err)
	}
	embedder := embedding.NewCachedProvider(embedClient, redisCache, envDuration("EMBEDDING_CACHE_TTL", embedding.DefaultEmbeddingTTL))

	completions, err := llm.NewOpenAIClient(llm.OpenAIConfig{
		BaseURL: os.Getenv("COMPLETION_BASE_URL"),
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   os.Getenv("COMPLETION_MODEL"),
		Timeout: envDuration("COMPLETION_TIMEOUT", 30*time.Second),
	})
	if err != nil {
		log.Fatalf("completion client error: %v", err)
	}

	dispatcher, err := whatsapp.NewClient(whatsapp.Config{
		BaseURL:   os.Getenv("WHATSAPP_API_URL"),
		APIKey:    os.Getenv("WHATSAPP_API_KEY"),
		ChannelID: os.Getenv("WHATSAPP_CHANNEL_ID"),
		Timeout:   envDuration("DISPATCH_TIMEOUT", 10*time.Second),
	})
	if err != nil {
		log.Fatalf("whatsapp client error: %v", err)
	}

	// Repositories
	templateRepo := pgrepo.NewTemplateRepo(config.PostgresDB)
	knowledgeRepo := pgrepo.NewKnowledgeRepo(config.PostgresDB)
	interactionRepo := mongorepo.NewInteractionRepo(config.MongoDatabase())

	// Services
	lookup := services.NewStaticLookup(defaultLookupEntries())
	store := services.NewConversationStore(redisCache, envDuration("CONVERSATION_TTL", services.DefaultConversationTTL))
	intents := services.NewIntentService()
	templates := services.NewTemplateService(templateRepo, lookup)
	rag := services.NewRagService(embedder, knowledgeRepo, completions, services.RagConfig{
		TopK:     envInt("RAG_TOP_K", 3),
		MinScore: envFloat("RAG_MIN_SCORE", 0),
	}, l)
	interactions := services.NewInteractionService(interactionRepo, l)
	knowledge := services.NewKnowledgeService(embedder, knowledgeRepo)
	orchestrator := services.NewOrchestratorService(store, intents, templates, rag, dispatcher, interactions, redisCache, services.OrchestratorConfig{
		Language:    os.Getenv("TEMPLATE_LANGUAGE"),
		DedupWindow: envDuration("DEDUP_WINDOW", services.DefaultDedupWindow),
	}, l)

	// Start Gin server
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(l))

	routes.RegisterRoutes(r, routes.Deps{
		Webhook:     handlers.NewWebhookHandler(orchestrator, l),
		Interaction: handlers.NewInteractionHandler(interactions),
		Knowledge:   handlers.NewKnowledgeHandler(knowledge),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// defaultLookupEntries seeds the data collaborator with the values the
// structured templates need when no external service is wired in.
func defaultLookupEntries() map[string]map[string]string {
	return map[string]map[string]string{
		"donations": {
			"bank_name":      os.Getenv("DONATIONS_BANK_NAME"),
			"account_number": os.Getenv("DONATIONS_ACCOUNT_NUMBER"),
			"account_holder": os.Getenv("DONATIONS_ACCOUNT_HOLDER"),
		},
		"contact": {
			"phone": os.Getenv("CONTACT_PHONE"),
			"email": os.Getenv("CONTACT_EMAIL"),
		},
	}
}

func envDuration(name string, def time.Duration) time.Duration {
	if v := os.Getenv(name); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(name string, def float64) float64 {
	if v := os.Getenv(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
