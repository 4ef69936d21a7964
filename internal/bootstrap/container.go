package bootstrap

import (
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-tutor-be/internal/config"
	"ai-tutor-be/internal/controller"
	"ai-tutor-be/internal/pkg/logger"
	"ai-tutor-be/internal/repository/memory"
	"ai-tutor-be/internal/service"
	"ai-tutor-be/pkg/database"
	"ai-tutor-be/pkg/embedding"
	"ai-tutor-be/pkg/llm/factory"
	"ai-tutor-be/pkg/rag/prompt"
	"ai-tutor-be/pkg/rag/response"
	"ai-tutor-be/pkg/vectorstore"
	chromemstore "ai-tutor-be/pkg/vectorstore/chromem"
	pgvectorstore "ai-tutor-be/pkg/vectorstore/pgvector"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger *logger.ZapLogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Vector Store
	var store vectorstore.Store
	switch cfg.Store.Backend {
	case "pgvector":
		gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Fatalf("[FATAL] Unable to connect to GORM DB: %v", err)
		}
		store, err = pgvectorstore.New(gormDB, pgvectorstore.Config{
			Timeout: cfg.Store.Timeout,
		}, embeddingProvider, sysLogger.Raw())
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize pgvector store: %v", err)
		}
		log.Printf("[INFO] Using Vector Store: PGVECTOR")
	default:
		store, err = chromemstore.New(chromemstore.Config{
			Path:       cfg.Store.Path,
			Collection: cfg.Store.Collection,
			Timeout:    cfg.Store.Timeout,
		}, embeddingProvider, sysLogger.Raw())
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize chromem store: %v", err)
		}
		log.Printf("[INFO] Using Vector Store: CHROMEM (%s)", cfg.Store.Path)
	}

	// 5. RAG pipeline
	library := prompt.NewLibrary()

	// Serving mode: no retry, rate limits surface as 429 immediately.
	generator := response.NewGenerator(llmProvider, sysLogger.Raw())

	sessionRepo := memory.NewSessionRepository()

	// 6. Services
	chatService := service.NewChatService(
		store,
		library,
		generator,
		sessionRepo,
		cfg.Rag.RetrievalK,
		sysLogger,
	)
	ingestService := service.NewIngestService(
		pubSub,
		cfg.Keys.IngestTopic,
		cfg.Rag.ChunkSize,
		cfg.Rag.ChunkOverlap,
		sysLogger,
	)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.IngestTopic,
		store,
		cfg.Rag.ChunkSize,
		cfg.Rag.ChunkOverlap,
		sysLogger,
	)

	// 7. Controllers
	return &Container{
		ChatController:     controller.NewChatController(chatService),
		DocumentController: controller.NewDocumentController(ingestService),

		ConsumerService: consumerService,
		Logger:          sysLogger,
	}
}
