package bootstrap

import (
	"context"
	"fmt"
	"time"

	"food-rag-be/internal/config"
	"food-rag-be/internal/controller"
	"food-rag-be/internal/pkg/logger"
	"food-rag-be/internal/repository/implementation"
	"food-rag-be/internal/repository/memory"
	"food-rag-be/internal/repository/transcript"
	"food-rag-be/internal/service"
	"food-rag-be/internal/websocket"
	"food-rag-be/pkg/embedding"
	"food-rag-be/pkg/llm"
	"food-rag-be/pkg/llm/factory"
	pktNats "food-rag-be/pkg/nats"
	"food-rag-be/pkg/rag/retriever"
	"food-rag-be/pkg/rag/session"
	"food-rag-be/pkg/vectorstore"
	"food-rag-be/pkg/vectorstore/chroma"
	"food-rag-be/pkg/vectorstore/pgvector"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	module             = "Bootstrap"
	preferenceCacheTTL = time.Hour
)

type Container struct {
	// Controllers
	ChatController       controller.IChatController
	FoodController       controller.IFoodController
	PreferenceController controller.IPreferenceController
	ChatSocketHandler    *websocket.ChatHandler

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	ChatEventLogService service.IChatEventLogService

	Logger logger.ILogger

	closers []func()
}

// NewContainer wires every component. Redis and NATS are optional: without
// them transcripts and chat events are skipped.
func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	c := &Container{Logger: sysLogger}

	// 1. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { pubSub.Close() })

	// 2. AI providers
	embedder := NewEmbeddingProvider(cfg.Ai, sysLogger)

	llmProvider, err := factory.NewLLMProvider(cfg.Ai)
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}
	sysLogger.Info(module, "Using LLM provider", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	items, err := NewVectorStore(cfg.VectorStore, db, embedder, sysLogger)
	if err != nil {
		return nil, err
	}

	// 3. Infrastructure
	var transcripts transcript.Store
	if rdb := connectRedis(cfg.App.RedisURL, sysLogger); rdb != nil {
		transcripts = transcript.NewRedisStore(rdb, transcript.DefaultTTL)
		c.closers = append(c.closers, func() { rdb.Close() })
	}

	var chatEvents service.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn(module, "Failed to connect to NATS publisher", map[string]interface{}{"error": err.Error()})
	} else {
		chatEvents = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}

	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn(module, "Failed to connect to NATS subscriber", map[string]interface{}{"error": err.Error()})
	} else {
		c.ChatEventLogService = service.NewChatEventLogService(natsSub, sysLogger)
		c.closers = append(c.closers, natsSub.Close)
	}

	// 4. RAG pipeline
	searcher := retriever.New(items, retriever.Config{
		DefaultLimit:    cfg.Rag.DefaultLimit,
		OverFetchFactor: cfg.Rag.OverFetchFactor,
		Timeout:         cfg.Rag.RetrievalTimeout,
	}, sysLogger)

	runner := session.NewRunner(searcher, llmProvider, session.Config{
		FragmentTimeout: cfg.Rag.FragmentTimeout,
		Options: []llm.Option{
			llm.WithTemperature(cfg.Ai.Temperature),
			llm.WithMaxTokens(cfg.Ai.MaxTokens),
		},
	}, sysLogger)

	// 5. Services
	preferenceService := service.NewPreferenceService(
		implementation.NewUserPreferenceRepository(db),
		memory.NewPreferenceCache(preferenceCacheTTL),
		sysLogger,
	)
	chatService := service.NewChatService(runner, preferenceService, transcripts, chatEvents, sysLogger)

	publisherService := service.NewPublisherService(cfg.App.IngestTopic, pubSub)
	foodService := service.NewFoodService(searcher, items, publisherService)
	c.ConsumerService = service.NewConsumerService(
		pubSub,
		cfg.App.IngestTopic,
		service.NewFoodIndexer(items),
		sysLogger,
	)

	// 6. Controllers
	c.ChatController = controller.NewChatController(chatService)
	c.FoodController = controller.NewFoodController(foodService)
	c.PreferenceController = controller.NewPreferenceController(preferenceService)
	c.ChatSocketHandler = websocket.NewChatHandler(chatService, sysLogger)

	return c, nil
}

// Close releases broker and cache connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// NewEmbeddingProvider picks the embedding backend named in cfg, defaulting to Ollama.
func NewEmbeddingProvider(cfg config.AIConfig, log logger.ILogger) embedding.Provider {
	if cfg.EmbeddingProvider == "gemini" {
		log.Info(module, "Using embedding provider: GEMINI", nil)
		return embedding.NewGeminiProvider(cfg.GeminiAPIKey)
	}
	log.Info(module, "Using embedding provider: OLLAMA", map[string]interface{}{"model": cfg.OllamaModel})
	return embedding.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaModel)
}

func NewVectorStore(cfg config.VectorStoreConfig, db *gorm.DB, embedder embedding.Provider, log logger.ILogger) (vectorstore.Store, error) {
	switch cfg.Provider {
	case "pgvector":
		if db == nil {
			return nil, fmt.Errorf("pgvector store needs a database connection")
		}
		log.Info(module, "Using vector store: PGVECTOR", nil)
		return pgvector.NewStore(db, embedder), nil
	case "chroma", "":
		log.Info(module, "Using vector store: CHROMA", map[string]interface{}{
			"host":       cfg.ChromaHost,
			"collection": cfg.ChromaCollection,
		})
		return chroma.NewClient(chroma.Config{
			Host:       cfg.ChromaHost,
			Port:       cfg.ChromaPort,
			Tenant:     cfg.ChromaTenant,
			Database:   cfg.ChromaDatabase,
			Collection: cfg.ChromaCollection,
		}, embedder), nil
	default:
		return nil, fmt.Errorf("unknown vector store provider %q", cfg.Provider)
	}
}

// connectRedis returns nil when Redis cannot be reached.
func connectRedis(url string, log logger.ILogger) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn(module, "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}

	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn(module, "Failed to connect to Redis, transcripts disabled", map[string]interface{}{"error": err.Error()})
		rdb.Close()
		return nil
	}
	return rdb
}
