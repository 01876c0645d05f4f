package bootstrap

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"socioscope-be/internal/config"
	"socioscope-be/internal/controller"
	"socioscope-be/internal/handler"
	"socioscope-be/internal/pkg/logger"
	"socioscope-be/internal/pkg/mailer"
	"socioscope-be/internal/repository/memory"
	"socioscope-be/internal/repository/unitofwork"
	"socioscope-be/internal/service"
	"socioscope-be/internal/websocket"
	"socioscope-be/pkg/events"
	"socioscope-be/pkg/llm/factory"
	"socioscope-be/pkg/rag"
	"socioscope-be/pkg/store"
	"socioscope-be/pkg/transcript"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController       controller.IAuthController
	OAuthController      controller.IOAuthController
	TranscriptController controller.ITranscriptController
	DiscussionController controller.IDiscussionController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	QueryEventHandler *handler.QueryEventHandler
	WebSocketHub      *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Document Store (Mongo with sample fallback)
	docStore := newDocumentStore(cfg)

	// Transcript Cache
	transcriptCache := transcript.NewCache(cfg.Ai.CacheSize)

	// LLM Provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.Model,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GroqAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM model: %s", cfg.Ai.Model)

	orchestrator := rag.NewOrchestrator(llmProvider, 120*time.Second, initLLMLogger())

	// In-Memory Session Storage
	sessionRepo := memory.NewSessionRepository()

	// Redis (optional, for multi-instance websocket fan-out)
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/query_events.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	publisherService := service.NewPublisherService(events.TopicQueryLifecycle, pubSub)
	consumerService := service.NewConsumerService(pubSub, events.TopicQueryLifecycle, wsHub)

	// 4. Services
	authService := service.NewAuthService(uowFactory, emailService, sysLogger, cfg.Auth.AllowedDomain)
	oauthService := service.NewOAuthService(uowFactory, sysLogger, cfg.Auth.AllowedDomain)
	transcriptService := service.NewTranscriptService(docStore, transcriptCache, sessionRepo, sysLogger, cfg.Ai.Model)
	discussionService := service.NewDiscussionService(
		uowFactory,
		docStore,
		orchestrator,
		sessionRepo,
		publisherService,
		sysLogger,
		cfg.Ai.Model,
	)

	// 5. Controllers
	return &Container{
		AuthController:       controller.NewAuthController(authService),
		OAuthController:      controller.NewOAuthController(oauthService),
		TranscriptController: controller.NewTranscriptController(transcriptService),
		DiscussionController: controller.NewDiscussionController(discussionService),

		ConsumerService: consumerService,

		QueryEventHandler: handler.NewQueryEventHandler(wsHub, wsLogger),
		WebSocketHub:      wsHub,
	}
}

// newDocumentStore connects to Mongo when configured and reachable, and
// falls back to the bundled sample transcripts otherwise.
func newDocumentStore(cfg *config.Config) store.DocumentStore {
	if cfg.Mongo.URI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		ms, err := store.NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err != nil {
			log.Printf("[WARN] Mongo unavailable: %v. Falling back to samples", err)
		} else if _, err := ms.ListMetadata(ctx); err != nil {
			log.Printf("[WARN] Mongo collection unusable: %v. Falling back to samples", err)
		} else {
			log.Printf("[INFO] Using Mongo document store (%s/%s)", cfg.Mongo.Database, cfg.Mongo.Collection)
			return ms
		}
	}

	ss, err := store.NewSampleStore(cfg.App.SamplesPath)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load sample documents from %s: %v", cfg.App.SamplesPath, err)
	}
	log.Printf("[INFO] Using sample document store (%s)", cfg.App.SamplesPath)
	return ss
}

func initLLMLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_rag.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
