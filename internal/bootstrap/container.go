package bootstrap

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"time"

	"healthassist-be/internal/config"
	"healthassist-be/internal/controller"
	"healthassist-be/internal/pkg/logger"
	"healthassist-be/internal/repository/contract"
	"healthassist-be/internal/repository/implementation"
	"healthassist-be/internal/repository/memory"
	"healthassist-be/internal/service"
	"healthassist-be/pkg/conversation/fallback"
	"healthassist-be/pkg/conversation/history"
	"healthassist-be/pkg/conversation/response"
	"healthassist-be/pkg/conversation/session"
	"healthassist-be/pkg/database"
	"healthassist-be/pkg/llm"
	"healthassist-be/pkg/llm/factory"
	"healthassist-be/pkg/lock"
	pktNats "healthassist-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

// idle per-session semaphores are evicted after this long
const idleLockTTL = 30 * time.Minute

type Container struct {
	// Controllers
	ChatbotController controller.IChatbotController
	HealthController  controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

// NewContainer builds every dependency once. Store or generation backend
// failures are logged and degrade the service; they never stop startup.
func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	auditLogger := logger.NewIsolatedLogger(filepath.Join(filepath.Dir(cfg.App.LogFilePath), "chat_events.log"))
	c := &Container{Logger: sysLogger}
	c.closers = append(c.closers, func() { _ = sysLogger.Sync(); _ = auditLogger.Sync() })

	// 2. Infrastructure
	repo := NewRepository(cfg)
	llmProvider := NewLLMProvider(cfg)
	locker := c.newLocker(cfg)
	natsPub := c.newNatsPublisher(cfg, sysLogger)

	// 3. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	publisherService := service.NewPublisherService(cfg.App.EventsTopic, pubSub)
	var sink service.EventSink
	if natsPub != nil {
		sink = natsPub
	}
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.EventsTopic, auditLogger, sink)

	// 4. Services
	generator := response.NewGenerator(llmProvider, fallback.NewDefaultResponder(), cfg.Ai.SystemPrompt, cfg.Ai.Timeout, sysLogger)
	chatbotService := NewChatbotService(repo, generator, locker, cfg.Session.LockTimeout, publisherService, sysLogger)
	healthService := service.NewHealthService(repo, generator)

	// 5. Controllers
	c.ChatbotController = controller.NewChatbotController(chatbotService)
	c.HealthController = controller.NewHealthController(healthService)

	return c
}

// NewChatbotService wires the conversation components around repo.
func NewChatbotService(
	repo contract.ChatSessionRepository,
	generator *response.Generator,
	locker lock.Locker,
	lockTimeout time.Duration,
	publisher service.IPublisherService,
	log logger.ILogger,
) service.IChatbotService {
	return service.NewChatbotService(
		session.NewManager(repo, log),
		history.NewLoader(repo),
		generator,
		locker,
		lockTimeout,
		publisher,
		log,
	)
}

// NewRepository picks the store from DB_DRIVER. An unreachable database yields
// a repository whose every call fails with contract.ErrStoreUnavailable.
func NewRepository(cfg *config.Config) contract.ChatSessionRepository {
	if strings.EqualFold(cfg.Database.Driver, "memory") {
		log.Println("[INFO] Chat store: in-memory")
		return memory.NewChatSessionRepository()
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.IsProduction())
	if err != nil {
		log.Printf("[WARN] Chat store unavailable: %v", err)
		return implementation.NewUnavailableRepository(err)
	}
	log.Println("[INFO] Chat store: postgres connected")
	return implementation.NewChatSessionRepository(db)
}

// NewLLMProvider returns nil when the configured backend cannot be built; the
// generator then answers from the fallback table.
func NewLLMProvider(cfg *config.Config) llm.LLMProvider {
	providerName := strings.ToLower(strings.TrimSpace(cfg.Ai.LLMProvider))
	model := cfg.Ai.LLMModel
	if model == "" {
		model = factory.DefaultModel(providerName)
	}
	factoryCfg := factory.Config{
		Provider: providerName,
		Model:    model,
	}
	switch providerName {
	case factory.ProviderGroq:
		factoryCfg.APIKey = cfg.Ai.GroqAPIKey
		factoryCfg.BaseURL = cfg.Ai.GroqBaseURL
	case factory.ProviderHuggingFace:
		factoryCfg.APIKey = cfg.Ai.HuggingFaceAPIKey
		factoryCfg.BaseURL = cfg.Ai.HuggingFaceURL
	case factory.ProviderOllama:
		factoryCfg.BaseURL = cfg.Ai.OllamaBaseURL
	}

	provider, err := factory.NewLLMProvider(factoryCfg)
	if err != nil {
		log.Printf("[WARN] Generation backend inactive, using fallback responses: %v", err)
		return nil
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", provider.Name(), model)
	return provider
}

func (c *Container) newLocker(cfg *config.Config) lock.Locker {
	if cfg.App.RedisURL == "" {
		return lock.NewMemoryLocker(idleLockTTL)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Session locks are per-process", err)
		_ = rdb.Close()
		return lock.NewMemoryLocker(idleLockTTL)
	}

	log.Println("[INFO] Session locks: redis")
	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return lock.NewRedisLocker(rdb, cfg.Session.LockTTL, c.Logger)
}

func (c *Container) newNatsPublisher(cfg *config.Config, sysLogger logger.ILogger) *pktNats.Publisher {
	if cfg.App.NatsURL == "" {
		return nil
	}
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn("NATS", "Failed to connect to NATS Publisher, events stay local", map[string]interface{}{"error": err.Error()})
		return nil
	}
	c.closers = append(c.closers, natsPub.Close)
	return natsPub
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
