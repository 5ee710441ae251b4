package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"bioregtool/internal/ai"
	"bioregtool/internal/app"
	"bioregtool/internal/cache"
	"bioregtool/internal/config"
	"bioregtool/internal/model"
	"bioregtool/internal/pkg/logger"
	databaseClient "bioregtool/internal/platform/database"
	rabbitmqClient "bioregtool/internal/platform/rabbitmq"
	redisClient "bioregtool/internal/platform/redis"
	"bioregtool/internal/repository"
	"bioregtool/internal/retrieval"
	"bioregtool/internal/worker"
)

// App holds the wired dependency graph: infrastructure clients, the service
// layer and the background indexing worker.
type App struct {
	Config *config.Config
	Log    *logger.Logger
	DB     *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	Matcher     *app.MatcherService
	Chat        *app.ChatService
	Attachments *app.AttachmentService
	Guidelines  *app.GuidelineService

	IndexWorker *worker.IndexWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger failed: %w", err)
	}

	db, err := databaseClient.New(ctx, cfg.Database.Driver, cfg.DatabaseDSN())
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&model.GuidelineDocument{},
		&model.GuidelineChunk{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.Attachment{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	aiClient := ai.NewClient(time.Duration(cfg.LLM.TimeoutSeconds) * time.Second)
	chatCfg := ai.ChatConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	}
	embCfg := ai.EmbeddingConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.EmbeddingModel,
	}

	guidelineRepo := repository.NewGuidelineRepository(db)
	chunkRepo := repository.NewChunkRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	historyCache := cache.NewHistoryCache(
		redisCli,
		time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	matchCache := cache.NewMatchCache(
		redisCli,
		time.Duration(cfg.Redis.MatchTTLSeconds)*time.Second,
	)

	searcher := retrieval.NewEmbeddingSearcher(chunkRepo, guidelineRepo, aiClient, embCfg)
	indexPublisher := rabbitmqClient.NewIndexPublisher(mqConn, cfg.RabbitMQ.IndexQueue)

	guidelineService := app.NewGuidelineService(
		guidelineRepo, chunkRepo, aiClient, embCfg, searcher, indexPublisher,
	)
	matcherService := app.NewMatcherService(
		searcher, sessionRepo, matchCache, cfg.Retrieval.TopK,
	)
	chatService := app.NewChatService(
		sessionRepo, messageRepo, attachmentRepo,
		aiClient, chatCfg,
		historyCache, matchCache,
		cfg.LLM.SystemPrompt, cfg.Chat.HistoryWindow,
	)
	attachmentService := app.NewAttachmentService(
		attachmentRepo, sessionRepo, cfg.MaxUploadBytes(),
	)

	// The worker indexes documents directly; give it a service without a
	// publisher so a consumed job never re-enqueues itself.
	workerGuidelines := app.NewGuidelineService(
		guidelineRepo, chunkRepo, aiClient, embCfg, searcher, nil,
	)
	indexWorker := worker.NewIndexWorker(mqConn, workerGuidelines, cfg.RabbitMQ.IndexQueue, log)
	if err := indexWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start index worker failed: %w", err)
	}

	return &App{
		Config:      cfg,
		Log:         log,
		DB:          db,
		Redis:       redisCli,
		MQConn:      mqConn,
		Matcher:     matcherService,
		Chat:        chatService,
		Attachments: attachmentService,
		Guidelines:  guidelineService,
		IndexWorker: indexWorker,
		StartedAt:   time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.IndexWorker != nil {
		a.IndexWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
	return closeErr
}
