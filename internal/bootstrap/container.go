package bootstrap

import (
	"context"
	"time"

	"language-mirror-be/internal/config"
	"language-mirror-be/internal/controller"
	"language-mirror-be/internal/pkg/logger"
	"language-mirror-be/internal/repository/contract"
	"language-mirror-be/internal/repository/gormstore"
	"language-mirror-be/internal/repository/memory"
	"language-mirror-be/internal/repository/sheet"
	"language-mirror-be/internal/server"
	"language-mirror-be/internal/service"
	"language-mirror-be/pkg/admin"
	"language-mirror-be/pkg/database"
	"language-mirror-be/pkg/llm"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

// Container wires the full application graph.
type Container struct {
	Server  *server.Server
	Sweeper service.ISweeperService
	Stats   service.IStatsService
	Session service.ISessionService
	Logger  *logger.ZapLogger
	pubsub  *gochannel.GoChannel
}

// NewContainer builds everything from config. rowStore supplies the
// spreadsheet driver when the sheet backend is selected; pass nil otherwise.
func NewContainer(cfg *config.Config, zapLogger *logger.ZapLogger, rowStore sheet.RowStore) (*Container, error) {
	log := logger.ILogger(zapLogger)

	primary := buildBackend(cfg, log, rowStore)
	fallback := memory.NewBackend()

	sessionService := service.NewSessionService(
		primary,
		fallback,
		time.Duration(cfg.Session.TimeoutSeconds)*time.Second,
		cfg.Session.HistoryWindow,
		log,
	)
	sessionService.CheckBackend(context.Background())

	authorizer := admin.NewAuthorizer(cfg.Admin.AdminIDs)
	quotaService := service.NewQuotaService(sessionService, authorizer, cfg.Quota.DailyLimit, cfg.Quota.MinFeedbackWords, log)

	provider := llm.NewOpenRouterClient(
		cfg.Llm.APIKey,
		cfg.Llm.BaseURL,
		cfg.Llm.Model,
		cfg.Llm.Referer,
		time.Duration(cfg.Llm.TimeoutSeconds)*time.Second,
		log,
	)

	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	publisher := service.NewPublisherService(pubsub, log)
	stats := service.NewStatsService(message.Subscriber(pubsub), log)

	discussionService := service.NewDiscussionService(sessionService, quotaService, provider, publisher, log)
	sweeper := service.NewSweeperService(sessionService, cfg.Session.SweepIntervalSeconds, log)

	discussionController := controller.NewDiscussionController(discussionService)
	adminController := controller.NewAdminController(cfg.Admin, sessionService, quotaService, stats, zapLogger)

	srv := server.NewServer(cfg, log, discussionController, adminController)

	return &Container{
		Server:  srv,
		Sweeper: sweeper,
		Stats:   stats,
		Session: sessionService,
		Logger:  zapLogger,
		pubsub:  pubsub,
	}, nil
}

// buildBackend selects the persistence adapter. Anything that cannot be
// constructed degrades to the in-memory adapter so the process still serves.
func buildBackend(cfg *config.Config, log logger.ILogger, rowStore sheet.RowStore) contract.BackendAdapter {
	switch cfg.App.Backend {
	case "database":
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Error("bootstrap", "database backend unavailable, using in-memory adapter", map[string]interface{}{
				"error": err.Error(),
			})
			return memory.NewBackend()
		}
		var rdb *redis.Client
		if cfg.App.RedisURL != "" {
			if opts, err := redis.ParseURL(cfg.App.RedisURL); err == nil {
				rdb = redis.NewClient(opts)
			} else {
				log.Warn("bootstrap", "invalid redis url, user cache disabled", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
		return gormstore.NewBackend(db, rdb)

	case "sheet":
		if rowStore == nil {
			log.Warn("bootstrap", "sheet backend selected without a row store, using in-memory adapter", nil)
			return memory.NewBackend()
		}
		return sheet.NewBackend(rowStore)

	default:
		return memory.NewBackend()
	}
}

// Close flushes and stops background machinery.
func (c *Container) Close() {
	c.Sweeper.Stop()
	if c.pubsub != nil {
		_ = c.pubsub.Close()
	}
	_ = c.Logger.Sync()
}
