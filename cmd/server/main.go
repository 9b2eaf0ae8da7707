package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/havenlisten/haven/internal/ai"
	"github.com/havenlisten/haven/internal/chat"
	"github.com/havenlisten/haven/internal/config"
	"github.com/havenlisten/haven/internal/db"
	"github.com/havenlisten/haven/internal/httpapi"
	"github.com/havenlisten/haven/internal/httpapi/handlers"
	"github.com/havenlisten/haven/internal/lock"
	"github.com/havenlisten/haven/internal/logging"
	"github.com/havenlisten/haven/internal/moderation"
	"github.com/havenlisten/haven/internal/store/rabbitmq"
	"github.com/havenlisten/haven/internal/store/redisstore"
	"github.com/havenlisten/haven/internal/wall"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Environment == "production")
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}

	// Provider registry: assistant and classifier are two capability
	// values, possibly backed by different models of the same provider.
	reg := ai.NewRegistry()
	reg.Register("groq", func(ctx context.Context, model string) (ai.Provider, error) {
		return ai.NewGroqProvider(cfg.GroqBaseURL, cfg.GroqAPIKey, model, cfg.AITimeout), nil
	})
	reg.Register("ollama", func(ctx context.Context, model string) (ai.Provider, error) {
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, model, cfg.AITimeout), nil
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	assistant, err := reg.Get(ctx, cfg.AIProvider, cfg.AssistantModel)
	if err != nil {
		logger.Fatal("assistant provider", zap.Error(err))
	}
	classifier, err := reg.Get(ctx, cfg.AIProvider, cfg.ModeratorModel)
	if err != nil {
		logger.Fatal("classifier provider", zap.Error(err))
	}

	// Redis lock keeps per-session and per-user serialization valid
	// across instances; fall back to process-local locks without it.
	var locker lock.Locker
	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rds.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, using in-process locks", zap.Error(err))
		locker = lock.NewMemoryLocker()
	} else {
		locker = rds
		defer func() { _ = rds.Close() }()
	}

	// Audit publishing is best-effort; the wall works without the queue.
	var publisher wall.AuditPublisher
	pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		logger.Warn("rabbitmq unavailable, audit trail disabled", zap.Error(err))
	} else {
		publisher = pub
		defer func() { _ = pub.Close() }()
	}

	arbiter := moderation.NewArbiter(classifier, logger.Named("arbiter"))
	wallSvc := wall.NewService(wall.NewRepo(gdb), arbiter, locker, publisher, logger.Named("wall"))
	chatSvc := chat.NewService(chat.NewRepo(gdb), assistant, locker, logger.Named("chat"), cfg.ChatContextWindowSize)

	h := handlers.NewHandler(gdb, cfg, logger, wallSvc, chatSvc)
	router := httpapi.NewRouter(h, logger)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
