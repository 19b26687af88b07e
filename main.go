package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bookshelf/internal/config"
	"bookshelf/internal/handlers"
	"bookshelf/internal/logging"
	"bookshelf/internal/metrics"
	"bookshelf/internal/oauth"
	"bookshelf/internal/repositories"
	"bookshelf/internal/server"
	"bookshelf/internal/services"
	"bookshelf/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log, cfg.App.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	app, cleanup, err := buildApp(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build app", zap.Error(err))
	}
	defer cleanup()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", zap.String("port", cfg.App.Port))
		if err := app.Listen(cfg.App.Port); err != nil {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		logger.Error("error during fiber shutdown", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
}

// buildApp wires stores, services and the HTTP layer from cfg. On success the
// returned cleanup closes the database and broker connections.
func buildApp(cfg *config.Config, logger *zap.Logger) (*fiber.App, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("cleanup failed", zap.Error(err))
			}
		}
	}

	var (
		userRepo repositories.UserRepository
		bookRepo repositories.BookRepository
		ping     func(ctx context.Context) error
	)
	if cfg.Database.Driver == "memory" {
		userRepo = repositories.NewMemoryUserRepository()
		bookRepo = repositories.NewMemoryBookRepository()
	} else {
		db, err := repositories.OpenDatabase(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		closers = append(closers, sqlDB.Close)
		userRepo = repositories.NewGORMUserRepository(db)
		bookRepo = repositories.NewGORMBookRepository(db)
		ping = func(ctx context.Context) error { return repositories.Ping(ctx, db) }
	}

	var events services.EventPublisher = services.NoopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Exchange: cfg.RabbitMQ.Exchange}, logger)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, mq.Close)
		events = mq
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	sessions := services.NewSessionManager(cfg.Session)
	deps := server.Deps{
		Config:    cfg,
		Log:       logger,
		Auth:      services.NewAuthService(userRepo, cfg.Auth, events, logger),
		Books:     services.NewBookService(bookRepo, events, logger),
		Sessions:  sessions,
		Metrics:   m,
		Gatherer:  reg,
		Ping:      ping,
		AccessLog: true,
	}
	if cfg.Google.Enabled() {
		deps.Google = oauth.NewGoogle(cfg.Google, cfg.Session.Secret)
	}

	return server.New(deps), cleanup, nil
}

// Compile-time checks that the concrete adapters satisfy the interfaces main wires them into.
var (
	_ services.EventPublisher    = (*rabbitmq.Client)(nil)
	_ handlers.FederatedProvider = (*oauth.Google)(nil)
)
